// Package capacity 实现公告需求树的名额匹配与确认/取消时的名额核销
package capacity

import (
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

// findLeaf 在需求树中定位唯一对应的叶子节点
// 匹配规则：日期先归一化为 YYYY-MM-DD 再精确比较，时段比较归一化后的开始时间，
// 岗位比较 role，role 为 other 时比较 customRole。只做精确匹配，不做模糊匹配
func findLeaf(reqs []domain.DateSpecificRequirement, date string, startKey string, roleLabel string) *domain.RoleRequirement {
	canonical := domain.CanonicalDateString(date)
	if canonical == "" {
		return nil
	}

	for i := range reqs {
		if reqs[i].Date.Canonical() != canonical {
			continue
		}
		for j := range reqs[i].TimeSlots {
			slot := &reqs[i].TimeSlots[j]
			if slot.StartKey() != startKey {
				continue
			}
			for k := range slot.Roles {
				if slot.Roles[k].Matches(roleLabel) {
					return &slot.Roles[k]
				}
			}
		}
	}

	return nil
}

// cloneRequirements 深拷贝需求树，核销永远在副本上进行，调用方的数据不被原地修改
func cloneRequirements(reqs []domain.DateSpecificRequirement) []domain.DateSpecificRequirement {
	if reqs == nil {
		return nil
	}

	out := make([]domain.DateSpecificRequirement, len(reqs))
	for i, req := range reqs {
		slots := make([]domain.TimeSlot, len(req.TimeSlots))
		for j, slot := range req.TimeSlots {
			roles := make([]domain.RoleRequirement, len(slot.Roles))
			copy(roles, slot.Roles)
			for k := range roles {
				if roles[k].Salary != nil {
					salary := *roles[k].Salary
					roles[k].Salary = &salary
				}
			}
			slots[j] = slot
			slots[j].Roles = roles
		}
		out[i] = req
		out[i].TimeSlots = slots
	}

	return out
}
