package utils

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

var startTimePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ValidateRequirementTree 校验公告的需求树结构是否合法
func ValidateRequirementTree(reqs []domain.DateSpecificRequirement) error {
	if len(reqs) == 0 {
		return errors.New("公告至少需要一个工作日期")
	}

	for i, req := range reqs {
		if req.Date.IsZero() {
			return fmt.Errorf("第 %d 个日期需求缺少日期", i+1)
		}
		if req.Date.Canonical() == "" {
			return fmt.Errorf("第 %d 个日期需求的日期格式无法识别", i+1)
		}
		if len(req.TimeSlots) == 0 {
			return fmt.Errorf("日期 %s 下至少需要一个时间段", req.Date.Canonical())
		}

		for j, slot := range req.TimeSlots {
			if slot.IsTimeToBeAnnounced {
				if slot.TentativeDescription == "" {
					return fmt.Errorf("日期 %s 的第 %d 个时间段标记为待定，需要填写说明", req.Date.Canonical(), j+1)
				}
			} else if !startTimePattern.MatchString(slot.StartTime) {
				return fmt.Errorf("日期 %s 的第 %d 个时间段的开始时间格式错误，应为 HH:mm", req.Date.Canonical(), j+1)
			}
			if len(slot.Roles) == 0 {
				return fmt.Errorf("日期 %s 的第 %d 个时间段下至少需要一个岗位", req.Date.Canonical(), j+1)
			}

			for k, role := range slot.Roles {
				if role.Headcount < 1 || role.Headcount > 200 {
					return fmt.Errorf("日期 %s 的第 %d 个时间段的第 %d 个岗位人数必须在 1 到 200 之间", req.Date.Canonical(), j+1, k+1)
				}
				if role.Role == domain.StaffRoleOther && role.CustomRole == "" {
					return fmt.Errorf("日期 %s 的第 %d 个时间段的第 %d 个岗位选择了其他岗位，需要填写自定义岗位名称", req.Date.Canonical(), j+1, k+1)
				}
				if role.Filled < 0 {
					return fmt.Errorf("日期 %s 的第 %d 个时间段的第 %d 个岗位的已确认人数不能为负数", req.Date.Canonical(), j+1, k+1)
				}
				if role.Salary != nil && role.Salary.Amount < 0 {
					return fmt.Errorf("日期 %s 的第 %d 个时间段的第 %d 个岗位的薪资不能为负数", req.Date.Canonical(), j+1, k+1)
				}
			}
		}
	}

	return nil
}

// ValidateAssignments 校验申请中的排班选择能在公告需求树中找到对应叶子
func ValidateAssignments(posting *domain.JobPosting, assignments []domain.Assignment) error {
	if len(assignments) == 0 {
		return errors.New("申请至少需要选择一个排班")
	}

	for i, a := range assignments {
		if len(a.Dates) == 0 {
			return fmt.Errorf("第 %d 个排班选择缺少日期", i+1)
		}

		for _, date := range a.Dates {
			canonical := domain.CanonicalDateString(date)
			found := false

			for _, req := range posting.DateSpecificRequirements {
				if req.Date.Canonical() != canonical {
					continue
				}
				for _, slot := range req.TimeSlots {
					if slot.StartKey() != a.StartKey() {
						continue
					}
					for _, role := range slot.Roles {
						if role.Matches(a.PrimaryRole()) {
							found = true
						}
					}
				}
			}

			if !found {
				return fmt.Errorf("第 %d 个排班选择在公告中不存在：日期 %s 岗位 %s", i+1, canonical, a.PrimaryRole())
			}
		}
	}

	return nil
}
