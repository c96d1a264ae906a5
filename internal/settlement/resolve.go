// Package settlement 根据工作记录和分层薪酬配置计算结算金额
package settlement

import (
	"log/slog"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

// First 返回解析链中第一个非空的值
// 所有薪酬字段的回退顺序都通过它表达：覆盖值 > 岗位级 > 公告默认值
func First[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// RoleSalary 在公告需求树中查找岗位级薪资，找不到返回 nil
// role 为 other 的叶子按 customRole 匹配
func RoleSalary(posting *domain.JobPosting, roleLabel string) *domain.SalaryInfo {
	for i := range posting.DateSpecificRequirements {
		for j := range posting.DateSpecificRequirements[i].TimeSlots {
			slot := &posting.DateSpecificRequirements[i].TimeSlots[j]
			for k := range slot.Roles {
				if slot.Roles[k].Matches(roleLabel) && slot.Roles[k].Salary != nil {
					return slot.Roles[k].Salary
				}
			}
		}
	}
	return nil
}

// Effective 是逐字段解析后的有效薪酬配置
type Effective struct {
	Salary     domain.SalaryInfo
	Allowances domain.Allowances
	Tax        *domain.TaxSettings
}

func clampAllowance(name string, v *int64) int64 {
	if v == nil {
		return 0
	}
	if *v < 0 {
		slog.Warn("补贴金额为负数，按零处理", "field", name, "amount", *v)
		return 0
	}
	return *v
}

// ResolveEffective 逐字段解析有效配置：override > 岗位级 > 公告默认值
// 注意是每个字段独立回退，而不是整个配置对象一起覆盖
func ResolveEffective(override *domain.PayConfig, posting *domain.JobPosting, roleLabel string) Effective {
	var ovSalary *domain.SalaryInfo
	var ovAllowances *domain.AllowanceConfig
	var ovTax *domain.TaxSettings
	if override != nil {
		ovSalary = override.Salary
		ovAllowances = override.Allowances
		ovTax = override.Tax
	}

	eff := Effective{}

	salary := First(ovSalary, RoleSalary(posting, roleLabel), posting.DefaultSalary)
	if salary != nil {
		eff.Salary = *salary
	} else {
		eff.Salary = domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 0}
	}

	var base *domain.AllowanceConfig = posting.Allowances
	pick := func(name string, ov func(*domain.AllowanceConfig) *int64) int64 {
		var chain []*int64
		if ovAllowances != nil {
			chain = append(chain, ov(ovAllowances))
		}
		if base != nil {
			chain = append(chain, ov(base))
		}
		return clampAllowance(name, First(chain...))
	}

	eff.Allowances = domain.Allowances{
		Meal:      pick("meal", func(a *domain.AllowanceConfig) *int64 { return a.Meal }),
		Transport: pick("transport", func(a *domain.AllowanceConfig) *int64 { return a.Transport }),
		Lodging:   pick("lodging", func(a *domain.AllowanceConfig) *int64 { return a.Lodging }),
		Bonus:     pick("bonus", func(a *domain.AllowanceConfig) *int64 { return a.Bonus }),
		Other:     pick("other", func(a *domain.AllowanceConfig) *int64 { return a.Other }),
	}

	tax := First(ovTax, posting.TaxSettings)
	if tax != nil && tax.Type == domain.TaxTypeRate && tax.Rate > 0 {
		eff.Tax = tax
	}

	return eff
}
