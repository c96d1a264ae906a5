package settlement

import (
	"log/slog"
	"math"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

// workedHours 计算两个时间点之间的小时数，保留两位小数，负数按零处理
func workedHours(start, end time.Time) float64 {
	h := end.Sub(start).Hours()
	if h < 0 {
		slog.Warn("结束时间早于开始时间，工时按零计算", "start", start, "end", end)
		return 0
	}
	return math.Round(h*100) / 100
}

// Calculate 根据工作记录和有效薪酬配置计算一条结算结果
// 优先使用实际打卡时间，缺失时回退到排班时间并标记为预估
func Calculate(wl *domain.WorkLog, eff Effective) *domain.SettlementCalculation {
	calc := &domain.SettlementCalculation{
		SalaryType: eff.Salary.Type,
		BaseSalary: eff.Salary.Amount,
		TotalDays:  1,
	}

	var start, end time.Time
	if wl.ActualStartTime != nil && wl.ActualEndTime != nil {
		start, end = *wl.ActualStartTime, *wl.ActualEndTime
	} else {
		start, end = wl.ScheduledStartTime, wl.ScheduledEndTime
		calc.IsEstimate = true
	}
	if !start.IsZero() && !end.IsZero() {
		calc.TotalHours = workedHours(start, end)
	}

	switch eff.Salary.Type {
	case domain.SalaryTypeHourly:
		calc.BasePay = int64(math.Round(float64(eff.Salary.Amount) * calc.TotalHours))
	case domain.SalaryTypeDaily, domain.SalaryTypeMonthly:
		calc.BasePay = eff.Salary.Amount
	}
	if calc.BasePay < 0 {
		slog.Warn("基础薪资计算为负数，按零处理", "workLogID", wl.ID, "basePay", calc.BasePay)
		calc.BasePay = 0
	}

	calc.Allowances = eff.Allowances

	net := calc.BasePay + eff.Allowances.Total()
	if eff.Tax != nil {
		tax := int64(math.Round(float64(calc.BasePay) * eff.Tax.Rate))
		rate := eff.Tax.Rate
		calc.Tax = &tax
		calc.TaxRate = &rate
		net -= tax
		after := net
		calc.AfterTaxAmount = &after
	}
	if net < 0 {
		slog.Warn("实发金额为负数，按零处理", "workLogID", wl.ID, "netPay", net)
		net = 0
	}
	calc.NetPay = net

	return calc
}
