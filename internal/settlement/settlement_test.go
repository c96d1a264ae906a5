package settlement

import (
	"testing"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func timeAt(hour, minute int) *time.Time {
	t := time.Date(2026, 9, 1, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestCalculateHourlyWithActualTimes(t *testing.T) {
	wl := &domain.WorkLog{
		ID:              "wl1",
		ActualStartTime: timeAt(14, 0),
		ActualEndTime:   timeAt(18, 0),
	}
	eff := Effective{
		Salary:     domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 50000},
		Allowances: domain.Allowances{Meal: 10000},
	}

	calc := Calculate(wl, eff)
	assert.Equal(t, domain.SalaryTypeHourly, calc.SalaryType)
	assert.Equal(t, float64(4), calc.TotalHours)
	assert.Equal(t, int64(200000), calc.BasePay)
	assert.Equal(t, int64(210000), calc.NetPay)
	assert.Nil(t, calc.Tax)
	assert.Nil(t, calc.AfterTaxAmount)
	assert.False(t, calc.IsEstimate)
}

func TestCalculateFallsBackToScheduledTimes(t *testing.T) {
	wl := &domain.WorkLog{
		ID:                 "wl1",
		ScheduledStartTime: *timeAt(14, 0),
		ScheduledEndTime:   *timeAt(18, 0),
	}
	eff := Effective{
		Salary: domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 50000},
	}

	calc := Calculate(wl, eff)
	assert.Equal(t, int64(200000), calc.BasePay)
	assert.True(t, calc.IsEstimate)

	// 只有上班打卡时同样按预估处理
	wl.ActualStartTime = timeAt(14, 0)
	calc = Calculate(wl, eff)
	assert.True(t, calc.IsEstimate)
}

func TestCalculateActualPreferredOverScheduled(t *testing.T) {
	wl := &domain.WorkLog{
		ID:                 "wl1",
		ScheduledStartTime: *timeAt(14, 0),
		ScheduledEndTime:   *timeAt(22, 0),
		ActualStartTime:    timeAt(14, 30),
		ActualEndTime:      timeAt(18, 30),
	}
	eff := Effective{
		Salary: domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 10000},
	}

	calc := Calculate(wl, eff)
	assert.Equal(t, float64(4), calc.TotalHours)
	assert.Equal(t, int64(40000), calc.BasePay)
	assert.False(t, calc.IsEstimate)
}

func TestCalculateDailyAndMonthly(t *testing.T) {
	wl := &domain.WorkLog{
		ID:              "wl1",
		ActualStartTime: timeAt(9, 0),
		ActualEndTime:   timeAt(18, 0),
	}

	calc := Calculate(wl, Effective{Salary: domain.SalaryInfo{Type: domain.SalaryTypeDaily, Amount: 120000}})
	assert.Equal(t, int64(120000), calc.BasePay)
	assert.Equal(t, int32(1), calc.TotalDays)

	// 月薪同样按固定金额入账
	calc = Calculate(wl, Effective{Salary: domain.SalaryInfo{Type: domain.SalaryTypeMonthly, Amount: 3000000}})
	assert.Equal(t, int64(3000000), calc.BasePay)
}

func TestCalculateTax(t *testing.T) {
	wl := &domain.WorkLog{
		ID:              "wl1",
		ActualStartTime: timeAt(14, 0),
		ActualEndTime:   timeAt(18, 0),
	}
	eff := Effective{
		Salary:     domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 50000},
		Allowances: domain.Allowances{Meal: 10000},
		Tax:        &domain.TaxSettings{Type: domain.TaxTypeRate, Rate: 0.033},
	}

	calc := Calculate(wl, eff)
	require.NotNil(t, calc.Tax)
	// 税基只含基础薪资，不含补贴
	assert.Equal(t, int64(6600), *calc.Tax)
	assert.Equal(t, int64(203400), calc.NetPay)
	require.NotNil(t, calc.AfterTaxAmount)
	assert.Equal(t, calc.NetPay, *calc.AfterTaxAmount)
	assert.Equal(t, 0.033, *calc.TaxRate)
}

func TestCalculateZeroHoursWhenEndBeforeStart(t *testing.T) {
	wl := &domain.WorkLog{
		ID:              "wl1",
		ActualStartTime: timeAt(18, 0),
		ActualEndTime:   timeAt(14, 0),
	}
	eff := Effective{
		Salary: domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 50000},
	}

	calc := Calculate(wl, eff)
	assert.Equal(t, float64(0), calc.TotalHours)
	assert.Equal(t, int64(0), calc.BasePay)
	assert.Equal(t, int64(0), calc.NetPay)
}

func TestCalculateNoTimesAtAll(t *testing.T) {
	wl := &domain.WorkLog{ID: "wl1"}
	eff := Effective{
		Salary:     domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 50000},
		Allowances: domain.Allowances{Transport: 5000},
	}

	// 时段待定且还没打卡：时薪没有工时，只剩补贴
	calc := Calculate(wl, eff)
	assert.Equal(t, int64(0), calc.BasePay)
	assert.Equal(t, int64(5000), calc.NetPay)
	assert.True(t, calc.IsEstimate)
}

func testPosting() *domain.JobPosting {
	return &domain.JobPosting{
		ID:            1,
		DefaultSalary: &domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 40000},
		Allowances:    &domain.AllowanceConfig{Meal: int64Ptr(10000)},
		DateSpecificRequirements: []domain.DateSpecificRequirement{
			{
				Date: domain.DateFromISO("2026-09-01"),
				TimeSlots: []domain.TimeSlot{
					{
						StartTime: "14:00",
						Roles: []domain.RoleRequirement{
							{Role: domain.StaffRoleDealer, Headcount: 2, Salary: &domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 50000}},
							{Role: domain.StaffRoleServer, Headcount: 3},
							{Role: domain.StaffRoleOther, CustomRole: "保安", Headcount: 1, Salary: &domain.SalaryInfo{Type: domain.SalaryTypeDaily, Amount: 150000}},
						},
					},
				},
			},
		},
	}
}

func TestResolveEffectiveRoleSalaryBeatsDefault(t *testing.T) {
	eff := ResolveEffective(nil, testPosting(), "dealer")
	assert.Equal(t, int64(50000), eff.Salary.Amount)

	// 岗位没有单独薪资时回退到公告默认值
	eff = ResolveEffective(nil, testPosting(), "server")
	assert.Equal(t, int64(40000), eff.Salary.Amount)

	// 自定义岗位按 customRole 匹配
	eff = ResolveEffective(nil, testPosting(), "保安")
	assert.Equal(t, domain.SalaryTypeDaily, eff.Salary.Type)
	assert.Equal(t, int64(150000), eff.Salary.Amount)
}

func TestResolveEffectiveOverrideBeatsAll(t *testing.T) {
	override := &domain.PayConfig{
		Salary: &domain.SalaryInfo{Type: domain.SalaryTypeHourly, Amount: 60000},
	}

	eff := ResolveEffective(override, testPosting(), "dealer")
	assert.Equal(t, int64(60000), eff.Salary.Amount)
	// 覆盖只提供了薪资，补贴仍来自公告默认值
	assert.Equal(t, int64(10000), eff.Allowances.Meal)
}

func TestResolveEffectivePerFieldAllowances(t *testing.T) {
	override := &domain.PayConfig{
		Allowances: &domain.AllowanceConfig{Transport: int64Ptr(5000)},
	}

	// 补贴逐字段解析：覆盖提供了交通补贴，餐补仍然来自公告
	eff := ResolveEffective(override, testPosting(), "server")
	assert.Equal(t, int64(5000), eff.Allowances.Transport)
	assert.Equal(t, int64(10000), eff.Allowances.Meal)
	assert.Equal(t, int64(0), eff.Allowances.Lodging)
}

func TestResolveEffectiveNegativeAllowanceClamped(t *testing.T) {
	override := &domain.PayConfig{
		Allowances: &domain.AllowanceConfig{Meal: int64Ptr(-500)},
	}

	eff := ResolveEffective(override, testPosting(), "server")
	assert.Equal(t, int64(0), eff.Allowances.Meal)
}

func TestResolveEffectiveNothingConfigured(t *testing.T) {
	posting := &domain.JobPosting{ID: 1}

	eff := ResolveEffective(nil, posting, "server")
	assert.Equal(t, int64(0), eff.Salary.Amount)
	assert.Nil(t, eff.Tax)
}

func TestResolveEffectiveTax(t *testing.T) {
	posting := testPosting()
	posting.TaxSettings = &domain.TaxSettings{Type: domain.TaxTypeRate, Rate: 0.033}

	eff := ResolveEffective(nil, posting, "server")
	require.NotNil(t, eff.Tax)
	assert.Equal(t, 0.033, eff.Tax.Rate)

	// 覆盖可以把税率整体换掉
	override := &domain.PayConfig{Tax: &domain.TaxSettings{Type: domain.TaxTypeRate, Rate: 0.05}}
	eff = ResolveEffective(override, posting, "server")
	assert.Equal(t, 0.05, eff.Tax.Rate)

	// 类型为 none 视为没有税
	override = &domain.PayConfig{Tax: &domain.TaxSettings{Type: domain.TaxTypeNone}}
	eff = ResolveEffective(override, posting, "server")
	assert.Nil(t, eff.Tax)
}

func TestFirst(t *testing.T) {
	a, b := int64(1), int64(2)
	assert.Equal(t, &a, First(&a, &b))
	assert.Equal(t, &b, First[int64](nil, &b))
	assert.Nil(t, First[int64](nil, nil))
}
