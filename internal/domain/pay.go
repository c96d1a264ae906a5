package domain

type SalaryType string

const (
	SalaryTypeHourly  SalaryType = "hourly"
	SalaryTypeDaily   SalaryType = "daily"
	SalaryTypeMonthly SalaryType = "monthly"
)

// SalaryInfo 的金额使用最小货币单位的非负整数
type SalaryInfo struct {
	Type   SalaryType `json:"type"`
	Amount int64      `json:"amount"`
}

// AllowanceConfig 是补贴配置，字段为 nil 表示该项未配置
// 解析有效配置时每个字段独立向下回退，不能整个对象一起覆盖
type AllowanceConfig struct {
	Meal      *int64 `json:"meal,omitempty"`
	Transport *int64 `json:"transport,omitempty"`
	Lodging   *int64 `json:"lodging,omitempty"`
	Bonus     *int64 `json:"bonus,omitempty"`
	Other     *int64 `json:"other,omitempty"`
}

// Allowances 是解析后的补贴金额，全部为固定金额，不随时长变化
type Allowances struct {
	Meal      int64 `json:"meal"`
	Transport int64 `json:"transport"`
	Lodging   int64 `json:"lodging"`
	Bonus     int64 `json:"bonus"`
	Other     int64 `json:"other"`
}

func (a Allowances) Total() int64 {
	return a.Meal + a.Transport + a.Lodging + a.Bonus + a.Other
}

type TaxType string

const (
	TaxTypeNone TaxType = "none"
	TaxTypeRate TaxType = "rate"
)

type TaxSettings struct {
	Type TaxType `json:"type"`
	Rate float64 `json:"rate"`
}

// PayConfig 是一层薪酬配置，可能来自公告默认值或单条工作记录的覆盖
type PayConfig struct {
	Salary     *SalaryInfo      `json:"salary,omitempty"`
	Allowances *AllowanceConfig `json:"allowances,omitempty"`
	Tax        *TaxSettings     `json:"tax,omitempty"`
}

// SettlementCalculation 是结算计算的派生结果，不作为持久化的事实来源
type SettlementCalculation struct {
	SalaryType     SalaryType `json:"salaryType"`
	BaseSalary     int64      `json:"baseSalary"`
	TotalHours     float64    `json:"totalHours"`
	TotalDays      int32      `json:"totalDays"`
	BasePay        int64      `json:"basePay"`
	Allowances     Allowances `json:"allowances"`
	Tax            *int64     `json:"tax,omitempty"`
	TaxRate        *float64   `json:"taxRate,omitempty"`
	AfterTaxAmount *int64     `json:"afterTaxAmount,omitempty"`
	NetPay         int64      `json:"netPay"`
	IsEstimate     bool       `json:"isEstimate"`
}
