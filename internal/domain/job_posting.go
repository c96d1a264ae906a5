package domain

import (
	"regexp"
	"time"
)

type PostingStatus string

const (
	PostingStatusActive    PostingStatus = "active"
	PostingStatusClosed    PostingStatus = "closed"
	PostingStatusCancelled PostingStatus = "cancelled"
)

type StaffRole string

const (
	StaffRoleDealer StaffRole = "dealer"
	StaffRoleFloor  StaffRole = "floor"
	StaffRoleServer StaffRole = "server"
	StaffRoleOther  StaffRole = "other"
)

// RoleRequirement 是容量树的叶子节点：某一天某个时段里一个岗位的名额
// Role 为 other 时岗位名称记在 CustomRole 中
type RoleRequirement struct {
	Role       StaffRole   `json:"role"`
	CustomRole string      `json:"customRole,omitempty"`
	Headcount  int32       `json:"headcount"`
	Filled     int32       `json:"filled"`
	Salary     *SalaryInfo `json:"salary,omitempty"`
}

// Matches 判断该叶子是否对应给定的岗位标签
func (rr *RoleRequirement) Matches(roleLabel string) bool {
	if rr.Role == StaffRoleOther {
		return rr.CustomRole == roleLabel
	}
	return string(rr.Role) == roleLabel
}

type TimeSlot struct {
	StartTime            string            `json:"startTime,omitempty"`
	IsTimeToBeAnnounced  bool              `json:"isTimeToBeAnnounced,omitempty"`
	TentativeDescription string            `json:"tentativeDescription,omitempty"`
	Roles                []RoleRequirement `json:"roles"`
}

// StartKey 返回时段的归一化开始时间，作为和报名记录比对的键
func (ts *TimeSlot) StartKey() string {
	if ts.IsTimeToBeAnnounced {
		return ""
	}
	return ExtractStartTime(ts.StartTime)
}

type DateSpecificRequirement struct {
	Date      DateValue  `json:"date"`
	TimeSlots []TimeSlot `json:"timeSlots"`
}

type JobPosting struct {
	ID                       int64                     `json:"id"`
	OwnerID                  int64                     `json:"ownerId"`
	Title                    string                    `json:"title"`
	Description              string                    `json:"description"`
	Status                   PostingStatus             `json:"status"`
	TotalPositions           int32                     `json:"totalPositions"`
	FilledPositions          int32                     `json:"filledPositions"`
	DateSpecificRequirements []DateSpecificRequirement `json:"dateSpecificRequirements"`
	DefaultSalary            *SalaryInfo               `json:"defaultSalary,omitempty"`
	Allowances               *AllowanceConfig          `json:"allowances,omitempty"`
	TaxSettings              *TaxSettings              `json:"taxSettings,omitempty"`
	ShiftHours               int32                     `json:"shiftHours"`
	ViewCount                int32                     `json:"viewCount"`
	ApplicationCount         int32                     `json:"applicationCount"`
	ClosedAt                 *time.Time                `json:"closedAt,omitempty"`
	ClosedReason             string                    `json:"closedReason,omitempty"`
	CreatedAt                time.Time                 `json:"createdAt"`
	UpdatedAt                time.Time                 `json:"updatedAt"`
	Version                  int32                     `json:"-"`
}

// CountPositions 从需求树统计总名额和已确认名额
func (p *JobPosting) CountPositions() (total int32, filled int32) {
	for _, req := range p.DateSpecificRequirements {
		for _, slot := range req.TimeSlots {
			for _, role := range slot.Roles {
				total += role.Headcount
				filled += role.Filled
			}
		}
	}
	return total, filled
}

var startTimePattern = regexp.MustCompile(`([01]?\d|2[0-3]):([0-5]\d)`)

// ExtractStartTime 从时段描述中取出归一化的 HH:mm 开始时间
// 输入可能是 "14:00"、"14:00~18:00"、"9:30 开始" 等历史形式，取第一个出现的时间
// 容量匹配和工作记录生成必须共用这一个函数，否则两边的键会对不上
func ExtractStartTime(descriptor string) string {
	m := startTimePattern.FindStringSubmatch(descriptor)
	if m == nil {
		return ""
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + m[2]
}
