package domain

import "time"

type WorkLogStatus string

const (
	WorkLogStatusScheduled WorkLogStatus = "scheduled"
	WorkLogStatusCompleted WorkLogStatus = "completed"
	WorkLogStatusCancelled WorkLogStatus = "cancelled"
)

type AttendanceStatus string

const (
	AttendanceNotStarted AttendanceStatus = "not_started"
	AttendanceCheckedIn  AttendanceStatus = "checked_in"
	AttendanceCheckedOut AttendanceStatus = "checked_out"
	AttendanceAbsent     AttendanceStatus = "absent"
)

type SettlementStatus string

const (
	SettlementStatusUnpaid  SettlementStatus = "unpaid"
	SettlementStatusSettled SettlementStatus = "settled"
)

// WorkLog 是确认报名后派生的不可变工作记录，每个 (报名, 日期) 一条
// 创建后只允许补充实际出勤时间、出勤状态、薪酬覆盖和结算状态
type WorkLog struct {
	ID                 string           `json:"id"`
	JobPostingID       int64            `json:"jobPostingId"`
	JobPostingTitle    string           `json:"jobPostingTitle"`
	StaffID            int64            `json:"staffId"`
	StaffName          string           `json:"staffName"`
	Role               string           `json:"role"`
	Date               string           `json:"date"`
	TimeSlotStart      string           `json:"timeSlotStart"`
	ScheduledStartTime time.Time        `json:"scheduledStartTime"`
	ScheduledEndTime   time.Time        `json:"scheduledEndTime"`
	ActualStartTime    *time.Time       `json:"actualStartTime,omitempty"`
	ActualEndTime      *time.Time       `json:"actualEndTime,omitempty"`
	Status             WorkLogStatus    `json:"status"`
	AttendanceStatus   AttendanceStatus `json:"attendanceStatus"`
	SettlementStatus   SettlementStatus `json:"settlementStatus"`
	PayOverride        *PayConfig       `json:"payOverride,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	Version            int32            `json:"-"`
}
