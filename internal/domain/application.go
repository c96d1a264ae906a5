package domain

import (
	"errors"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusApplied             ApplicationStatus = "applied"
	ApplicationStatusPending             ApplicationStatus = "pending"
	ApplicationStatusConfirmed           ApplicationStatus = "confirmed"
	ApplicationStatusRejected            ApplicationStatus = "rejected"
	ApplicationStatusCancelled           ApplicationStatus = "cancelled"
	ApplicationStatusCompleted           ApplicationStatus = "completed"
	ApplicationStatusCancellationPending ApplicationStatus = "cancellation_pending"
)

var (
	ErrMaxCapacityReached          = errors.New("招聘名额已满")
	ErrApplicationNotConfirmable   = errors.New("只有待处理的报名才能确认")
	ErrApplicationNotCancellable   = errors.New("只有已确认的报名才能取消确认")
	ErrApplicationAlreadyProcessed = errors.New("该报名已被处理")
)

// Assignment 是求职者对名额的认领：一个岗位、一个时段，可能跨多个日期
type Assignment struct {
	Dates                []string `json:"dates"`
	TimeSlot             string   `json:"timeSlot"`
	RoleIDs              []string `json:"roleIds"`
	IsTimeToBeAnnounced  bool     `json:"isTimeToBeAnnounced,omitempty"`
	TentativeDescription string   `json:"tentativeDescription,omitempty"`
}

// PrimaryRole 返回报名对应的岗位标签，RoleIDs 的第一个元素是匹配到的岗位或自定义岗位名
func (a *Assignment) PrimaryRole() string {
	if len(a.RoleIDs) > 0 && a.RoleIDs[0] != "" {
		return a.RoleIDs[0]
	}
	return string(StaffRoleOther)
}

// StartKey 返回报名时段的归一化开始时间
func (a *Assignment) StartKey() string {
	return ExtractStartTime(a.TimeSlot)
}

// Application 的 ID 是 jobPostingId_applicantId 形式的复合键
type Application struct {
	ID                  string            `json:"id"`
	JobPostingID        int64             `json:"jobPostingId"`
	ApplicantID         int64             `json:"applicantId"`
	ApplicantName       string            `json:"applicantName"`
	Status              ApplicationStatus `json:"status"`
	Assignments         []Assignment      `json:"assignments"`
	OriginalAssignments []Assignment      `json:"originalAssignments,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	RejectionReason     string            `json:"rejectionReason,omitempty"`
	ProcessedBy         *int64            `json:"processedBy,omitempty"`
	ProcessedAt         *time.Time        `json:"processedAt,omitempty"`
	ConfirmedAt         *time.Time        `json:"confirmedAt,omitempty"`
	CancelledAt         *time.Time        `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	Version             int32             `json:"-"`
}

// ApplicationStats 按状态统计某个公告下的报名数量
type ApplicationStats struct {
	Total               int32 `json:"total"`
	Applied             int32 `json:"applied"`
	Pending             int32 `json:"pending"`
	Confirmed           int32 `json:"confirmed"`
	Rejected            int32 `json:"rejected"`
	Cancelled           int32 `json:"cancelled"`
	Completed           int32 `json:"completed"`
	CancellationPending int32 `json:"cancellationPending"`
}

func (s *ApplicationStats) Count(status ApplicationStatus) {
	s.Total++
	switch status {
	case ApplicationStatusApplied:
		s.Applied++
	case ApplicationStatusPending:
		s.Pending++
	case ApplicationStatusConfirmed:
		s.Confirmed++
	case ApplicationStatusRejected:
		s.Rejected++
	case ApplicationStatusCancelled:
		s.Cancelled++
	case ApplicationStatusCompleted:
		s.Completed++
	case ApplicationStatusCancellationPending:
		s.CancellationPending++
	}
}
