// Package worklog 把已确认的报名转换为不可变的工作记录
package worklog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

// ScheduledTimes 根据日期、开始时间和公告的班次时长计算计划出勤时间
// date 必须已归一化为 YYYY-MM-DD，startKey 为 HH:mm
func ScheduledTimes(date string, startKey string, shiftHours int32) (start time.Time, end time.Time, err error) {
	start, err = time.Parse("2006-01-02 15:04", date+" "+startKey)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("无法解析计划出勤时间 %q %q: %w", date, startKey, err)
	}
	end = start.Add(time.Duration(shiftHours) * time.Hour)
	return start, end, nil
}

// Build 为一次确认生成工作记录：每个 assignment 的每个日期一条
// 出勤状态初始为未开始，结算状态初始为未结算；时段待定的报名计划时间留零值
func Build(app *domain.Application, posting *domain.JobPosting, assignments []domain.Assignment, now time.Time) ([]*domain.WorkLog, error) {
	logs := []*domain.WorkLog{}

	for _, assignment := range assignments {
		roleLabel := assignment.PrimaryRole()
		startKey := assignment.StartKey()

		for _, date := range assignment.Dates {
			canonical := domain.CanonicalDateString(date)
			if canonical == "" {
				return nil, fmt.Errorf("无法识别的报名日期: %q", date)
			}

			wl := &domain.WorkLog{
				ID:               uuid.NewString(),
				JobPostingID:     posting.ID,
				JobPostingTitle:  posting.Title,
				StaffID:          app.ApplicantID,
				StaffName:        app.ApplicantName,
				Role:             roleLabel,
				Date:             canonical,
				TimeSlotStart:    startKey,
				Status:           domain.WorkLogStatusScheduled,
				AttendanceStatus: domain.AttendanceNotStarted,
				SettlementStatus: domain.SettlementStatusUnpaid,
				CreatedAt:        now,
				UpdatedAt:        now,
			}

			if !assignment.IsTimeToBeAnnounced && startKey != "" {
				start, end, err := ScheduledTimes(canonical, startKey, posting.ShiftHours)
				if err != nil {
					return nil, err
				}
				wl.ScheduledStartTime = start
				wl.ScheduledEndTime = end
			}

			logs = append(logs, wl)
		}
	}

	return logs, nil
}
