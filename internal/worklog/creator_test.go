package worklog

import (
	"testing"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledTimes(t *testing.T) {
	start, end, err := ScheduledTimes("2026-09-01", "14:00", 8)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01 14:00", start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2026-09-01 22:00", end.Format("2006-01-02 15:04"))

	// 班次跨天
	start, end, err = ScheduledTimes("2026-09-01", "20:00", 6)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-02 02:00", end.Format("2006-01-02 15:04"))
	assert.True(t, end.After(start))
}

func TestScheduledTimesInvalid(t *testing.T) {
	_, _, err := ScheduledTimes("2026-09-01", "晚上", 8)
	assert.Error(t, err)
}

func TestBuildOneLogPerAssignmentDate(t *testing.T) {
	app := &domain.Application{
		ID:            "1_2",
		ApplicantID:   2,
		ApplicantName: "张伟",
	}
	posting := &domain.JobPosting{
		ID:         1,
		Title:      "婚宴服务员",
		ShiftHours: 8,
	}
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01", "2026-09-02"}, TimeSlot: "14:00", RoleIDs: []string{"server"}},
		{Dates: []string{"2026-09-03"}, TimeSlot: "09:00", RoleIDs: []string{"dealer"}},
	}

	now := time.Now()
	logs, err := Build(app, posting, assignments, now)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	first := logs[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, int64(1), first.JobPostingID)
	assert.Equal(t, "婚宴服务员", first.JobPostingTitle)
	assert.Equal(t, int64(2), first.StaffID)
	assert.Equal(t, "张伟", first.StaffName)
	assert.Equal(t, "server", first.Role)
	assert.Equal(t, "2026-09-01", first.Date)
	assert.Equal(t, "14:00", first.TimeSlotStart)
	assert.Equal(t, domain.WorkLogStatusScheduled, first.Status)
	assert.Equal(t, domain.AttendanceNotStarted, first.AttendanceStatus)
	assert.Equal(t, domain.SettlementStatusUnpaid, first.SettlementStatus)

	assert.Equal(t, float64(8), first.ScheduledEndTime.Sub(first.ScheduledStartTime).Hours())

	assert.Equal(t, "dealer", logs[2].Role)
	assert.Equal(t, "2026-09-03", logs[2].Date)

	// 每条记录的 ID 必须唯一
	ids := map[string]bool{}
	for _, wl := range logs {
		ids[wl.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestBuildNormalizesDates(t *testing.T) {
	app := &domain.Application{ApplicantID: 2}
	posting := &domain.JobPosting{ID: 1, ShiftHours: 8}
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01T00:00:00Z"}, TimeSlot: "14:00~18:00", RoleIDs: []string{"server"}},
	}

	logs, err := Build(app, posting, assignments, time.Now())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2026-09-01", logs[0].Date)
	assert.Equal(t, "14:00", logs[0].TimeSlotStart)
}

func TestBuildUnparseableDateFails(t *testing.T) {
	app := &domain.Application{ApplicantID: 2}
	posting := &domain.JobPosting{ID: 1, ShiftHours: 8}
	assignments := []domain.Assignment{
		{Dates: []string{"下周三"}, TimeSlot: "14:00", RoleIDs: []string{"server"}},
	}

	_, err := Build(app, posting, assignments, time.Now())
	assert.Error(t, err)
}

func TestBuildTimeToBeAnnounced(t *testing.T) {
	app := &domain.Application{ApplicantID: 2}
	posting := &domain.JobPosting{ID: 1, ShiftHours: 8}
	assignments := []domain.Assignment{
		{Dates: []string{"2026-09-01"}, IsTimeToBeAnnounced: true, TentativeDescription: "时间另行通知", RoleIDs: []string{"floor"}},
	}

	logs, err := Build(app, posting, assignments, time.Now())
	require.NoError(t, err)
	require.Len(t, logs, 1)

	// 时段待定时计划时间留零值，结算时会按预估处理
	assert.True(t, logs[0].ScheduledStartTime.IsZero())
	assert.True(t, logs[0].ScheduledEndTime.IsZero())
	assert.Empty(t, logs[0].TimeSlotStart)
}
