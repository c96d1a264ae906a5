package handler

import (
	"testing"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestApplyActualTimes(t *testing.T) {
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	t.Run("只打上班卡", func(t *testing.T) {
		wl := &domain.WorkLog{Status: domain.WorkLogStatusScheduled, AttendanceStatus: domain.AttendanceNotStarted}

		require.NoError(t, applyActualTimes(wl, timePtr(start), nil))
		assert.Equal(t, domain.AttendanceCheckedIn, wl.AttendanceStatus)
		assert.Equal(t, domain.WorkLogStatusScheduled, wl.Status)
	})

	t.Run("补交下班卡后完成", func(t *testing.T) {
		wl := &domain.WorkLog{
			Status:           domain.WorkLogStatusScheduled,
			AttendanceStatus: domain.AttendanceCheckedIn,
			ActualStartTime:  timePtr(start),
		}

		require.NoError(t, applyActualTimes(wl, nil, timePtr(end)))
		assert.Equal(t, domain.AttendanceCheckedOut, wl.AttendanceStatus)
		assert.Equal(t, domain.WorkLogStatusCompleted, wl.Status)
	})

	t.Run("单独提交的下班时间早于已存上班时间", func(t *testing.T) {
		wl := &domain.WorkLog{
			Status:           domain.WorkLogStatusScheduled,
			AttendanceStatus: domain.AttendanceCheckedIn,
			ActualStartTime:  timePtr(start),
		}

		err := applyActualTimes(wl, nil, timePtr(start.Add(-time.Hour)))
		assert.Error(t, err)
	})

	t.Run("单独提交的上班时间晚于已存下班时间", func(t *testing.T) {
		wl := &domain.WorkLog{
			Status:        domain.WorkLogStatusScheduled,
			ActualEndTime: timePtr(end),
		}

		err := applyActualTimes(wl, timePtr(end.Add(time.Hour)), nil)
		assert.Error(t, err)
	})

	t.Run("同一次提交先后颠倒", func(t *testing.T) {
		wl := &domain.WorkLog{Status: domain.WorkLogStatusScheduled}

		err := applyActualTimes(wl, timePtr(end), timePtr(start))
		assert.Error(t, err)
	})
}
