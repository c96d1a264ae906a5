package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

const workLogColumns = `
	id, job_posting_id, job_posting_title, staff_id, staff_name, role,
	work_date, time_slot_start, scheduled_start_time, scheduled_end_time,
	actual_start_time, actual_end_time, status, attendance_status,
	settlement_status, pay_override, created_at, updated_at, version
`

func scanWorkLog(row interface{ Scan(...any) error }, wl *domain.WorkLog) error {
	var (
		scheduledStart sql.NullTime
		scheduledEnd   sql.NullTime
		actualStart    sql.NullTime
		actualEnd      sql.NullTime
		payOverride    []byte
	)

	dst := []any{
		&wl.ID, &wl.JobPostingID, &wl.JobPostingTitle, &wl.StaffID, &wl.StaffName, &wl.Role,
		&wl.Date, &wl.TimeSlotStart, &scheduledStart, &scheduledEnd,
		&actualStart, &actualEnd, &wl.Status, &wl.AttendanceStatus,
		&wl.SettlementStatus, &payOverride, &wl.CreatedAt, &wl.UpdatedAt, &wl.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return err
	}

	if scheduledStart.Valid {
		wl.ScheduledStartTime = scheduledStart.Time
	}
	if scheduledEnd.Valid {
		wl.ScheduledEndTime = scheduledEnd.Time
	}
	if actualStart.Valid {
		wl.ActualStartTime = &actualStart.Time
	}
	if actualEnd.Valid {
		wl.ActualEndTime = &actualEnd.Time
	}
	if err := unmarshalNullable(payOverride, &wl.PayOverride); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetWorkLogByID(id string) (*domain.WorkLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE id = $1`

	wl := &domain.WorkLog{}
	if err := scanWorkLog(r.dbpool.QueryRowContext(ctx, query, id), wl); err != nil {
		return nil, err
	}

	return wl, nil
}

func (r *Repository) GetWorkLogsByJobPosting(jobPostingID int64) ([]*domain.WorkLog, error) {
	return r.queryWorkLogs(`SELECT `+workLogColumns+` FROM work_logs WHERE job_posting_id = $1 ORDER BY work_date, time_slot_start`, jobPostingID)
}

func (r *Repository) GetWorkLogsByStaff(staffID int64) ([]*domain.WorkLog, error) {
	return r.queryWorkLogs(`SELECT `+workLogColumns+` FROM work_logs WHERE staff_id = $1 ORDER BY work_date DESC, time_slot_start`, staffID)
}

func (r *Repository) queryWorkLogs(query string, args ...any) ([]*domain.WorkLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workLogs := make([]*domain.WorkLog, 0)
	for rows.Next() {
		wl := &domain.WorkLog{}
		if err := scanWorkLog(rows, wl); err != nil {
			return nil, err
		}
		workLogs = append(workLogs, wl)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workLogs, nil
}

// UpdateWorkLogActualTimes 记录实际上下班时间并推进考勤状态
func (r *Repository) UpdateWorkLogActualTimes(wl *domain.WorkLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE work_logs
		SET
			actual_start_time = $1,
			actual_end_time = $2,
			attendance_status = $3,
			status = $4,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING updated_at, version
	`

	args := []any{wl.ActualStartTime, wl.ActualEndTime, wl.AttendanceStatus, wl.Status, wl.ID, wl.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&wl.UpdatedAt, &wl.Version)
}

func (r *Repository) UpdateWorkLogAttendance(wl *domain.WorkLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE work_logs
		SET attendance_status = $1, status = $2, updated_at = NOW(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING updated_at, version
	`

	args := []any{wl.AttendanceStatus, wl.Status, wl.ID, wl.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&wl.UpdatedAt, &wl.Version)
}

// UpdateWorkLogPayOverride 设置或清除单条工作记录的薪酬覆盖
func (r *Repository) UpdateWorkLogPayOverride(wl *domain.WorkLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	payOverride, err := marshalNullable(ptrOrNil(wl.PayOverride))
	if err != nil {
		return err
	}

	query := `
		UPDATE work_logs
		SET pay_override = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING updated_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query, payOverride, wl.ID, wl.Version).Scan(&wl.UpdatedAt, &wl.Version)
}

func (r *Repository) MarkWorkLogSettled(wl *domain.WorkLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE work_logs
		SET settlement_status = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING updated_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, domain.SettlementStatusSettled, wl.ID, wl.Version).Scan(&wl.UpdatedAt, &wl.Version); err != nil {
		return err
	}
	wl.SettlementStatus = domain.SettlementStatusSettled

	return nil
}
