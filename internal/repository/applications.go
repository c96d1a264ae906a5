package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/capacity"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/worklog"
)

const applicationColumns = `
	id, job_posting_id, applicant_id, applicant_name, status,
	assignments, original_assignments, notes, rejection_reason,
	processed_by, processed_at, confirmed_at, cancelled_at,
	created_at, updated_at, version
`

func scanApplication(row interface{ Scan(...any) error }, app *domain.Application) error {
	var (
		assignments         []byte
		originalAssignments []byte
		processedBy         sql.NullInt64
		processedAt         sql.NullTime
		confirmedAt         sql.NullTime
		cancelledAt         sql.NullTime
	)

	dst := []any{
		&app.ID, &app.JobPostingID, &app.ApplicantID, &app.ApplicantName, &app.Status,
		&assignments, &originalAssignments, &app.Notes, &app.RejectionReason,
		&processedBy, &processedAt, &confirmedAt, &cancelledAt,
		&app.CreatedAt, &app.UpdatedAt, &app.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return err
	}

	if err := json.Unmarshal(assignments, &app.Assignments); err != nil {
		return err
	}
	if err := unmarshalNullable(originalAssignments, &app.OriginalAssignments); err != nil {
		return err
	}
	if processedBy.Valid {
		app.ProcessedBy = &processedBy.Int64
	}
	if processedAt.Valid {
		app.ProcessedAt = &processedAt.Time
	}
	if confirmedAt.Valid {
		app.ConfirmedAt = &confirmedAt.Time
	}
	if cancelledAt.Valid {
		app.CancelledAt = &cancelledAt.Time
	}

	return nil
}

// CreateApplication 插入报名记录并同步累加公告的报名计数
func (r *Repository) CreateApplication(app *domain.Application) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	assignments, err := json.Marshal(app.Assignments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO applications (id, job_posting_id, applicant_id, applicant_name, status, assignments, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, version
	`

	args := []any{app.ID, app.JobPostingID, app.ApplicantID, app.ApplicantName, app.Status, assignments, app.Notes}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&app.CreatedAt, &app.UpdatedAt, &app.Version); err != nil {
		return err
	}

	query = `UPDATE job_postings SET application_count = application_count + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, app.JobPostingID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetApplicationByID(id string) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app := &domain.Application{}
	if err := scanApplication(r.dbpool.QueryRowContext(ctx, query, id), app); err != nil {
		return nil, err
	}

	return app, nil
}

func (r *Repository) GetApplicationsByJobPosting(jobPostingID int64) ([]*domain.Application, error) {
	return r.queryApplications(`SELECT `+applicationColumns+` FROM applications WHERE job_posting_id = $1 ORDER BY created_at`, jobPostingID)
}

func (r *Repository) GetApplicationsByApplicant(applicantID int64) ([]*domain.Application, error) {
	return r.queryApplications(`SELECT `+applicationColumns+` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
}

func (r *Repository) queryApplications(query string, args ...any) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]*domain.Application, 0)
	for rows.Next() {
		app := &domain.Application{}
		if err := scanApplication(rows, app); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *Repository) GetApplicationStatsByJobPosting(jobPostingID int64) (*domain.ApplicationStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT status FROM applications WHERE job_posting_id = $1`

	rows, err := r.dbpool.QueryContext(ctx, query, jobPostingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.ApplicationStats{}
	for rows.Next() {
		var status domain.ApplicationStatus
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		stats.Count(status)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// RejectApplication 将报名标记为已拒绝，只有未处理的报名可以拒绝
func (r *Repository) RejectApplication(app *domain.Application, operatorID int64, reason string) error {
	if app.Status != domain.ApplicationStatusApplied && app.Status != domain.ApplicationStatusPending {
		return domain.ErrApplicationAlreadyProcessed
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE applications
		SET
			status = $1,
			rejection_reason = $2,
			processed_by = $3,
			processed_at = NOW(),
			updated_at = NOW(),
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING processed_at, updated_at, version
	`

	args := []any{domain.ApplicationStatusRejected, reason, operatorID, app.ID, app.Version}
	var processedAt time.Time
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&processedAt, &app.UpdatedAt, &app.Version); err != nil {
		return err
	}

	app.Status = domain.ApplicationStatusRejected
	app.RejectionReason = reason
	app.ProcessedBy = &operatorID
	app.ProcessedAt = &processedAt

	return nil
}

func (r *Repository) lockJobPostingTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.JobPosting, error) {
	query := `SELECT ` + jobPostingColumns + ` FROM job_postings WHERE id = $1 FOR UPDATE`

	posting := &domain.JobPosting{}
	if err := scanJobPosting(tx.QueryRowContext(ctx, query, id), posting); err != nil {
		return nil, err
	}

	return posting, nil
}

func (r *Repository) lockApplicationTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`

	app := &domain.Application{}
	if err := scanApplication(tx.QueryRowContext(ctx, query, id), app); err != nil {
		return nil, err
	}

	return app, nil
}

func (r *Repository) updateJobPostingTx(ctx context.Context, tx *sql.Tx, posting *domain.JobPosting) error {
	reqsData, err := marshalRequirements(posting.DateSpecificRequirements)
	if err != nil {
		return err
	}

	query := `
		UPDATE job_postings
		SET
			status = $1,
			total_positions = $2,
			filled_positions = $3,
			requirements = $4,
			closed_at = $5,
			closed_reason = $6,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING updated_at, version
	`

	args := []any{
		posting.Status, posting.TotalPositions, posting.FilledPositions, reqsData,
		posting.ClosedAt, posting.ClosedReason, posting.ID, posting.Version,
	}
	return tx.QueryRowContext(ctx, query, args...).Scan(&posting.UpdatedAt, &posting.Version)
}

func (r *Repository) insertWorkLogTx(ctx context.Context, tx *sql.Tx, wl *domain.WorkLog) error {
	payOverride, err := marshalNullable(ptrOrNil(wl.PayOverride))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO work_logs (
			id, job_posting_id, job_posting_title, staff_id, staff_name, role,
			work_date, time_slot_start, scheduled_start_time, scheduled_end_time,
			status, attendance_status, settlement_status, pay_override
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at, version
	`

	args := []any{
		wl.ID, wl.JobPostingID, wl.JobPostingTitle, wl.StaffID, wl.StaffName, wl.Role,
		wl.Date, wl.TimeSlotStart, timeOrNil(wl.ScheduledStartTime), timeOrNil(wl.ScheduledEndTime),
		wl.Status, wl.AttendanceStatus, wl.SettlementStatus, payOverride,
	}
	return tx.QueryRowContext(ctx, query, args...).Scan(&wl.CreatedAt, &wl.UpdatedAt, &wl.Version)
}

func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// ConfirmApplication 在一个事务里完成确认报名的全部副作用：
// 锁定公告行，核对容量后逐叶累加 filled，生成排班工作记录，
// 满员时自动关闭公告，最后把报名置为已确认
func (r *Repository) ConfirmApplication(applicationID string, operatorID int64) (*domain.Application, []*domain.WorkLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	app, err := r.lockApplicationTx(ctx, tx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if app.Status != domain.ApplicationStatusApplied && app.Status != domain.ApplicationStatusPending {
		return nil, nil, domain.ErrApplicationNotConfirmable
	}

	posting, err := r.lockJobPostingTx(ctx, tx, app.JobPostingID)
	if err != nil {
		return nil, nil, err
	}

	// 先用总量做一次预检，本次要占用的名额数也计入，不够就不再进入逐叶核对
	if err := capacity.CheckHeadroom(posting.TotalPositions, posting.FilledPositions, app.Assignments); err != nil {
		return nil, nil, err
	}

	updatedReqs, _, err := capacity.Reconcile(posting.DateSpecificRequirements, app.Assignments, capacity.Increment)
	if err != nil {
		return nil, nil, err
	}
	posting.DateSpecificRequirements = updatedReqs
	posting.TotalPositions, posting.FilledPositions = posting.CountPositions()

	// 满员自动关闭
	if posting.TotalPositions > 0 && posting.FilledPositions >= posting.TotalPositions && posting.Status == domain.PostingStatusActive {
		now := time.Now()
		posting.Status = domain.PostingStatusClosed
		posting.ClosedAt = &now
		posting.ClosedReason = "名额已满，自动关闭"
	}

	if err := r.updateJobPostingTx(ctx, tx, posting); err != nil {
		return nil, nil, err
	}

	shiftHours := posting.ShiftHours
	if shiftHours <= 0 {
		shiftHours = int32(r.cfg.Posting.DefaultShiftHours)
	}
	postingForLogs := *posting
	postingForLogs.ShiftHours = shiftHours

	workLogs, err := worklog.Build(app, &postingForLogs, app.Assignments, time.Now())
	if err != nil {
		return nil, nil, err
	}
	for _, wl := range workLogs {
		if err := r.insertWorkLogTx(ctx, tx, wl); err != nil {
			return nil, nil, err
		}
	}

	query := `
		UPDATE applications
		SET
			status = $1,
			processed_by = $2,
			processed_at = NOW(),
			confirmed_at = NOW(),
			updated_at = NOW(),
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING processed_at, confirmed_at, updated_at, version
	`

	var processedAt, confirmedAt time.Time
	args := []any{domain.ApplicationStatusConfirmed, operatorID, app.ID, app.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&processedAt, &confirmedAt, &app.UpdatedAt, &app.Version); err != nil {
		return nil, nil, err
	}
	app.Status = domain.ApplicationStatusConfirmed
	app.ProcessedBy = &operatorID
	app.ProcessedAt = &processedAt
	app.ConfirmedAt = &confirmedAt

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return app, workLogs, nil
}

// CancelConfirmation 在一个事务里撤销一次确认：
// 逐叶回退 filled（回退永不失败），取消未开始的工作记录，
// 报名恢复为已申请并还原原始排班，公告若因满员关闭则自动重新开放
func (r *Repository) CancelConfirmation(applicationID string, operatorID int64, reason string) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	app, err := r.lockApplicationTx(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusConfirmed {
		return nil, domain.ErrApplicationNotCancellable
	}

	posting, err := r.lockJobPostingTx(ctx, tx, app.JobPostingID)
	if err != nil {
		return nil, err
	}

	// 回退时优先使用确认当时的排班快照
	assignments := app.Assignments
	if len(app.OriginalAssignments) > 0 {
		assignments = app.OriginalAssignments
	}

	updatedReqs, _, err := capacity.Reconcile(posting.DateSpecificRequirements, assignments, capacity.Decrement)
	if err != nil {
		return nil, err
	}
	posting.DateSpecificRequirements = updatedReqs
	posting.TotalPositions, posting.FilledPositions = posting.CountPositions()

	// 因满员关闭的公告有名额空出后自动重新开放
	if posting.Status == domain.PostingStatusClosed && posting.FilledPositions < posting.TotalPositions {
		posting.Status = domain.PostingStatusActive
		posting.ClosedAt = nil
		posting.ClosedReason = ""
	}

	if err := r.updateJobPostingTx(ctx, tx, posting); err != nil {
		return nil, err
	}

	// 只取消还未开始的工作记录，已完成的保留
	query := `
		UPDATE work_logs
		SET status = $1, updated_at = NOW(), version = version + 1
		WHERE job_posting_id = $2 AND staff_id = $3 AND status = $4
	`
	args := []any{domain.WorkLogStatusCancelled, app.JobPostingID, app.ApplicantID, domain.WorkLogStatusScheduled}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	restoredAssignments, err := json.Marshal(assignments)
	if err != nil {
		return nil, err
	}

	query = `
		UPDATE applications
		SET
			status = $1,
			assignments = $2,
			original_assignments = NULL,
			rejection_reason = $3,
			processed_by = $4,
			cancelled_at = NOW(),
			updated_at = NOW(),
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING cancelled_at, updated_at, version
	`

	var cancelledAt time.Time
	args = []any{domain.ApplicationStatusApplied, restoredAssignments, reason, operatorID, app.ID, app.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&cancelledAt, &app.UpdatedAt, &app.Version); err != nil {
		return nil, err
	}
	app.Status = domain.ApplicationStatusApplied
	app.Assignments = assignments
	app.OriginalAssignments = nil
	app.RejectionReason = reason
	app.ProcessedBy = &operatorID
	app.CancelledAt = &cancelledAt

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return app, nil
}
