package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
)

// 需求树和薪酬配置以 jsonb 列整体存储，读写时在这里编解码
func marshalRequirements(reqs []domain.DateSpecificRequirement) ([]byte, error) {
	if reqs == nil {
		reqs = []domain.DateSpecificRequirement{}
	}
	return json.Marshal(reqs)
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// nil 指针装进 any 后不再是 nil 接口，这里先拆掉再交给编解码
func ptrOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

func unmarshalNullable(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func scanJobPosting(row interface{ Scan(...any) error }, posting *domain.JobPosting) error {
	var (
		reqsData      []byte
		defaultSalary []byte
		allowances    []byte
		taxSettings   []byte
		closedAt      sql.NullTime
	)

	dst := []any{
		&posting.ID, &posting.OwnerID, &posting.Title, &posting.Description, &posting.Status,
		&posting.TotalPositions, &posting.FilledPositions, &reqsData,
		&defaultSalary, &allowances, &taxSettings, &posting.ShiftHours,
		&posting.ViewCount, &posting.ApplicationCount, &closedAt, &posting.ClosedReason,
		&posting.CreatedAt, &posting.UpdatedAt, &posting.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return err
	}

	if err := json.Unmarshal(reqsData, &posting.DateSpecificRequirements); err != nil {
		return err
	}
	if err := unmarshalNullable(defaultSalary, &posting.DefaultSalary); err != nil {
		return err
	}
	if err := unmarshalNullable(allowances, &posting.Allowances); err != nil {
		return err
	}
	if err := unmarshalNullable(taxSettings, &posting.TaxSettings); err != nil {
		return err
	}
	if closedAt.Valid {
		posting.ClosedAt = &closedAt.Time
	}

	return nil
}

const jobPostingColumns = `
	id, owner_id, title, description, status,
	total_positions, filled_positions, requirements,
	default_salary, allowances, tax_settings, shift_hours,
	view_count, application_count, closed_at, closed_reason,
	created_at, updated_at, version
`

func (r *Repository) CreateJobPosting(posting *domain.JobPosting) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	reqsData, err := marshalRequirements(posting.DateSpecificRequirements)
	if err != nil {
		return err
	}
	defaultSalary, err := marshalNullable(ptrOrNil(posting.DefaultSalary))
	if err != nil {
		return err
	}
	allowances, err := marshalNullable(ptrOrNil(posting.Allowances))
	if err != nil {
		return err
	}
	taxSettings, err := marshalNullable(ptrOrNil(posting.TaxSettings))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO job_postings (owner_id, title, description, status, total_positions, filled_positions, requirements, default_salary, allowances, tax_settings, shift_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, view_count, application_count, created_at, updated_at, version
	`

	args := []any{
		posting.OwnerID, posting.Title, posting.Description, posting.Status,
		posting.TotalPositions, posting.FilledPositions, reqsData,
		defaultSalary, allowances, taxSettings, posting.ShiftHours,
	}
	dst := []any{&posting.ID, &posting.ViewCount, &posting.ApplicationCount, &posting.CreatedAt, &posting.UpdatedAt, &posting.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetJobPostingByID(id int64) (*domain.JobPosting, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT ` + jobPostingColumns + ` FROM job_postings WHERE id = $1`

	posting := &domain.JobPosting{}
	if err := scanJobPosting(r.dbpool.QueryRowContext(ctx, query, id), posting); err != nil {
		return nil, err
	}

	return posting, nil
}

func (r *Repository) GetAllJobPostings() ([]*domain.JobPosting, error) {
	return r.queryJobPostings(`SELECT `+jobPostingColumns+` FROM job_postings WHERE status != 'cancelled' ORDER BY created_at DESC`)
}

func (r *Repository) GetJobPostingsByOwner(ownerID int64) ([]*domain.JobPosting, error) {
	return r.queryJobPostings(`SELECT `+jobPostingColumns+` FROM job_postings WHERE owner_id = $1 AND status != 'cancelled' ORDER BY created_at DESC`, ownerID)
}

func (r *Repository) queryJobPostings(query string, args ...any) ([]*domain.JobPosting, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := make([]*domain.JobPosting, 0)
	for rows.Next() {
		posting := &domain.JobPosting{}
		if err := scanJobPosting(rows, posting); err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return postings, nil
}

func (r *Repository) UpdateJobPosting(posting *domain.JobPosting) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	reqsData, err := marshalRequirements(posting.DateSpecificRequirements)
	if err != nil {
		return err
	}
	defaultSalary, err := marshalNullable(ptrOrNil(posting.DefaultSalary))
	if err != nil {
		return err
	}
	allowances, err := marshalNullable(ptrOrNil(posting.Allowances))
	if err != nil {
		return err
	}
	taxSettings, err := marshalNullable(ptrOrNil(posting.TaxSettings))
	if err != nil {
		return err
	}

	query := `
		UPDATE job_postings
		SET
			title = $1,
			description = $2,
			status = $3,
			total_positions = $4,
			filled_positions = $5,
			requirements = $6,
			default_salary = $7,
			allowances = $8,
			tax_settings = $9,
			shift_hours = $10,
			closed_at = $11,
			closed_reason = $12,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING updated_at, version
	`

	args := []any{
		posting.Title, posting.Description, posting.Status,
		posting.TotalPositions, posting.FilledPositions, reqsData,
		defaultSalary, allowances, taxSettings, posting.ShiftHours,
		posting.ClosedAt, posting.ClosedReason,
		posting.ID, posting.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&posting.UpdatedAt, &posting.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) IncrementJobPostingViewCount(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `UPDATE job_postings SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}

// DeleteJobPosting 是软删除，公告被标记为已取消但数据保留
func (r *Repository) DeleteJobPosting(posting *domain.JobPosting) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE job_postings
		SET status = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING updated_at, version
	`

	args := []any{domain.PostingStatusCancelled, posting.ID, posting.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&posting.UpdatedAt, &posting.Version); err != nil {
		return err
	}
	posting.Status = domain.PostingStatusCancelled

	return nil
}
