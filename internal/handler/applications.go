package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/capacity"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/identity"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/utils"
)

func (h *Handler) publishNotification(msg domain.MailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
}

func (h *Handler) ApplyToJobPosting(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if posting.Status != domain.PostingStatusActive {
		h.errorResponse(w, r, "该公告未在招聘中")
		return
	}

	var req struct {
		Assignments []domain.Assignment `json:"assignments" validate:"required,min=1"`
		Notes       string              `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateAssignments(posting, req.Assignments); err != nil {
		h.badRequest(w, r, err)
		return
	}

	app := &domain.Application{
		ID:            identity.NewApplicationID(strconv.FormatInt(posting.ID, 10), strconv.FormatInt(myInfo.ID, 10)),
		JobPostingID:  posting.ID,
		ApplicantID:   myInfo.ID,
		ApplicantName: myInfo.FullName,
		Status:        domain.ApplicationStatusApplied,
		Assignments:   req.Assignments,
		Notes:         req.Notes,
	}

	if err := h.repository.CreateApplication(app); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "applications_pkey":
			h.errorResponse(w, r, "您已报名过该公告")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "报名成功", app)
}

func (h *Handler) GetJobPostingApplications(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	apps, err := h.repository.GetApplicationsByJobPosting(posting.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取报名列表成功", apps)
}

func (h *Handler) GetJobPostingApplicationStats(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	stats, err := h.repository.GetApplicationStatsByJobPosting(posting.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取报名统计成功", stats)
}

func (h *Handler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	apps, err := h.repository.GetApplicationsByApplicant(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取我的报名成功", apps)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 报名人、公告所有者和管理员可以查看
	if app.ApplicantID != sub && domain.Role(r.Context().Value(RoleCtxKey).(string)) != domain.RoleAdmin {
		posting, err := h.repository.GetJobPostingByID(app.JobPostingID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if posting.OwnerID != sub {
			h.errorResponse(w, r, "权限不足")
			return
		}
	}

	h.successResponse(w, r, "获取报名记录成功", app)
}

func (h *Handler) ConfirmApplication(w http.ResponseWriter, r *http.Request) {
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	confirmed, workLogs, err := h.repository.ConfirmApplication(app.ID, sub)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMaxCapacityReached),
			errors.Is(err, domain.ErrApplicationNotConfirmable),
			errors.Is(err, capacity.ErrCapacityUnverified):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "报名记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyApplicationConfirmed(r, confirmed, workLogs)

	h.successResponse(w, r, "确认报名成功", map[string]any{
		"application": confirmed,
		"workLogs":    workLogs,
	})
}

func (h *Handler) notifyApplicationConfirmed(r *http.Request, app *domain.Application, workLogs []*domain.WorkLog) {
	applicant, err := h.repository.GetUserByID(app.ApplicantID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	dates := make([]string, 0, len(workLogs))
	for _, wl := range workLogs {
		dates = append(dates, wl.Date)
	}

	title := ""
	if len(workLogs) > 0 {
		title = workLogs[0].JobPostingTitle
	}

	msg := domain.MailMessage{
		Type: "application_confirmed",
		To:   applicant.Email,
		Data: domain.ApplicationConfirmedMailData{
			FullName:     applicant.FullName,
			PostingTitle: title,
			Dates:        dates,
		},
	}
	if err := h.publishNotification(msg); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.RejectApplication(app, sub, req.Reason); err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationAlreadyProcessed):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "报名记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "拒绝报名成功", app)
}

func (h *Handler) CancelConfirmation(w http.ResponseWriter, r *http.Request) {
	app := r.Context().Value(ApplicationCtx).(*domain.Application)
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	cancelled, err := h.repository.CancelConfirmation(app.ID, sub, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotCancellable):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "报名记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if applicant, err := h.repository.GetUserByID(cancelled.ApplicantID); err != nil {
		h.logInternalServerError(r, err)
	} else {
		msg := domain.MailMessage{
			Type: "confirmation_cancelled",
			To:   applicant.Email,
			Data: domain.ConfirmationCancelledMailData{
				FullName:     applicant.FullName,
				PostingTitle: posting.Title,
				Reason:       req.Reason,
			},
		}
		if err := h.publishNotification(msg); err != nil {
			h.logInternalServerError(r, err)
		}
	}

	h.successResponse(w, r, "取消确认成功", cancelled)
}

// applicationBelongsToPosting 校验复合报名 ID 的公告前缀，
// 批量确认只允许操作当前公告下的报名
func applicationBelongsToPosting(applicationID string, postingID int64) bool {
	jobPostingID, _, err := identity.ParseApplicationID(applicationID)
	if err != nil {
		return false
	}
	return jobPostingID == strconv.FormatInt(postingID, 10)
}

func (h *Handler) BulkConfirmApplications(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	var req struct {
		ApplicationIDs []string `json:"applicationIds" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	type failure struct {
		ApplicationID string `json:"applicationId"`
		Reason        string `json:"reason"`
	}

	confirmedIDs := make([]string, 0, len(req.ApplicationIDs))
	failures := make([]failure, 0)

	// 逐个确认，单个失败不影响其余报名
	for _, id := range req.ApplicationIDs {
		if !applicationBelongsToPosting(id, posting.ID) {
			failures = append(failures, failure{ApplicationID: id, Reason: "该报名不属于当前公告"})
			continue
		}

		confirmed, workLogs, err := h.repository.ConfirmApplication(id, sub)
		if err != nil {
			reason := "确认失败"
			switch {
			case errors.Is(err, domain.ErrMaxCapacityReached),
				errors.Is(err, domain.ErrApplicationNotConfirmable),
				errors.Is(err, capacity.ErrCapacityUnverified):
				reason = err.Error()
			case errors.Is(err, sql.ErrNoRows):
				reason = "报名记录不存在或已被修改"
			default:
				h.logInternalServerError(r, err)
			}
			failures = append(failures, failure{ApplicationID: id, Reason: reason})
			continue
		}

		h.notifyApplicationConfirmed(r, confirmed, workLogs)
		confirmedIDs = append(confirmedIDs, id)
	}

	h.successResponse(w, r, "批量确认完成", map[string]any{
		"confirmed": confirmedIDs,
		"failed":    failures,
	})
}
