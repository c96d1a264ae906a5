package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/utils"
)

func (h *Handler) CreateJobPosting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title                    string                           `json:"title" validate:"required"`
		Description              string                           `json:"description"`
		DateSpecificRequirements []domain.DateSpecificRequirement `json:"dateSpecificRequirements" validate:"required"`
		DefaultSalary            *domain.SalaryInfo               `json:"defaultSalary"`
		Allowances               *domain.AllowanceConfig          `json:"allowances"`
		TaxSettings              *domain.TaxSettings              `json:"taxSettings"`
		ShiftHours               int32                            `json:"shiftHours" validate:"omitempty,min=1,max=24"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 新建公告时已确认人数必须从零开始
	for i := range req.DateSpecificRequirements {
		for j := range req.DateSpecificRequirements[i].TimeSlots {
			for k := range req.DateSpecificRequirements[i].TimeSlots[j].Roles {
				req.DateSpecificRequirements[i].TimeSlots[j].Roles[k].Filled = 0
			}
		}
	}

	if err := utils.ValidateRequirementTree(req.DateSpecificRequirements); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	posting := &domain.JobPosting{
		OwnerID:                  sub,
		Title:                    req.Title,
		Description:              req.Description,
		Status:                   domain.PostingStatusActive,
		DateSpecificRequirements: req.DateSpecificRequirements,
		DefaultSalary:            req.DefaultSalary,
		Allowances:               req.Allowances,
		TaxSettings:              req.TaxSettings,
		ShiftHours:               req.ShiftHours,
	}
	if posting.ShiftHours <= 0 {
		posting.ShiftHours = int32(h.config.Posting.DefaultShiftHours)
	}
	posting.TotalPositions, posting.FilledPositions = posting.CountPositions()

	if err := h.repository.CreateJobPosting(posting); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建招聘公告成功", posting)
}

func (h *Handler) GetAllJobPostings(w http.ResponseWriter, r *http.Request) {
	var (
		postings []*domain.JobPosting
		err      error
	)

	// owner=me 时只返回当前用户发布的公告
	if r.URL.Query().Get("owner") == "me" {
		var sub int64
		sub, err = strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		postings, err = h.repository.GetJobPostingsByOwner(sub)
	} else {
		postings, err = h.repository.GetAllJobPostings()
	}

	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取招聘公告列表成功", postings)
}

func (h *Handler) GetJobPosting(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	if err := h.repository.IncrementJobPostingViewCount(posting.ID); err != nil {
		// 浏览计数失败不影响读取
		slog.Warn("更新公告浏览计数失败", "postingID", posting.ID, "error", err)
	}

	h.successResponse(w, r, "获取招聘公告成功", posting)
}

func (h *Handler) UpdateJobPosting(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	var req struct {
		Title                    *string                          `json:"title"`
		Description              *string                          `json:"description"`
		DateSpecificRequirements []domain.DateSpecificRequirement `json:"dateSpecificRequirements"`
		DefaultSalary            *domain.SalaryInfo               `json:"defaultSalary"`
		Allowances               *domain.AllowanceConfig          `json:"allowances"`
		TaxSettings              *domain.TaxSettings              `json:"taxSettings"`
		ShiftHours               *int32                           `json:"shiftHours" validate:"omitempty,min=1,max=24"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Title != nil {
		posting.Title = *req.Title
	}
	if req.Description != nil {
		posting.Description = *req.Description
	}
	if req.DefaultSalary != nil {
		posting.DefaultSalary = req.DefaultSalary
	}
	if req.Allowances != nil {
		posting.Allowances = req.Allowances
	}
	if req.TaxSettings != nil {
		posting.TaxSettings = req.TaxSettings
	}
	if req.ShiftHours != nil {
		posting.ShiftHours = *req.ShiftHours
	}

	if req.DateSpecificRequirements != nil {
		merged, err := mergeRequirements(posting.DateSpecificRequirements, req.DateSpecificRequirements)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		if err := utils.ValidateRequirementTree(merged); err != nil {
			h.badRequest(w, r, err)
			return
		}
		posting.DateSpecificRequirements = merged
		posting.TotalPositions, posting.FilledPositions = posting.CountPositions()
	}

	if err := h.repository.UpdateJobPosting(posting); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "公告已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新招聘公告成功", posting)
}

// mergeRequirements 把旧树上的已确认人数带到新树上
// 已确认人数只能由确认和取消确认流程改动，不接受客户端提交的值
func mergeRequirements(old, updated []domain.DateSpecificRequirement) ([]domain.DateSpecificRequirement, error) {
	for i := range updated {
		date := updated[i].Date.Canonical()
		for j := range updated[i].TimeSlots {
			slot := &updated[i].TimeSlots[j]
			for k := range slot.Roles {
				role := &slot.Roles[k]
				role.Filled = 0

				for _, oldReq := range old {
					if oldReq.Date.Canonical() != date {
						continue
					}
					for _, oldSlot := range oldReq.TimeSlots {
						if oldSlot.StartKey() != slot.StartKey() {
							continue
						}
						for _, oldRole := range oldSlot.Roles {
							if oldRole.Role == role.Role && oldRole.CustomRole == role.CustomRole {
								role.Filled = oldRole.Filled
							}
						}
					}
				}

				if role.Headcount < role.Filled {
					return nil, fmt.Errorf("日期 %s 的岗位名额不能低于已确认人数 %d", date, role.Filled)
				}
			}
		}
	}

	// 已有确认记录的日期不允许整个删掉
	for _, oldReq := range old {
		for _, oldSlot := range oldReq.TimeSlots {
			for _, oldRole := range oldSlot.Roles {
				if oldRole.Filled == 0 {
					continue
				}
				kept := false
				for _, req := range updated {
					if req.Date.Canonical() == oldReq.Date.Canonical() {
						kept = true
					}
				}
				if !kept {
					return nil, fmt.Errorf("日期 %s 已有确认记录，不能删除", oldReq.Date.Canonical())
				}
			}
		}
	}

	return updated, nil
}

func (h *Handler) DeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	if posting.FilledPositions > 0 {
		h.errorResponse(w, r, "公告下已有确认的报名，不能删除")
		return
	}

	if err := h.repository.DeleteJobPosting(posting); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "公告已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除招聘公告成功", nil)
}

func (h *Handler) CloseJobPosting(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	if posting.Status != domain.PostingStatusActive {
		h.errorResponse(w, r, "只有发布中的公告才能关闭")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	now := time.Now()
	posting.Status = domain.PostingStatusClosed
	posting.ClosedAt = &now
	posting.ClosedReason = req.Reason

	if err := h.repository.UpdateJobPosting(posting); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "公告已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "关闭招聘公告成功", posting)
}

func (h *Handler) ReopenJobPosting(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	if posting.Status != domain.PostingStatusClosed {
		h.errorResponse(w, r, "只有已关闭的公告才能重新开放")
		return
	}
	if posting.TotalPositions > 0 && posting.FilledPositions >= posting.TotalPositions {
		h.errorResponse(w, r, "名额已满，无法重新开放")
		return
	}

	posting.Status = domain.PostingStatusActive
	posting.ClosedAt = nil
	posting.ClosedReason = ""

	if err := h.repository.UpdateJobPosting(posting); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "公告已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "重新开放招聘公告成功", posting)
}
