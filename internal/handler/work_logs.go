package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/settlement"
)

func (h *Handler) GetJobPostingWorkLogs(w http.ResponseWriter, r *http.Request) {
	posting := r.Context().Value(JobPostingCtx).(*domain.JobPosting)

	workLogs, err := h.repository.GetWorkLogsByJobPosting(posting.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工作记录列表成功", workLogs)
}

func (h *Handler) GetMyWorkLogs(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	workLogs, err := h.repository.GetWorkLogsByStaff(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取我的工作记录成功", workLogs)
}

// 员工本人、公告所有者和管理员可以查看单条工作记录
func (h *Handler) canAccessWorkLog(r *http.Request, wl *domain.WorkLog) (bool, error) {
	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		return false, err
	}
	if wl.StaffID == sub {
		return true, nil
	}
	if domain.Role(r.Context().Value(RoleCtxKey).(string)) == domain.RoleAdmin {
		return true, nil
	}

	posting, err := h.repository.GetJobPostingByID(wl.JobPostingID)
	if err != nil {
		return false, err
	}
	return posting.OwnerID == sub, nil
}

func (h *Handler) GetWorkLog(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorkLogCtx).(*domain.WorkLog)

	ok, err := h.canAccessWorkLog(r, wl)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "权限不足")
		return
	}

	h.successResponse(w, r, "获取工作记录成功", wl)
}

// applyActualTimes 把本次提交的打卡时间合并进工作记录并推进出勤状态。
// 先合并再校验，只传一侧时也要和已存的另一侧比较先后
func applyActualTimes(wl *domain.WorkLog, start, end *time.Time) error {
	if start != nil {
		wl.ActualStartTime = start
	}
	if end != nil {
		wl.ActualEndTime = end
	}

	if wl.ActualStartTime != nil && wl.ActualEndTime != nil && wl.ActualEndTime.Before(*wl.ActualStartTime) {
		return errors.New("下班时间不能早于上班时间")
	}

	// 出勤状态跟随实际打卡推进
	switch {
	case wl.ActualStartTime != nil && wl.ActualEndTime != nil:
		wl.AttendanceStatus = domain.AttendanceCheckedOut
		wl.Status = domain.WorkLogStatusCompleted
	case wl.ActualStartTime != nil:
		wl.AttendanceStatus = domain.AttendanceCheckedIn
	}

	return nil
}

func (h *Handler) UpdateWorkLogActualTimes(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorkLogCtx).(*domain.WorkLog)

	if wl.Status == domain.WorkLogStatusCancelled {
		h.errorResponse(w, r, "已取消的工作记录不能记录出勤时间")
		return
	}

	var req struct {
		ActualStartTime *time.Time `json:"actualStartTime"`
		ActualEndTime   *time.Time `json:"actualEndTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.ActualStartTime == nil && req.ActualEndTime == nil {
		h.errorResponse(w, r, "至少需要提供一个出勤时间")
		return
	}

	if err := applyActualTimes(wl, req.ActualStartTime, req.ActualEndTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateWorkLogActualTimes(wl); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工作记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "记录出勤时间成功", wl)
}

func (h *Handler) UpdateWorkLogAttendance(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorkLogCtx).(*domain.WorkLog)

	if wl.Status == domain.WorkLogStatusCancelled {
		h.errorResponse(w, r, "已取消的工作记录不能修改出勤状态")
		return
	}

	var req struct {
		AttendanceStatus string `json:"attendanceStatus" validate:"required,oneof=not_started checked_in checked_out absent"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	wl.AttendanceStatus = domain.AttendanceStatus(req.AttendanceStatus)
	switch wl.AttendanceStatus {
	case domain.AttendanceCheckedOut, domain.AttendanceAbsent:
		wl.Status = domain.WorkLogStatusCompleted
	default:
		wl.Status = domain.WorkLogStatusScheduled
	}

	if err := h.repository.UpdateWorkLogAttendance(wl); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工作记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新出勤状态成功", wl)
}

func (h *Handler) UpdateWorkLogPayOverride(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorkLogCtx).(*domain.WorkLog)

	if wl.SettlementStatus == domain.SettlementStatusSettled {
		h.errorResponse(w, r, "已结算的工作记录不能修改薪酬")
		return
	}

	var req struct {
		PayOverride *domain.PayConfig `json:"payOverride"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.PayOverride != nil && req.PayOverride.Salary != nil && req.PayOverride.Salary.Amount < 0 {
		h.errorResponse(w, r, "薪资不能为负数")
		return
	}

	// 传 null 表示清除覆盖，回到公告配置
	wl.PayOverride = req.PayOverride

	if err := h.repository.UpdateWorkLogPayOverride(wl); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工作记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新薪酬覆盖成功", wl)
}

func (h *Handler) GetWorkLogSettlement(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorkLogCtx).(*domain.WorkLog)

	ok, err := h.canAccessWorkLog(r, wl)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "权限不足")
		return
	}

	if wl.Status == domain.WorkLogStatusCancelled {
		h.errorResponse(w, r, "已取消的工作记录没有结算金额")
		return
	}

	posting, err := h.repository.GetJobPostingByID(wl.JobPostingID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	eff := settlement.ResolveEffective(wl.PayOverride, posting, wl.Role)
	calc := settlement.Calculate(wl, eff)

	h.successResponse(w, r, "获取结算明细成功", calc)
}

func (h *Handler) MarkWorkLogSettled(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorkLogCtx).(*domain.WorkLog)

	if wl.Status != domain.WorkLogStatusCompleted {
		h.errorResponse(w, r, "只有已完成的工作记录才能结算")
		return
	}
	if wl.SettlementStatus == domain.SettlementStatusSettled {
		h.errorResponse(w, r, "该工作记录已结算")
		return
	}

	if err := h.repository.MarkWorkLogSettled(wl); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工作记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "结算成功", wl)
}
