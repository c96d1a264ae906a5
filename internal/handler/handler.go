package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/config"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/domain"
	"github.com/staffpool-dev/staff-marketplace/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/", h.UpdateMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
			r.Get("/applications", h.GetMyApplications)
			r.Get("/work-logs", h.GetMyWorkLogs)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/job-postings", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleEmployer, domain.RoleAdmin})).Post("/", h.CreateJobPosting)
			r.Get("/", h.GetAllJobPostings)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.jobPosting)
				r.Get("/", h.GetJobPosting)
				r.With(h.requirePostingOwner).Patch("/", h.UpdateJobPosting)
				r.With(h.requirePostingOwner).Delete("/", h.DeleteJobPosting)
				r.With(h.requirePostingOwner).Post("/close", h.CloseJobPosting)
				r.With(h.requirePostingOwner).Post("/reopen", h.ReopenJobPosting)

				r.Route("/applications", func(r chi.Router) {
					r.With(h.myInfo, h.preventInactiveUser).Post("/", h.ApplyToJobPosting)
					r.With(h.requirePostingOwner).Get("/", h.GetJobPostingApplications)
					r.With(h.requirePostingOwner).Get("/stats", h.GetJobPostingApplicationStats)
					r.With(h.requirePostingOwner).Post("/bulk-confirm", h.BulkConfirmApplications)
				})

				r.With(h.requirePostingOwner).Get("/work-logs", h.GetJobPostingWorkLogs)
			})
		})

		r.Route("/applications/{id}", func(r chi.Router) {
			r.Use(h.application)
			r.Get("/", h.GetApplication)
			r.With(h.requireApplicationPostingOwner).Post("/confirm", h.ConfirmApplication)
			r.With(h.requireApplicationPostingOwner).Post("/reject", h.RejectApplication)
			r.With(h.requireApplicationPostingOwner).Post("/cancel-confirmation", h.CancelConfirmation)
		})

		r.Route("/work-logs/{id}", func(r chi.Router) {
			r.Use(h.workLog)
			r.Get("/", h.GetWorkLog)
			r.With(h.requireWorkLogPostingOwner).Patch("/actual-times", h.UpdateWorkLogActualTimes)
			r.With(h.requireWorkLogPostingOwner).Patch("/attendance", h.UpdateWorkLogAttendance)
			r.With(h.requireWorkLogPostingOwner).Patch("/pay-override", h.UpdateWorkLogPayOverride)
			r.Get("/settlement", h.GetWorkLogSettlement)
			r.With(h.requireWorkLogPostingOwner).Post("/mark-settled", h.MarkWorkLogSettled)
		})
	})
}
