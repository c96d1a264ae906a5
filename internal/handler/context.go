package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	UserInfoCtx    ContextKey = "userInfo"
	JobPostingCtx  ContextKey = "jobPosting"
	ApplicationCtx ContextKey = "application"
	WorkLogCtx     ContextKey = "workLog"
)
