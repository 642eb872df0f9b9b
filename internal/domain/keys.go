package domain

type CtxKey string

const (
	KeySessionManager CtxKey = "SessionManager"
	KeyRequestID      CtxKey = "RequestID"
)
