package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	// Default identities for tests and scripts.
	DefaultUserID      = "user_default"
	DefaultWorkspaceID = "ws_default"

	// HTTP headers
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"

	CtxRequestID   ContextKey = "ctx_request_id"
	CtxWorkspaceID ContextKey = "ctx_workspace_id"
	CtxUserID      ContextKey = "ctx_user_id"
	CtxJWT         ContextKey = "ctx_jwt"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetWorkspaceID(ctx context.Context) string {
	if workspaceID, ok := ctx.Value(CtxWorkspaceID).(string); ok {
		return workspaceID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, CtxWorkspaceID, workspaceID)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}
