package testutil

import (
	"context"
	"net/http"

	"punchcard/internal/platform/middleware"
)

// WithUser adds a user ID to the request context, simulating what the
// auth middleware does for authenticated requests.
func WithUser(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)
	return req.WithContext(ctx)
}

// WithAuth adds the full authenticated identity to the request context.
// Empty values are skipped.
func WithAuth(req *http.Request, userID, region, deviceID string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	}
	if region != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyRegion, region)
	}
	if deviceID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyDeviceID, deviceID)
	}
	return req.WithContext(ctx)
}
