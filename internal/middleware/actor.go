package middleware

import (
	"context"

	"github.com/fitstakes/backend/pkg/router"
	"github.com/fitstakes/backend/pkg/xcontext"
)

const accountIDHeader = "X-Account-ID"

// Actor records which account the gateway authenticated for this request.
// Credentials are checked upstream; an empty header leaves the request
// anonymous and every operation decides for itself whether that is enough.
func Actor() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if accountID := xcontext.HTTPRequest(ctx).Header.Get(accountIDHeader); accountID != "" {
			ctx = xcontext.WithRequestAccountID(ctx, accountID)
		}

		return ctx, nil
	}
}
