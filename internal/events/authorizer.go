package events

import (
	"context"
	"strings"
)

const bearerPrefix = "Bearer "

// Authorizer resolves the authorization header of a request to a source.
type Authorizer struct {
	Keys KeyStore
}

// Authorize returns the source bound to the request's API key.
func (a Authorizer) Authorize(ctx context.Context, req Request) (string, error) {
	auth, ok := req.Header("authorization")
	if !ok || auth == "" {
		return "", newError(Unauthenticated, reasonNoAuthHeader, nil)
	}
	key := auth
	if strings.HasPrefix(key, bearerPrefix) {
		key = strings.TrimSpace(key[len(bearerPrefix):])
	}

	src, err := a.Keys.SourceForKey(ctx, key)
	if err != nil {
		return "", storeError(err)
	}
	if src == "" {
		return "", newError(Unauthorized, reasonNoSource, nil)
	}
	return src, nil
}
