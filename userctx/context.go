package userctx

import "context"

// Context key type
type contextKey string

const (
	accountIDKey contextKey = "account_id"
	usernameKey  contextKey = "username"
)

// SetAccountID adds the signed-in account ID to the request context
func SetAccountID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

// GetAccountID retrieves the signed-in account ID from the request context
func GetAccountID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok && id > 0
}

// SetUsername adds the signed-in username to the request context
func SetUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// GetUsername retrieves the signed-in username, or "anonymous"
func GetUsername(ctx context.Context) string {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok || username == "" {
		return "anonymous"
	}
	return username
}
