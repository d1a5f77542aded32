// Package mid provides app level middleware support.
package mid

import (
	"context"
	"errors"

	"github.com/jrazmi/taskhub/infrastructure/web"
)

type ctxKey int

const (
	callerKey ctxKey = iota + 1
)

// Caller identifies the authenticated principal for a request.
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == "admin"
}

func setCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// GetCaller returns the authenticated caller from the context.
func GetCaller(ctx context.Context) (Caller, error) {
	v, ok := ctx.Value(callerKey).(Caller)
	if !ok {
		return Caller{}, errors.New("caller not found in context")
	}
	return v, nil
}

// isError tests if the Encoder has an error inside of it.
func isError(e web.Encoder) error {
	err, isError := e.(error)
	if isError {
		return err
	}
	return nil
}
