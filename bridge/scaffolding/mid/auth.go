package mid

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jrazmi/taskhub/bridge/scaffolding/errs"
	"github.com/jrazmi/taskhub/core/repositories/userrepo"
	"github.com/jrazmi/taskhub/infrastructure/web"
)

// Authenticator resolves a bearer token to a caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Caller, error)
}

// Authenticate requires a bearer token and places the resolved caller
// into the context for downstream handlers.
func Authenticate(auth Authenticator) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			token, ok := bearerToken(r)
			if !ok {
				return errs.Newf(errs.Unauthenticated, "missing or malformed authorization header")
			}

			caller, err := auth.Authenticate(ctx, token)
			if err != nil {
				return errs.Newf(errs.Unauthenticated, "invalid credentials")
			}

			return next(setCaller(ctx, caller), r)
		}
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// Authenticate.
func RequireAdmin() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			caller, err := GetCaller(ctx)
			if err != nil {
				return errs.Newf(errs.Unauthenticated, "not authenticated")
			}
			if !caller.IsAdmin() {
				return errs.Newf(errs.PermissionDenied, "admin role required")
			}
			return next(ctx, r)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// DirectoryAuthenticator treats the bearer token as an API key of the
// form "<user_id>" and resolves it against the user directory. Role comes
// from the user record.
type DirectoryAuthenticator struct {
	users *userrepo.Repository
}

func NewDirectoryAuthenticator(users *userrepo.Repository) *DirectoryAuthenticator {
	return &DirectoryAuthenticator{users: users}
}

func (a *DirectoryAuthenticator) Authenticate(ctx context.Context, token string) (Caller, error) {
	user, err := a.users.GetByID(ctx, token)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return Caller{}, errors.New("unknown credentials")
		}
		return Caller{}, err
	}

	return Caller{
		UserID: user.UserID,
		Role:   user.Role,
	}, nil
}
