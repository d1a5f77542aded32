// Package userrepobridge exposes the user directory read surface over
// HTTP.
package userrepobridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jrazmi/taskhub/bridge/scaffolding/errs"
	"github.com/jrazmi/taskhub/bridge/scaffolding/mid"
	"github.com/jrazmi/taskhub/core/repositories/userrepo"
	"github.com/jrazmi/taskhub/infrastructure/web"
	"github.com/jrazmi/taskhub/sdk/logger"
)

// AppUser is the wire form of a user.
type AppUser struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func MarshalToBridge(user userrepo.User) AppUser {
	return AppUser{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func MarshalListToBridge(users []userrepo.User) []AppUser {
	bridgeUsers := make([]AppUser, len(users))
	for i, user := range users {
		bridgeUsers[i] = MarshalToBridge(user)
	}
	return bridgeUsers
}

// Config holds configuration for the User bridge.
type Config struct {
	Log        *logger.Logger
	Repository *userrepo.Repository
}

// AddHttpRoutes registers all HTTP routes for User.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := &bridge{userRepository: cfg.Repository}

	group.GET("/users", b.httpList, mid.RequireAdmin())
	group.GET("/users/{user_id}", b.httpGetByID)
}

type bridge struct {
	userRepository *userrepo.Repository
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	users, err := b.userRepository.List(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}
	return web.NewJSONResponse(MarshalListToBridge(users))
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	userID := web.Param(r, "user_id")
	if !caller.IsAdmin() && caller.UserID != userID {
		return errs.Newf(errs.PermissionDenied, "cannot read other users")
	}

	user, err := b.userRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.New(errs.Internal, err)
	}

	return web.NewJSONResponse(MarshalToBridge(user))
}
