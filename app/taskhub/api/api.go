// Package api assembles the HTTP route table for the taskhub service.
package api

import (
	"context"
	"net/http"

	"github.com/jrazmi/taskhub/app/taskhub/config"
	"github.com/jrazmi/taskhub/bridge/repositories/taskrepobridge"
	"github.com/jrazmi/taskhub/bridge/repositories/userrepobridge"
	"github.com/jrazmi/taskhub/bridge/scaffolding/mid"
	"github.com/jrazmi/taskhub/infrastructure/web"
)

// AddHandlers wires every route group onto the handler.
func AddHandlers(handler *web.WebHandler, cfg config.TaskHub) {
	addLiveness(handler, cfg)

	auth := mid.NewDirectoryAuthenticator(cfg.Repositories.User)
	group := handler.Group(config.ApiRoute, mid.Authenticate(auth))

	taskrepobridge.AddHttpRoutes(group, taskrepobridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.Task,
	})

	userrepobridge.AddHttpRoutes(group, userrepobridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.User,
	})
}

// addLiveness registers the unauthenticated health probe.
func addLiveness(handler *web.WebHandler, cfg config.TaskHub) {
	type liveness struct {
		Status string `json:"status"`
		Build  string `json:"build"`
	}

	handler.GET(config.ApiRoute+"/liveness", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse(liveness{
			Status: "ok",
			Build:  cfg.Build,
		})
	})
}
