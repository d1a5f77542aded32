// Package taskrepobridge contains HTTP route registration for Task.
package taskrepobridge

import (
	"github.com/jrazmi/taskhub/bridge/scaffolding/mid"
	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/infrastructure/web"
	"github.com/jrazmi/taskhub/sdk/logger"
)

// Config holds configuration for the Task bridge.
type Config struct {
	Log        *logger.Logger
	Repository *taskrepo.Repository
}

// AddHttpRoutes registers all HTTP routes for Task. The group is expected
// to already carry the Authenticate middleware; admin-only routes add the
// role check here.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)

	// Dashboards before the {task_id} routes for readability; the mux
	// prefers the literal segment either way.
	group.GET("/tasks/dashboard-data", b.httpDashboard, mid.RequireAdmin())
	group.GET("/tasks/user-dashboard-data", b.httpUserDashboard)

	group.GET("/tasks", b.httpList)
	group.POST("/tasks", b.httpCreate, mid.RequireAdmin())
	group.GET("/tasks/{task_id}", b.httpGetByID)
	group.PUT("/tasks/{task_id}", b.httpUpdate)
	group.DELETE("/tasks/{task_id}", b.httpDelete, mid.RequireAdmin())

	group.PUT("/tasks/{task_id}/status", b.httpUpdateStatus)
	group.PUT("/tasks/{task_id}/todo", b.httpUpdateChecklist)
}
