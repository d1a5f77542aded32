package config

import (
	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/repositories/userrepo"
	"github.com/jrazmi/taskhub/sdk/logger"
	"github.com/jrazmi/taskhub/sdk/telemetry"
)

// site wide globals.
const (
	ApiRoute = "/api"
)

// Repositories represents the repositories this instance of taskhub
// needs.
type Repositories struct {
	Task *taskrepo.Repository
	User *userrepo.Repository
}

// TaskHub is the overall configuration for the taskhub application.
type TaskHub struct {
	Build  string
	Logger *logger.Logger

	Repositories Repositories
	Telemetry    telemetry.Telemetry
}
