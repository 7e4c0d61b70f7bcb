package roost

import (
	"github.com/colonyops/roost/internal/core/config"
	"github.com/colonyops/roost/internal/core/doctor"
	"github.com/colonyops/roost/internal/core/eventbus"
	"github.com/colonyops/roost/internal/data/db"
)

// App is the central entry point for all roost operations. Commands and
// the HTTP server consume App instead of cherry-picking raw dependencies.
type App struct {
	Service *Service
	Config  *config.Config
	DB      *db.DB
	Bus     *eventbus.EventBus
	Checks  []doctor.Check
}

// NewApp constructs an App from explicit dependencies.
func NewApp(service *Service, cfg *config.Config, database *db.DB, bus *eventbus.EventBus, checks []doctor.Check) *App {
	return &App{
		Service: service,
		Config:  cfg,
		DB:      database,
		Bus:     bus,
		Checks:  checks,
	}
}
