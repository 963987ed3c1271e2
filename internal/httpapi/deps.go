package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"bidwatch-engine/internal/config"
	"bidwatch-engine/internal/events"
	"bidwatch-engine/internal/pipeline"
	"bidwatch-engine/internal/runner"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub

	// CfgVal stores config.Config; handlers read the freshest copy.
	CfgVal      *atomic.Value
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Run entrypoints (injected for testability)
	RunStatus func() runner.Status
	RunOnce   func(ctx context.Context) (pipeline.Stats, error)
}
