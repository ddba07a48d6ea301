// Package app assembles the engine, the report store and the HTTP server from
// configuration. Injectors live in wire.go; wire_gen.go is generated from them.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/advisor"
	"github.com/cory-johannsen/pvp-damage/internal/api"
	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/league"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/matchup"
	"github.com/cory-johannsen/pvp-damage/internal/observability"
	"github.com/cory-johannsen/pvp-damage/internal/scripting"
	"github.com/cory-johannsen/pvp-damage/internal/server"
	"github.com/cory-johannsen/pvp-damage/internal/storage/postgres"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Component tags every log line of a binary.
type Component string

// Engine is the loaded game data plus the services built on it.
type Engine struct {
	Config      config.Config
	Logger      *zap.Logger
	Catalog     *catalog.Catalog
	Leagues     *league.Registry
	Enumerator  *leveling.Enumerator
	Partitioner *breakpoint.Partitioner
	Resolver    *matchup.Resolver
	Runner      *scripting.Runner
	// Reports is nil unless database.enabled is set.
	Reports *postgres.ReportRepository
}

// Server is an Engine exposed over HTTP.
type Server struct {
	Engine    *Engine
	Handler   *api.Handler
	Lifecycle *server.Lifecycle
}

// EngineSet provides an Engine from a Config, a Component and a context.
var EngineSet = wire.NewSet(
	ProvideLogger,
	ProvideCatalog,
	ProvideLeagues,
	ProvideEnumerator,
	ProvidePartitioner,
	matchup.NewResolver,
	ProvideReports,
	ProvideRunner,
	wire.Struct(new(Engine), "*"),
)

// ServerSet adds the HTTP surface to EngineSet.
var ServerSet = wire.NewSet(
	EngineSet,
	ProvideAdvisor,
	ProvideHandler,
	ProvideLifecycle,
	wire.Struct(new(Server), "*"),
)

// ProvideLogger builds the component logger. The cleanup flushes it.
func ProvideLogger(cfg config.Config, component Component) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging, string(component))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideCatalog loads the gamemaster named by data.gamemaster.
func ProvideCatalog(cfg config.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	start := time.Now()
	c, err := catalog.LoadGamemaster(cfg.Data.Gamemaster)
	if err != nil {
		return nil, err
	}
	logger.Info("gamemaster loaded",
		zap.String("path", cfg.Data.Gamemaster),
		zap.Int("species", c.SpeciesCount()),
		zap.Int("fast_moves", c.FastMoveCount()),
		zap.Int("charged_moves", c.ChargedMoveCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

// ProvideLeagues loads the meta rosters from data.leagues_dir.
func ProvideLeagues(cfg config.Config, c *catalog.Catalog, logger *zap.Logger) (*league.Registry, error) {
	reg, err := league.LoadDirectory(c, cfg.Data.LeaguesDir)
	if err != nil {
		return nil, err
	}
	for _, l := range reg.All() {
		logger.Debug("league loaded", zap.String("league", l.ID), zap.Int("meta", len(l.Meta)))
	}
	return reg, nil
}

// ProvideEnumerator builds the roster enumerator from engine settings.
func ProvideEnumerator(cfg config.Config, logger *zap.Logger) *leveling.Enumerator {
	return leveling.NewEnumerator(cfg.Engine.Workers, cfg.Engine.CacheRosters, logger)
}

// ProvidePartitioner builds the sweep engine on enum.
func ProvidePartitioner(enum *leveling.Enumerator, logger *zap.Logger) *breakpoint.Partitioner {
	return breakpoint.NewPartitioner(enum, breakpoint.WithLogger(logger))
}

// ProvideReports connects the report store when database.enabled is set and
// returns nil otherwise. The cleanup closes the pool.
func ProvideReports(ctx context.Context, cfg config.Config, logger *zap.Logger) (*postgres.ReportRepository, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	return postgres.NewReportRepository(pool.DB()), pool.Close, nil
}

// ProvideRunner builds the script runner. Scripts may save reports only when a
// store is configured.
func ProvideRunner(cfg config.Config, c *catalog.Catalog, enum *leveling.Enumerator, part *breakpoint.Partitioner, leagues *league.Registry, reports *postgres.ReportRepository, logger *zap.Logger) *scripting.Runner {
	r := scripting.NewRunner(cfg.Scripting, c, enum, part, leagues, logger)
	if reports != nil {
		r.SaveReport = reports.Save
	}
	return r
}

// ProvideAdvisor returns nil unless advisor.enabled is set.
func ProvideAdvisor(cfg config.Config, logger *zap.Logger) *advisor.Advisor {
	if !cfg.Advisor.Enabled {
		return nil
	}
	return advisor.New(cfg.Advisor, logger)
}

// ProvideHandler builds the API handler, enabling the optional routes and
// parameters for whichever of reports and adv are configured.
func ProvideHandler(resolver *matchup.Resolver, enum *leveling.Enumerator, part *breakpoint.Partitioner, reports *postgres.ReportRepository, adv *advisor.Advisor, logger *zap.Logger) *api.Handler {
	var opts []api.Option
	if reports != nil {
		opts = append(opts, api.WithReportStore(reports))
	}
	if adv != nil {
		opts = append(opts, api.WithSummarizer(adv))
	}
	return api.NewHandler(resolver, enum, part, logger, opts...)
}

// ProvideLifecycle registers the HTTP listener on http.host:http.port.
func ProvideLifecycle(cfg config.Config, h *api.Handler, logger *zap.Logger) *server.Lifecycle {
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      h.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	lc := server.NewLifecycle(logger)
	lc.Add("http", server.NewHTTPService(srv, nil, shutdownTimeout, logger))
	return lc
}
