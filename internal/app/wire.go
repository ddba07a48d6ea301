//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/pvp-damage/internal/config"
)

// InitializeEngine loads the game data and builds the engine services.
func InitializeEngine(ctx context.Context, cfg config.Config, component Component) (*Engine, func(), error) {
	wire.Build(EngineSet)
	return nil, nil, nil
}

// InitializeServer builds the engine and its HTTP server.
func InitializeServer(ctx context.Context, cfg config.Config, component Component) (*Server, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}
