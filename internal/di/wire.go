//go:build wireinject
// +build wireinject

package di

import (
	"TickBoard/pkg/config"
	"TickBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Transports
		ProvideStream,
		ProvidePoller,

		// Alert sink
		ProvideNotifier,

		// Use cases
		ProvideBoard,
		ProvideDeduplicator,
		ProvideCollector,

		// View API
		ProvideBoardHandler,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
