package votetracker

import (
	"log/slog"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/adapters/memory"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/application/commands"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/application/queries"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/ports"
)

type Module struct {
	Sessions commands.SessionUseCase
	Tallies  queries.TallyUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Sessions ports.SessionRepository
	Events   ports.EventPublisher
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Rules    tracker.RoundConstraints
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Sessions: commands.SessionUseCase{
			Sessions: deps.Sessions,
			Events:   deps.Events,
			Clock:    deps.Clock,
			IDGen:    deps.IDGen,
			Rules:    deps.Rules,
			Logger:   deps.Logger,
		},
		Tallies: queries.TallyUseCase{
			Sessions: deps.Sessions,
		},
	}
}

// NewInMemoryModule wires the module on the in-memory store. events may be
// nil when nothing consumes tracker events.
func NewInMemoryModule(rules tracker.RoundConstraints, events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Sessions: store,
		Events:   events,
		Clock:    store,
		IDGen:    store,
		Rules:    rules,
		Logger:   logger,
	})
	module.Store = store
	return module
}
