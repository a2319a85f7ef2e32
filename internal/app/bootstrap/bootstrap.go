package bootstrap

import (
	"context"
	"log/slog"

	votetracker "lunchlauncher/contexts/lunch-selection/vote-tracker"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/application/commands"
	contractsv1 "lunchlauncher/contracts/gen/events/v1"
	"lunchlauncher/internal/platform/config"
	"lunchlauncher/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const auditConsumerGroup = "vote-audit"

var trackerTopics = []string{
	commands.EventSessionOpened,
	commands.EventVoteLogged,
	commands.EventVoteRejected,
	commands.EventNominationClosed,
}

type App struct {
	Config config.Config
	Module votetracker.Module
	Bus    *messaging.Bus
	logger *slog.Logger
}

func Build() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildWithConfig(cfg, nil)
}

// BuildWithConfig wires the app from an already loaded config. A nil logger
// falls back to slog.Default.
func BuildWithConfig(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName)

	rules, err := cfg.RoundConstraints()
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	module := votetracker.NewInMemoryModule(rules, bus, logger)

	logger.Info("lunch tracker wired",
		"event", "bootstrap_completed",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"rules_file", cfg.RulesFile,
	)
	return &App{
		Config: cfg,
		Module: module,
		Bus:    bus,
		logger: logger,
	}, nil
}

// Start joins the audit consumer group on every tracker topic. The
// subscriptions end when ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	for _, topic := range trackerTopics {
		if err := a.Bus.Subscribe(ctx, topic, auditConsumerGroup, a.auditEvent); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the audit consumer and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (a *App) Close() error {
	a.logger.Info("lunch tracker stopped",
		"event", "bootstrap_closed",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return nil
}

func (a *App) auditEvent(_ context.Context, event contractsv1.Envelope) error {
	var data map[string]any
	if err := event.DecodeData(&data); err != nil {
		return err
	}
	a.logger.Info("tracker event",
		"event", "vote_audit",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"session_id", event.PartitionKey,
		"data", data,
	)
	return nil
}
