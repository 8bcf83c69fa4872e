// Command trackyd runs the expense-tracking agent daemon: it wires the
// store, the completion backend, the tool registry and the HTTP chat
// gateway together and serves until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zhukpm/tracky/agent"
	"github.com/zhukpm/tracky/completion"
	"github.com/zhukpm/tracky/config"
	"github.com/zhukpm/tracky/prompt"
	"github.com/zhukpm/tracky/store"
	"github.com/zhukpm/tracky/tools"
	"github.com/zhukpm/tracky/transport"
)

const latestExpensesInPrompt = 5

func main() {
	if err := run(); err != nil {
		slog.Error("trackyd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := completion.New(completion.Config{
		Backend: cfg.Backend,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return err
	}

	// The gateway dispatches into the manager and the manager replies
	// through the gateway's outbox, so the manager variable is bound
	// after the gateway is constructed.
	var manager *agent.Manager
	var hub *transport.Hub

	gateway := transport.NewGateway(func(ctx context.Context, userID int64, text string) error {
		hub.For(userID).RecordUser(text)
		return manager.Dispatch(ctx, userID, text)
	}, cfg.AllowedUserIDs, logger.With("component", "gateway"))
	hub = transport.NewHub(gateway, logger.With("component", "proxy"))

	registry := agent.NewRegistry()
	if err := tools.Register(registry, tools.Deps{Store: st, Hub: hub}); err != nil {
		return err
	}

	manager = agent.NewManager(agent.ManagerConfig{
		Registry:           registry,
		NewAgent:           newAgentFactory(st, hub, registry, svc),
		MaxDecisionRetries: cfg.MaxDecisionRetries,
		Logger:             logger.With("component", "sessions"),
	})
	defer manager.Close()

	go drainEvents(manager, logger.With("component", "events"))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           gateway.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "backend", cfg.Backend)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newAgentFactory builds a per-session Agent: the system prompt carries
// the live configuration, categories, latest expenses, the user's recent
// dialog and memory at session start.
func newAgentFactory(st *store.Store, hub *transport.Hub, registry *agent.Registry, svc agent.CompletionService) agent.AgentFactory {
	return func(ctx context.Context, userID int64) (*agent.Agent, error) {
		configs, err := st.EnvConfig.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		categories, err := st.Categories.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		latest, err := st.Expenses.Latest(ctx, latestExpensesInPrompt)
		if err != nil {
			return nil, err
		}
		memory, err := st.Memories.Get(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrMemoryNotFound) {
			return nil, err
		}

		systemPrompt, err := prompt.System(prompt.SystemPromptData{
			Now:        time.Now().UTC(),
			EnvConfigs: configs,
			Categories: categories,
			Latest:     latest,
			Dialog:     hub.For(userID).History(),
			Memory:     memory,
		})
		if err != nil {
			return nil, err
		}

		sessionTools, err := registry.List(agent.DefaultScope)
		if err != nil {
			return nil, err
		}
		return agent.NewAgent(systemPrompt, sessionTools, svc), nil
	}
}

// drainEvents logs the session event stream until the manager closes it.
func drainEvents(manager *agent.Manager, logger *slog.Logger) {
	for event := range manager.Events() {
		logger.Debug("session event",
			"kind", event.Kind,
			"session", event.SessionID,
			"user_id", event.UserID,
			"data", event.Data,
		)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
