package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/chainreaction/internal/config"
	"github.com/rocketscienceinc/chainreaction/internal/repository"
	"github.com/rocketscienceinc/chainreaction/internal/repository/storage"
	"github.com/rocketscienceinc/chainreaction/internal/service"
	"github.com/rocketscienceinc/chainreaction/internal/session"
	"github.com/rocketscienceinc/chainreaction/internal/tui"
	"github.com/rocketscienceinc/chainreaction/transport/rest"
	"github.com/rocketscienceinc/chainreaction/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownBackend = errors.New("unknown move log backend")
	ErrUnknownMode    = errors.New("unknown ui mode")
	ErrGameAborted    = errors.New("game stopped before it finished")
	ErrNeedsAIPlayers = errors.New("headless mode needs two AI players")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	moveLog, closeMoveLog, err := openMoveLog(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeMoveLog(); err != nil {
			log.Error("could not close move log storage", "error", err)
		}
	}()

	engine := service.NewGamePlayService(logger,
		service.NewGameService(moveLog),
		service.NewBotService(logger))

	runner := session.NewRunner(logger, engine, session.New(logger, conf.GameConfig(), timing(conf), nil))

	go func() {
		if runErr := runner.Run(ctx); runErr != nil {
			log.Error("session runner stopped", "error", runErr)
		}
	}()

	serverErrCh := make(chan error, 2)
	if conf.Spectator.Enabled {
		startSpectators(ctx, cancel, logger, conf, runner, serverErrCh)
	}

	switch conf.UI.Mode {
	case config.ModeTUI:
		err = runTUI(ctx, runner)
	case config.ModeHeadless:
		err = runHeadless(ctx, logger, runner)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMode, conf.UI.Mode)
	}

	cancel()
	<-runner.Done()

	select {
	case serverErr := <-serverErrCh:
		return serverErr
	default:
	}

	return err
}

// openMoveLog - the move log repository for the configured backend and a func closing its storage.
func openMoveLog(ctx context.Context, conf *config.Config) (repository.MoveLogRepository, func() error, error) {
	switch conf.MoveLog.Backend {
	case config.BackendMemory, "":
		return repository.NewMemoryMoveLog(), func() error { return nil }, nil
	case config.BackendRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisMoveLog(redisStorage.Connection), redisStorage.Close, nil
	case config.BackendSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.MoveLog.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteMoveLog(sqliteStorage.Connection), sqliteStorage.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, conf.MoveLog.Backend)
	}
}

func timing(conf *config.Config) session.Timing {
	return session.Timing{
		WatchdogInterval:       conf.Session.WatchdogInterval,
		StallThreshold:         conf.Session.StallThreshold,
		SpectateStallThreshold: conf.Session.SpectateStallThreshold,
		FrameDelay:             conf.Session.CascadeFrameDelay,
		AIMoveDelay:            conf.Session.AIMoveDelay,
		ErrorClearAfter:        conf.Session.ErrorClearAfter,
	}
}

// startSpectators - runs the read-only HTTP and WebSocket servers. A failing server cancels ctx.
func startSpectators(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *slog.Logger,
	conf *config.Config,
	runner *session.Runner,
	errCh chan<- error,
) {
	log := logger.With("component", "app")

	// run HTTP server
	go func() {
		log.Info("Starting HTTP server", "port", conf.Spectator.HTTPPort)
		if httpErr := rest.New(logger, runner).Start(ctx, conf.Spectator.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			errCh <- fmt.Errorf("HTTP server error: %w", httpErr)
			cancel()
		}
	}()

	// run Websocket server
	go func() {
		log.Info("Starting WebSocket server", "port", conf.Spectator.SocketPort)
		if wsErr := websocket.New(logger, runner).Start(ctx, conf.Spectator.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			errCh <- fmt.Errorf("WebSocket server error: %w", wsErr)
			cancel()
		}
	}()
}

func runTUI(ctx context.Context, runner *session.Runner) error {
	model := tui.New(runner)
	defer model.Close()

	runner.OnCelebrate(model.Celebrate)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}

	return nil
}

// runHeadless - starts the configured game and waits for it to finish.
func runHeadless(ctx context.Context, logger *slog.Logger, runner *session.Runner) error {
	log := logger.With("component", "headless")

	if cfg := runner.Snapshot().Config; !cfg.IsSpectation() {
		return ErrNeedsAIPlayers
	}

	updates, unsubscribe := runner.Subscribe()
	defer unsubscribe()

	runner.OnCelebrate(func(e session.CelebrateEffect) {
		log.Info("winner", "name", e.Name, "side", e.Winner.Label())
	})

	runner.Start()

	for {
		select {
		case <-ctx.Done():
			log.Info("Application context canceled, shutting down")
			return nil
		case snap := <-updates:
			switch {
			case snap.Phase == session.PhaseFinished:
				log.Info("game finished", "moves", snap.MoveCount, "elapsed", snap.Elapsed.String())
				return nil
			case snap.Error != nil && (snap.Error.Kind == session.ErrorSetup || snap.Error.Kind == session.ErrorAI):
				return fmt.Errorf("%w: %s", ErrGameAborted, snap.Error.Message)
			}
		}
	}
}
