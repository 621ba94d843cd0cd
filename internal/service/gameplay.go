package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/apperror"
	"github.com/rocketscienceinc/chainreaction/internal/chainreaction"
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// GamePlayService - the in-process game engine. Safe for concurrent use.
type GamePlayService interface {
	StartSession(ctx context.Context, cfg entity.GameConfig) (entity.GameState, error)
	SubmitMove(ctx context.Context, move entity.Move) ([]entity.GameState, error)
	ComputeAIMove(ctx context.Context) (entity.Move, error)
	CurrentState(ctx context.Context) (entity.GameState, error)
	RecoverFromLog(ctx context.Context) (entity.GameState, error)
}

type gamePlayService struct {
	logger *slog.Logger

	gameService GameService
	botService  BotService

	mu        sync.Mutex
	sessionID string
	config    entity.GameConfig
	state     *entity.GameState
	seq       int
	// logBroken is set once a move failed to reach the log; replay would then be incomplete.
	logBroken bool
}

func NewGamePlayService(logger *slog.Logger, gameService GameService, botService BotService) GamePlayService {
	return &gamePlayService{
		logger:      logger,
		gameService: gameService,
		botService:  botService,
	}
}

func (that *gamePlayService) StartSession(ctx context.Context, cfg entity.GameConfig) (entity.GameState, error) {
	log := that.logger.With("method", "StartSession")

	if err := cfg.Validate(); err != nil {
		return entity.GameState{}, err
	}

	state := chainreaction.NewGame(cfg.Width, cfg.Height)

	session, err := that.gameService.CreateSession(ctx, cfg)

	that.mu.Lock()
	previous := that.sessionID

	that.config = cfg.Clone()
	that.state = state
	that.seq = 0
	that.sessionID = ""
	that.logBroken = err != nil
	if session != nil {
		that.sessionID = session.ID
	}
	snapshot := *state.Clone()
	that.mu.Unlock()

	if err != nil {
		log.Warn("move log unavailable, log recovery disabled for this game", "error", err)
	} else {
		log.Info("game started", "sessionID", session.ID, "width", cfg.Width, "height", cfg.Height,
			"red", cfg.Red.Describe(), "blue", cfg.Blue.Describe())
	}

	if previous != "" {
		if err = that.gameService.DeleteSession(ctx, previous); err != nil {
			log.Error("failed to delete previous session", "sessionID", previous, "error", err)
		}
	}

	return snapshot, nil
}

func (that *gamePlayService) SubmitMove(ctx context.Context, move entity.Move) ([]entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "SubmitMove", "sessionID", that.sessionID, "move", move)

	if that.state == nil {
		return nil, apperror.ErrSessionNotStarted
	}

	mover := that.state.Turn

	next := that.state.Clone()
	frames, err := chainreaction.MakeTurn(next, move)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	if !that.logBroken {
		logged := &entity.LoggedMove{Seq: that.seq + 1, Side: mover, Move: move, At: time.Now().UTC()}
		if err = that.gameService.RecordMove(ctx, that.sessionID, logged); err != nil {
			log.Error("failed to record move, log recovery disabled for this game", "error", err)
			that.logBroken = true
		}
	}

	that.seq++
	that.state = next

	log.Debug("move accepted", "side", mover, "frames", len(frames), "status", next.Status)

	return frames, nil
}

func (that *gamePlayService) ComputeAIMove(ctx context.Context) (entity.Move, error) {
	that.mu.Lock()
	if that.state == nil {
		that.mu.Unlock()
		return entity.Move{}, apperror.ErrSessionNotStarted
	}

	if err := that.state.ConfirmOngoingState(); err != nil {
		that.mu.Unlock()
		return entity.Move{}, err
	}

	player := that.config.Player(that.state.Turn)
	if !player.IsAI() || player.AI == nil {
		that.mu.Unlock()
		return entity.Move{}, apperror.ErrNotAITurn
	}

	snapshot := that.state.Clone()
	aiConfig := player.AI.Clone()
	that.mu.Unlock()

	move, err := that.botService.ChooseMove(ctx, snapshot, aiConfig)
	if err != nil {
		return entity.Move{}, fmt.Errorf("bot failed to choose move: %w", err)
	}

	return move, nil
}

func (that *gamePlayService) CurrentState(_ context.Context) (entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state == nil {
		return entity.GameState{}, apperror.ErrSessionNotStarted
	}

	return *that.state.Clone(), nil
}

// RecoverFromLog - rebuilds the game by replaying the logged moves from the logged configuration.
// The lock is held throughout, so no move can be accepted between reading the log and adopting the replay.
func (that *gamePlayService) RecoverFromLog(ctx context.Context) (entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "RecoverFromLog", "sessionID", that.sessionID)

	if that.state == nil {
		return entity.GameState{}, apperror.ErrSessionNotStarted
	}

	if that.logBroken || that.sessionID == "" {
		return entity.GameState{}, apperror.ErrLogUnavailable
	}

	session, err := that.gameService.GetSession(ctx, that.sessionID)
	if err != nil {
		return entity.GameState{}, fmt.Errorf("%w: %w", apperror.ErrLogUnavailable, err)
	}

	moves, err := that.gameService.LoadMoves(ctx, that.sessionID)
	if err != nil {
		return entity.GameState{}, fmt.Errorf("%w: %w", apperror.ErrLogUnavailable, err)
	}

	state, err := replay(session.Config, moves)
	if err != nil {
		return entity.GameState{}, fmt.Errorf("%w: %w", apperror.ErrLogUnavailable, err)
	}

	that.state = state
	that.seq = len(moves)

	log.Info("state rebuilt from move log", "moves", len(moves), "status", state.Status)

	return *state.Clone(), nil
}

func replay(cfg entity.GameConfig, moves []entity.LoggedMove) (*entity.GameState, error) {
	state := chainreaction.NewGame(cfg.Width, cfg.Height)

	for _, logged := range moves {
		if logged.Side != state.Turn {
			return nil, fmt.Errorf("move %d was played by %s but %s was to move", logged.Seq, logged.Side, state.Turn)
		}

		if err := chainreaction.Simulate(state, logged.Move, time.Time{}); err != nil {
			return nil, fmt.Errorf("failed to replay move %d: %w", logged.Seq, err)
		}
	}

	return state, nil
}
