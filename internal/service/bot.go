package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/apperror"
	"github.com/rocketscienceinc/chainreaction/internal/chainreaction"
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

type BotService interface {
	ChooseMove(ctx context.Context, state *entity.GameState, cfg *entity.AIConfig) (entity.Move, error)
}

type botService struct {
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewBotService(logger *slog.Logger) BotService {
	return NewSeededBotService(logger, uint64(time.Now().UnixNano()))
}

// NewSeededBotService - deterministic Random strategy, for tests.
func NewSeededBotService(logger *slog.Logger, seed uint64) BotService {
	return &botService{
		logger: logger,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint: gosec // game AI
	}
}

func (that *botService) ChooseMove(ctx context.Context, state *entity.GameState, cfg *entity.AIConfig) (entity.Move, error) {
	log := that.logger.With("method", "ChooseMove", "strategy", cfg.Strategy, "side", state.Turn)

	moves := chainreaction.ValidMoves(state)
	if len(moves) == 0 {
		return entity.Move{}, apperror.ErrNoAvailableMoves
	}

	switch cfg.Strategy {
	case entity.StrategyRandom:
		that.mu.Lock()
		move := moves[that.rng.IntN(len(moves))]
		that.mu.Unlock()

		return move, nil
	case entity.StrategyAlphaBeta:
		started := time.Now()

		deadline := started.Add(time.Duration(cfg.TimeLimitMS) * time.Millisecond)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}

		s := &search{ctx: ctx, deadline: deadline, heuristics: cfg.Heuristics, pov: state.Turn}

		best, reached := moves[0], 0
		for depth := 1; depth <= cfg.Depth; depth++ {
			if s.expired() {
				break
			}

			move, ok := s.root(state, moves, depth)
			if !ok {
				break
			}

			best, reached = move, depth
		}

		if err := ctx.Err(); err != nil {
			return entity.Move{}, fmt.Errorf("search cancelled: %w", err)
		}

		log.Debug("search finished", "move", best, "depth", reached, "elapsed", time.Since(started))

		return best, nil
	default:
		return entity.Move{}, fmt.Errorf("%w: unknown strategy %q", apperror.ErrConfigRejected, cfg.Strategy)
	}
}

type search struct {
	ctx        context.Context
	deadline   time.Time
	heuristics []entity.Heuristic
	pov        entity.Side
}

func (that *search) expired() bool {
	return that.ctx.Err() != nil || !time.Now().Before(that.deadline)
}

// root - best move at a fixed depth; false when the budget ran out before the depth completed.
func (that *search) root(state *entity.GameState, moves []entity.Move, depth int) (entity.Move, bool) {
	best := moves[0]
	bestScore := math.Inf(-1)
	alpha, beta := math.Inf(-1), math.Inf(1)

	for _, move := range moves {
		if that.expired() {
			return entity.Move{}, false
		}

		child := state.Clone()
		if err := chainreaction.Simulate(child, move, that.deadline); err != nil {
			continue
		}

		score, ok := that.alphaBeta(child, depth-1, alpha, beta, false)
		if !ok {
			return entity.Move{}, false
		}

		if score > bestScore {
			bestScore = score
			best = move
		}
		alpha = max(alpha, bestScore)
	}

	return best, true
}

func (that *search) alphaBeta(state *entity.GameState, depth int, alpha, beta float64, maximizing bool) (float64, bool) {
	if that.expired() {
		return 0, false
	}

	if depth == 0 || !state.IsOngoing() {
		return evaluate(state, that.heuristics, that.pov), true
	}

	moves := chainreaction.ValidMoves(state)
	if len(moves) == 0 {
		return evaluate(state, that.heuristics, that.pov), true
	}

	if maximizing {
		value := math.Inf(-1)
		for _, move := range moves {
			child := state.Clone()
			if err := chainreaction.Simulate(child, move, that.deadline); err != nil {
				return 0, false
			}

			score, ok := that.alphaBeta(child, depth-1, alpha, beta, false)
			if !ok {
				return 0, false
			}

			value = max(value, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}

		return value, true
	}

	value := math.Inf(1)
	for _, move := range moves {
		child := state.Clone()
		if err := chainreaction.Simulate(child, move, that.deadline); err != nil {
			return 0, false
		}

		score, ok := that.alphaBeta(child, depth-1, alpha, beta, true)
		if !ok {
			return 0, false
		}

		value = min(value, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}

	return value, true
}
