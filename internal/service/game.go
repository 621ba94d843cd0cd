package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// GameService - durable session records and the move log behind log-based recovery.
type GameService interface {
	CreateSession(ctx context.Context, cfg entity.GameConfig) (*entity.SessionRecord, error)
	RecordMove(ctx context.Context, sessionID string, move *entity.LoggedMove) error
	DeleteSession(ctx context.Context, sessionID string) error

	GetSession(ctx context.Context, id string) (*entity.SessionRecord, error)
	LoadMoves(ctx context.Context, sessionID string) ([]entity.LoggedMove, error)
}

type moveLogRepo interface {
	CreateSession(ctx context.Context, session *entity.SessionRecord) error
	AppendMove(ctx context.Context, sessionID string, move *entity.LoggedMove) error

	GetSession(ctx context.Context, id string) (*entity.SessionRecord, error)
	ListMoves(ctx context.Context, sessionID string) ([]entity.LoggedMove, error)

	DeleteSession(ctx context.Context, id string) error
}

type gameService struct {
	moveLogRepo moveLogRepo
}

func NewGameService(moveLogRepo moveLogRepo) GameService {
	return &gameService{
		moveLogRepo: moveLogRepo,
	}
}

func (that *gameService) CreateSession(ctx context.Context, cfg entity.GameConfig) (*entity.SessionRecord, error) {
	session := &entity.SessionRecord{
		ID:        uuid.NewString(),
		Config:    cfg.Clone(),
		StartedAt: time.Now().UTC(),
	}

	if err := that.moveLogRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session in storage: %w", err)
	}

	return session, nil
}

func (that *gameService) RecordMove(ctx context.Context, sessionID string, move *entity.LoggedMove) error {
	if err := that.moveLogRepo.AppendMove(ctx, sessionID, move); err != nil {
		return fmt.Errorf("failed to record move: %w", err)
	}
	return nil
}

func (that *gameService) GetSession(ctx context.Context, id string) (*entity.SessionRecord, error) {
	session, err := that.moveLogRepo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from storage: %w", err)
	}
	return session, nil
}

func (that *gameService) LoadMoves(ctx context.Context, sessionID string) ([]entity.LoggedMove, error) {
	moves, err := that.moveLogRepo.ListMoves(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve moves from storage: %w", err)
	}
	return moves, nil
}

func (that *gameService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := that.moveLogRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
