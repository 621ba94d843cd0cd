package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

// MoveLogRepository - append-only record of the moves accepted in a session.
type MoveLogRepository interface {
	CreateSession(ctx context.Context, session *entity.SessionRecord) error
	AppendMove(ctx context.Context, sessionID string, move *entity.LoggedMove) error

	GetSession(ctx context.Context, id string) (*entity.SessionRecord, error)
	ListMoves(ctx context.Context, sessionID string) ([]entity.LoggedMove, error)

	DeleteSession(ctx context.Context, id string) error
}

type redisMoveLog struct {
	client *redis.Client
}

func NewRedisMoveLog(client *redis.Client) MoveLogRepository {
	return &redisMoveLog{
		client: client,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func movesKey(id string) string {
	return "moves:" + id
}

func (that *redisMoveLog) CreateSession(ctx context.Context, session *entity.SessionRecord) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), sessionJSON, 0)
	pipe.Del(ctx, movesKey(session.ID))

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *redisMoveLog) AppendMove(ctx context.Context, sessionID string, move *entity.LoggedMove) error {
	exists, err := that.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	if exists == 0 {
		return ErrSessionNotFound
	}

	moveJSON, err := json.Marshal(move)
	if err != nil {
		return fmt.Errorf("could not marshal move: %w", err)
	}

	if err = that.client.RPush(ctx, movesKey(sessionID), moveJSON).Err(); err != nil {
		return fmt.Errorf("failed to append move: %w", err)
	}

	return nil
}

func (that *redisMoveLog) GetSession(ctx context.Context, id string) (*entity.SessionRecord, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w by id", err)
	}

	var session entity.SessionRecord
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *redisMoveLog) ListMoves(ctx context.Context, sessionID string) ([]entity.LoggedMove, error) {
	if _, err := that.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	raw, err := that.client.LRange(ctx, movesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}

	moves := make([]entity.LoggedMove, 0, len(raw))
	for _, item := range raw {
		var move entity.LoggedMove
		if err = json.Unmarshal([]byte(item), &move); err != nil {
			return nil, fmt.Errorf("failed to unmarshal move: %w", err)
		}
		moves = append(moves, move)
	}

	return moves, nil
}

func (that *redisMoveLog) DeleteSession(ctx context.Context, id string) error {
	err := that.client.Del(ctx, sessionKey(id), movesKey(id)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session by ID: %w", err)
	}

	return nil
}
