package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

type memoryMoveLog struct {
	mu       sync.RWMutex
	sessions map[string]entity.SessionRecord
	moves    map[string][]entity.LoggedMove
}

// NewMemoryMoveLog - process-local move log, lost on exit.
func NewMemoryMoveLog() MoveLogRepository {
	return &memoryMoveLog{
		sessions: make(map[string]entity.SessionRecord),
		moves:    make(map[string][]entity.LoggedMove),
	}
}

func (that *memoryMoveLog) CreateSession(_ context.Context, session *entity.SessionRecord) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	record := *session
	record.Config = session.Config.Clone()

	that.sessions[session.ID] = record
	that.moves[session.ID] = nil

	return nil
}

func (that *memoryMoveLog) AppendMove(_ context.Context, sessionID string, move *entity.LoggedMove) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	that.moves[sessionID] = append(that.moves[sessionID], *move)

	return nil
}

func (that *memoryMoveLog) GetSession(_ context.Context, id string) (*entity.SessionRecord, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Config = session.Config.Clone()

	return &session, nil
}

func (that *memoryMoveLog) ListMoves(_ context.Context, sessionID string) ([]entity.LoggedMove, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if _, ok := that.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	return slices.Clone(that.moves[sessionID]), nil
}

func (that *memoryMoveLog) DeleteSession(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)
	delete(that.moves, id)

	return nil
}
