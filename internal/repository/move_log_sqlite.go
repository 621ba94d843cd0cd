package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

type sqliteMoveLog struct {
	db *sql.DB
}

// NewSQLiteMoveLog - expects the schema created by storage.Storage.Init.
func NewSQLiteMoveLog(db *sql.DB) MoveLogRepository {
	return &sqliteMoveLog{
		db: db,
	}
}

func (that *sqliteMoveLog) CreateSession(ctx context.Context, session *entity.SessionRecord) error {
	configJSON, err := json.Marshal(session.Config)
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	tx, err := that.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM moves WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("failed to clear moves: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, config, started_at) VALUES (?, ?, ?)`,
		session.ID, string(configJSON), session.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

func (that *sqliteMoveLog) AppendMove(ctx context.Context, sessionID string, move *entity.LoggedMove) error {
	if _, err := that.GetSession(ctx, sessionID); err != nil {
		return err
	}

	_, err := that.db.ExecContext(ctx,
		`INSERT INTO moves (session_id, seq, side, row_idx, col_idx, played_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, move.Seq, string(move.Side), move.Move.Row, move.Move.Col, move.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to append move: %w", err)
	}

	return nil
}

func (that *sqliteMoveLog) GetSession(ctx context.Context, id string) (*entity.SessionRecord, error) {
	var (
		configJSON string
		startedAt  int64
	)

	err := that.db.QueryRowContext(ctx, `SELECT config, started_at FROM sessions WHERE id = ?`, id).Scan(&configJSON, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w by id", err)
	}

	session := &entity.SessionRecord{ID: id, StartedAt: time.Unix(0, startedAt).UTC()}
	if err = json.Unmarshal([]byte(configJSON), &session.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return session, nil
}

func (that *sqliteMoveLog) ListMoves(ctx context.Context, sessionID string) ([]entity.LoggedMove, error) {
	if _, err := that.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := that.db.QueryContext(ctx,
		`SELECT seq, side, row_idx, col_idx, played_at FROM moves WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	defer rows.Close()

	var moves []entity.LoggedMove
	for rows.Next() {
		var (
			move     entity.LoggedMove
			side     string
			playedAt int64
		)

		if err = rows.Scan(&move.Seq, &side, &move.Move.Row, &move.Move.Col, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}

		move.Side = entity.Side(side)
		move.At = time.Unix(0, playedAt).UTC()
		moves = append(moves, move)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read moves: %w", err)
	}

	return moves, nil
}

func (that *sqliteMoveLog) DeleteSession(ctx context.Context, id string) error {
	if _, err := that.db.ExecContext(ctx, `DELETE FROM moves WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete moves: %w", err)
	}

	if _, err := that.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session by ID: %w", err)
	}

	return nil
}
