package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
	"github.com/rocketscienceinc/chainreaction/testing/suite"
)

func newSession(id string) *entity.SessionRecord {
	return &entity.SessionRecord{
		ID:        id,
		Config:    entity.DefaultGameConfig(),
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testMoveLog(t *testing.T, newRepo func(t *testing.T) (context.Context, MoveLogRepository)) {
	t.Helper()

	t.Run("CreateSession_GetSession", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a stored session
		session := newSession("s-1")
		require.NoError(t, repo.CreateSession(ctx, session))

		// When: GetSession is called with its ID
		stored, err := repo.GetSession(ctx, session.ID)

		// Then: the stored session matches
		require.NoError(t, err)
		assert.Equal(t, session.ID, stored.ID)
		assert.Equal(t, session.Config, stored.Config)
		assert.True(t, session.StartedAt.Equal(stored.StartedAt))
	})

	t.Run("GetSession_NotFound", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// When: GetSession is called with a non-existent ID
		stored, err := repo.GetSession(ctx, "missing")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, ErrSessionNotFound)
		assert.Nil(t, stored)
	})

	t.Run("AppendMove_ListMoves", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a session with two appended moves
		require.NoError(t, repo.CreateSession(ctx, newSession("s-2")))

		first := &entity.LoggedMove{Seq: 1, Side: entity.SideRed, Move: entity.Move{Row: 0, Col: 0}, At: time.Now()}
		second := &entity.LoggedMove{Seq: 2, Side: entity.SideBlue, Move: entity.Move{Row: 2, Col: 1}, At: time.Now()}
		require.NoError(t, repo.AppendMove(ctx, "s-2", first))
		require.NoError(t, repo.AppendMove(ctx, "s-2", second))

		// When: the moves are listed
		moves, err := repo.ListMoves(ctx, "s-2")

		// Then: they come back in order
		require.NoError(t, err)
		require.Len(t, moves, 2)
		assert.Equal(t, entity.SideRed, moves[0].Side)
		assert.Equal(t, entity.Move{Row: 2, Col: 1}, moves[1].Move)
		assert.Equal(t, 2, moves[1].Seq)
	})

	t.Run("AppendMove_UnknownSession", func(t *testing.T) {
		ctx, repo := newRepo(t)

		err := repo.AppendMove(ctx, "missing", &entity.LoggedMove{Seq: 1, Side: entity.SideRed})

		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("CreateSession_ClearsPreviousMoves", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a session with one move
		require.NoError(t, repo.CreateSession(ctx, newSession("s-3")))
		require.NoError(t, repo.AppendMove(ctx, "s-3", &entity.LoggedMove{Seq: 1, Side: entity.SideRed, At: time.Now()}))

		// When: the session is created again under the same ID
		require.NoError(t, repo.CreateSession(ctx, newSession("s-3")))

		// Then: the move list starts empty
		moves, err := repo.ListMoves(ctx, "s-3")
		require.NoError(t, err)
		assert.Empty(t, moves)
	})

	t.Run("DeleteSession", func(t *testing.T) {
		ctx, repo := newRepo(t)

		require.NoError(t, repo.CreateSession(ctx, newSession("s-4")))
		require.NoError(t, repo.DeleteSession(ctx, "s-4"))

		_, err := repo.ListMoves(ctx, "s-4")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestMemoryMoveLog(t *testing.T) {
	testMoveLog(t, func(*testing.T) (context.Context, MoveLogRepository) {
		return context.Background(), NewMemoryMoveLog()
	})
}

func TestSQLiteMoveLog(t *testing.T) {
	testMoveLog(t, func(t *testing.T) (context.Context, MoveLogRepository) {
		ctx, db := suite.NewSQLite(t)

		return ctx, NewSQLiteMoveLog(db.Connection)
	})
}

func TestRedisMoveLog(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container tests are skipped in short mode")
	}

	testMoveLog(t, func(t *testing.T) (context.Context, MoveLogRepository) {
		ctx, st := suite.New(t)

		return ctx, NewRedisMoveLog(st.Storage)
	})
}
