package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Defaults fill everything the file leaves out", func(t *testing.T) {
		// Given: a config file with only the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: it is loaded
		conf := MustLoad(path)

		// Then: the session timings and ports have their defaults
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, 5*time.Second, conf.Session.WatchdogInterval)
		assert.Equal(t, 20*time.Second, conf.Session.StallThreshold)
		assert.Equal(t, 15*time.Second, conf.Session.SpectateStallThreshold)
		assert.Equal(t, 150*time.Millisecond, conf.Session.CascadeFrameDelay)
		assert.Equal(t, BackendMemory, conf.MoveLog.Backend)
		assert.Equal(t, ModeTUI, conf.UI.Mode)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Missing file panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}

func TestConfig_GameConfig(t *testing.T) {
	t.Run("Two AI players with clamped values", func(t *testing.T) {
		// Given: an AI-vs-AI file with out of range values
		path := writeConfig(t, `
board:
  width: 40
  height: 2
red:
  name: Ruby
  kind: ai
  strategy: Random
  depth: 99
  time-limit-ms: 10
blue:
  kind: ai
  heuristics: [OrbDifference, SafeMobility]
`)

		// When: the setup values are built
		cfg := MustLoad(path).GameConfig()

		// Then: sizes and AI settings are clamped like the setup form does
		assert.Equal(t, entity.ClampBoardSize(40), cfg.Width)
		assert.Equal(t, entity.ClampBoardSize(2), cfg.Height)
		assert.True(t, cfg.IsSpectation())

		assert.Equal(t, "Ruby", cfg.Red.Name)
		require.NotNil(t, cfg.Red.AI)
		assert.Equal(t, entity.StrategyRandom, cfg.Red.AI.Strategy)
		assert.Equal(t, entity.ClampDepth(99), cfg.Red.AI.Depth)
		assert.Equal(t, entity.ClampTimeLimit(10), cfg.Red.AI.TimeLimitMS)

		require.NotNil(t, cfg.Blue.AI)
		assert.Equal(t, []entity.Heuristic{entity.HeuristicOrbDifference, entity.HeuristicSafeMobility}, cfg.Blue.AI.Heuristics)
	})

	t.Run("Human players carry no AI settings", func(t *testing.T) {
		path := writeConfig(t, "blue:\n  kind: human\n")

		cfg := MustLoad(path).GameConfig()

		assert.False(t, cfg.Blue.IsAI())
		assert.Nil(t, cfg.Blue.AI)
		assert.Equal(t, "Blue", cfg.Blue.Name)
	})
}
