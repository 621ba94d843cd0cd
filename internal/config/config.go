package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

const (
	ModeTUI      = "tui"
	ModeHeadless = "headless"

	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile   string    `yaml:"log-file" env:"LOG_FILE" env-default:"chainreaction.log"`
	Board     Board     `yaml:"board"`
	Red       Player    `yaml:"red" env-prefix:"RED_"`
	Blue      Player    `yaml:"blue" env-prefix:"BLUE_"`
	Session   Session   `yaml:"session"`
	MoveLog   MoveLog   `yaml:"movelog"`
	Redis     Redis     `yaml:"redis"`
	Spectator Spectator `yaml:"spectator"`
	UI        UI        `yaml:"ui"`
}

type Board struct {
	Width  int `yaml:"width" env:"BOARD_WIDTH" env-default:"6"`
	Height int `yaml:"height" env:"BOARD_HEIGHT" env-default:"9"`
}

type Player struct {
	Name        string   `yaml:"name" env:"NAME"`
	Kind        string   `yaml:"kind" env:"KIND"`
	Strategy    string   `yaml:"strategy" env:"STRATEGY" env-default:"AlphaBeta"`
	Depth       int      `yaml:"depth" env:"DEPTH" env-default:"3"`
	TimeLimitMS int      `yaml:"time-limit-ms" env:"TIME_LIMIT_MS" env-default:"2000"`
	Heuristics  []string `yaml:"heuristics" env:"HEURISTICS"`
}

type Session struct {
	WatchdogInterval       time.Duration `yaml:"watchdog-interval" env:"WATCHDOG_INTERVAL" env-default:"5s"`
	StallThreshold         time.Duration `yaml:"stall-threshold" env:"STALL_THRESHOLD" env-default:"20s"`
	SpectateStallThreshold time.Duration `yaml:"spectate-stall-threshold" env:"SPECTATE_STALL_THRESHOLD" env-default:"15s"`
	CascadeFrameDelay      time.Duration `yaml:"cascade-frame-delay" env:"CASCADE_FRAME_DELAY" env-default:"150ms"`
	AIMoveDelay            time.Duration `yaml:"ai-move-delay" env:"AI_MOVE_DELAY" env-default:"200ms"`
	ErrorClearAfter        time.Duration `yaml:"error-clear-after" env:"ERROR_CLEAR_AFTER" env-default:"3s"`
}

type MoveLog struct {
	Backend    string `yaml:"backend" env:"MOVELOG_BACKEND" env-default:"memory"`
	SQLitePath string `yaml:"sqlite-path" env:"MOVELOG_SQLITE_PATH" env-default:"chainreaction.db"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Spectator struct {
	Enabled    bool   `yaml:"enabled" env:"SPECTATOR_ENABLED" env-default:"false"`
	HTTPPort   string `yaml:"http-port" env:"SPECTATOR_HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SPECTATOR_SOCKET_PORT" env-default:"9091"`
}

type UI struct {
	Mode string `yaml:"mode" env:"UI_MODE" env-default:"tui"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// GameConfig - builds the initial setup-form values. Out of range numbers are clamped the same way the form does.
func (that *Config) GameConfig() entity.GameConfig {
	cfg := entity.DefaultGameConfig()
	cfg.Width = entity.ClampBoardSize(that.Board.Width)
	cfg.Height = entity.ClampBoardSize(that.Board.Height)

	applyPlayer(&cfg.Red, that.Red)
	applyPlayer(&cfg.Blue, that.Blue)

	return cfg
}

func applyPlayer(target *entity.PlayerConfig, source Player) {
	if source.Name != "" {
		target.Name = source.Name
	}

	switch entity.PlayerKind(source.Kind) {
	case entity.KindHuman:
		target.SetKind(entity.KindHuman)
		return
	case entity.KindAI:
		target.SetKind(entity.KindAI)
	}

	if target.AI == nil {
		return
	}

	if source.Strategy != "" {
		target.AI.Strategy = entity.Strategy(source.Strategy)
	}
	target.AI.Depth = entity.ClampDepth(source.Depth)
	target.AI.TimeLimitMS = entity.ClampTimeLimit(source.TimeLimitMS)

	if len(source.Heuristics) > 0 {
		heuristics := make([]entity.Heuristic, 0, len(source.Heuristics))
		for _, name := range source.Heuristics {
			heuristics = append(heuristics, entity.Heuristic(name))
		}
		target.AI.Heuristics = heuristics
	}
}
