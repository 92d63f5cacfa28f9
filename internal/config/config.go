package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tetris-backend/internal/scheduler"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

type Config struct {
	LogLevel    string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string      `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8081"`
	Redis       Redis       `yaml:"redis"`
	Room        Room        `yaml:"room"`
	Rules       Rules       `yaml:"rules"`
	Preferences Preferences `yaml:"preferences"`
	Bot         Bot         `yaml:"bot"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Room struct {
	Capacity     int `yaml:"capacity" env-default:"2"`
	CodeAttempts int `yaml:"code-attempts" env-default:"16"`
}

// Rules are the match rules a host proposes when starting.
type Rules struct {
	FieldWidth     int     `yaml:"field-width" env-default:"10"`
	FieldHeight    int     `yaml:"field-height" env-default:"40"`
	FallDelay      float64 `yaml:"fall-delay" env-default:"60"`
	LockDelay      float64 `yaml:"lock-delay" env-default:"30"`
	MoveResetLimit int     `yaml:"move-reset-limit" env-default:"15"`
	WallKicks      string  `yaml:"wall-kicks" env-default:"standard"`
	BagPreview     int     `yaml:"bag-preview" env-default:"5"`
}

type Autoshift struct {
	Enabled      bool    `yaml:"enabled" env-default:"true"`
	Delay        float64 `yaml:"delay" env-default:"2"`
	InitialDelay float64 `yaml:"initial-delay" env-default:"10"`
}

type Preferences struct {
	Autoshift Autoshift `yaml:"autoshift"`
	SoftDrop  float64   `yaml:"soft-drop" env-default:"20"`
}

type Bot struct {
	URL        string `yaml:"url" env:"BOT_URL" env-default:"ws://localhost:8081/ws"`
	Name       string `yaml:"name" env:"BOT_NAME" env-default:"bot"`
	Code       string `yaml:"code" env:"BOT_CODE" env-default:""`
	ThinkTicks int    `yaml:"think-ticks" env-default:"8"`
	AutoStart  bool   `yaml:"auto-start" env-default:"true"`
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

// GameRules converts the configured rules. A negative move reset limit means
// unlimited resets.
func (that *Rules) GameRules() (tetris.Rules, error) {
	kicks, err := tetris.LookupKickTable(that.WallKicks)
	if err != nil {
		return tetris.Rules{}, err
	}

	rules := tetris.Rules{
		FieldWidth:  that.FieldWidth,
		FieldHeight: that.FieldHeight,
		FallDelay:   that.FallDelay,
		LockDelay:   that.LockDelay,
		WallKicks:   kicks,
		BagPreview:  that.BagPreview,
	}

	if that.MoveResetLimit >= 0 {
		limit := that.MoveResetLimit
		rules.MoveResetLimit = &limit
	}

	if err = rules.Validate(); err != nil {
		return tetris.Rules{}, err
	}

	return rules, nil
}

func (that *Preferences) SchedulerPreferences() scheduler.Preferences {
	prefs := scheduler.Preferences{SoftDrop: that.SoftDrop}

	if that.Autoshift.Enabled {
		prefs.Autoshift = &scheduler.Autoshift{
			Delay:        that.Autoshift.Delay,
			InitialDelay: that.Autoshift.InitialDelay,
		}
	}

	return prefs
}
