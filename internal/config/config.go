package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/geom"
)

const (
	ModePersistent = "persistent"
	ModeEphemeral  = "ephemeral"
)

type Config struct {
	Spawn   Spawn              `yaml:"spawn" json:"spawn"`
	Reset   Reset              `yaml:"reset" json:"reset"`
	Runtime Runtime            `yaml:"runtime" json:"runtime"`
	Storage Storage            `yaml:"storage" json:"storage"`
	Server  Server             `yaml:"server" json:"server"`
	Log     Log                `yaml:"log" json:"log"`
	Chores  []chore.Definition `yaml:"chores" json:"chores"`
}

type Spawn struct {
	Mode           string        `yaml:"mode" json:"mode" env:"MINDHOP_SPAWN_MODE"`
	Anchor         geom.Vec3     `yaml:"anchor" json:"anchor"`
	Radius         float64       `yaml:"radius" json:"radius"`
	MinHeight      float64       `yaml:"min_height" json:"min_height"`
	MaxHeight      float64       `yaml:"max_height" json:"max_height"`
	MinDistance    float64       `yaml:"min_distance" json:"min_distance"`
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	GrowthDuration time.Duration `yaml:"growth_duration" json:"growth_duration"`
	DefaultScale   geom.Vec3     `yaml:"default_scale" json:"default_scale"`
	ShrinkSpeed    float64       `yaml:"shrink_speed" json:"shrink_speed"`
	MinInterval    time.Duration `yaml:"min_interval" json:"min_interval"`
	MaxInterval    time.Duration `yaml:"max_interval" json:"max_interval"`
}

type Reset struct {
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval" env:"MINDHOP_CHECK_INTERVAL"`
	DefaultDays   int           `yaml:"default_days" json:"default_days"`
}

type Runtime struct {
	FrameRate int    `yaml:"frame_rate" json:"frame_rate" env:"MINDHOP_FRAME_RATE"`
	ScanScene string `yaml:"scan_scene" json:"scan_scene"`
}

type Storage struct {
	Driver     string `yaml:"driver" json:"driver" env:"MINDHOP_STORAGE_DRIVER"`
	DataDir    string `yaml:"data_dir" json:"data_dir" env:"MINDHOP_DATA_DIR"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path" env:"MINDHOP_SQLITE_PATH"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr" env:"MINDHOP_ADDR"`
}

type Log struct {
	Level string `yaml:"level" json:"level" env:"MINDHOP_LOG_LEVEL"`
}

func (s *Spawn) ApplyDefaults() {
	if s.Mode == "" {
		s.Mode = ModePersistent
	}
	if s.Radius == 0 {
		s.Radius = 5
	}
	if s.MinHeight == 0 && s.MaxHeight == 0 {
		s.MinHeight = 1
		s.MaxHeight = 3
	}
	if s.MinDistance == 0 {
		s.MinDistance = 1
	}
	if s.MaxAttempts == 0 {
		s.MaxAttempts = 100
	}
	if s.GrowthDuration == 0 {
		s.GrowthDuration = time.Second
	}
	if s.DefaultScale.IsZero() {
		s.DefaultScale = geom.Splat(100)
	}
	if s.ShrinkSpeed == 0 {
		s.ShrinkSpeed = 5
	}
	if s.MinInterval == 0 && s.MaxInterval == 0 {
		s.MinInterval = 500 * time.Millisecond
		s.MaxInterval = 2 * time.Second
	}
}

func (r *Reset) ApplyDefaults() {
	if r.CheckInterval == 0 {
		r.CheckInterval = 60 * time.Second
	}
	if r.DefaultDays == 0 {
		r.DefaultDays = 1
	}
}

func (c *Config) ApplyDefaults() {
	c.Spawn.ApplyDefaults()
	c.Reset.ApplyDefaults()
	if c.Runtime.FrameRate == 0 {
		c.Runtime.FrameRate = 60
	}
	if c.Runtime.ScanScene == "" {
		c.Runtime.ScanScene = "ChoreScene"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = c.Storage.DataDir + "/mindhop.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":42069"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Spawn.Mode {
	case ModePersistent, ModeEphemeral:
	default:
		errs = append(errs, fmt.Errorf("spawn.mode must be %q or %q, got %q", ModePersistent, ModeEphemeral, c.Spawn.Mode))
	}
	if c.Spawn.Radius < 0 {
		errs = append(errs, errors.New("spawn.radius must be >= 0"))
	}
	if c.Spawn.MaxHeight < c.Spawn.MinHeight {
		errs = append(errs, errors.New("spawn.max_height must be >= spawn.min_height"))
	}
	if c.Spawn.MaxInterval < c.Spawn.MinInterval {
		errs = append(errs, errors.New("spawn.max_interval must be >= spawn.min_interval"))
	}
	if c.Reset.CheckInterval < 0 {
		errs = append(errs, errors.New("reset.check_interval must not be negative"))
	}
	if c.Reset.DefaultDays < 0 {
		errs = append(errs, errors.New("reset.default_days must be >= 0"))
	}
	if c.Runtime.FrameRate < 0 {
		errs = append(errs, errors.New("runtime.frame_rate must not be negative"))
	}
	return errors.Join(errs...)
}

// Registry builds the chore catalog, falling back to the built-in one.
func (c *Config) Registry() (*chore.Registry, error) {
	if len(c.Chores) == 0 {
		return chore.NewRegistry(chore.Default())
	}
	return chore.NewRegistry(c.Chores)
}

// FrameDuration is the wall-clock length of one frame.
func (c *Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.Runtime.FrameRate)
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return finish(&c)
}

// LoadOrDefault is Load that treats a missing file as an empty one.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return finish(&Config{})
	}
	return c, err
}

func finish(c *Config) (*Config, error) {
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
