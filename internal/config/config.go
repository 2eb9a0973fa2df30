package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/navsim/internal/tween"
)

// EnvPath names the environment variable holding the config path.
const EnvPath = "NAVSIM_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/navsim.yaml"

// Host backends.
const (
	BackendPhysics = "physics"
	BackendStatic  = "static"
)

// Route sources.
const (
	RoutesScenario = "scenario"
	RoutesDatabase = "database"
)

// Simulation holds all configuration for the navsim binary.
type Simulation struct {
	LogLevel string `yaml:"log_level"`

	Tick     TickConfig     `yaml:"tick"`
	Grid     GridConfig     `yaml:"grid"`
	Planner  PlannerConfig  `yaml:"planner"`
	Spatial  SpatialConfig  `yaml:"spatial"`
	Behavior BehaviorConfig `yaml:"behavior"`
	Host     HostConfig     `yaml:"host"`
	Scenario ScenarioConfig `yaml:"scenario"`
	Routes   RoutesConfig   `yaml:"routes"`

	// Database is only used when Routes.Source is "database".
	Database DatabaseConfig `yaml:"database"`
}

// TickConfig sets the frame and fixed-step intervals.
type TickConfig struct {
	Frame time.Duration `yaml:"frame"`
	Fixed time.Duration `yaml:"fixed"`
}

// GridConfig describes the walkability grid.
type GridConfig struct {
	OriginX       float64 `yaml:"origin_x"`
	OriginY       float64 `yaml:"origin_y"`
	Width         float64 `yaml:"width"`
	Depth         float64 `yaml:"depth"`
	CellRadius    float64 `yaml:"cell_radius"`
	PenaltyFactor float64 `yaml:"penalty_factor"` // 0 = default
	Mask          uint32  `yaml:"mask"`           // unwalkable obstacle layers
}

// PlannerConfig tunes path search.
type PlannerConfig struct {
	Budget time.Duration `yaml:"budget"` // per agent per frame
	Smooth bool          `yaml:"smooth"`
}

// SpatialConfig describes the spatial hash.
type SpatialConfig struct {
	OriginX  float64 `yaml:"origin_x"`
	OriginY  float64 `yaml:"origin_y"`
	CellSize float64 `yaml:"cell_size"`
}

// BehaviorConfig holds agent tuning.
type BehaviorConfig struct {
	MoveSpeed         float64       `yaml:"move_speed"`
	MinStep           time.Duration `yaml:"min_step"`
	MaxStep           time.Duration `yaml:"max_step"`
	Ease              string        `yaml:"ease"`
	VisionRadius      float64       `yaml:"vision_radius"`
	EngageDistance    float64       `yaml:"engage_distance"` // 0 = vision_radius/2
	SightLossGrace    time.Duration `yaml:"sight_loss_grace"`
	RepathInterval    time.Duration `yaml:"repath_interval"`
	SightConfirmTicks int           `yaml:"sight_confirm_ticks"`
	PatrolOnIdle      bool          `yaml:"patrol_on_idle"`
	IdleDwell         time.Duration `yaml:"idle_dwell"`
	SightMask         uint32        `yaml:"sight_mask"` // layers that block line of sight
}

// HostConfig selects the obstacle backend.
type HostConfig struct {
	Backend string `yaml:"backend"` // physics | static
}

// ScenarioConfig locates the scenario file.
type ScenarioConfig struct {
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// RoutesConfig selects where patrol routes come from.
type RoutesConfig struct {
	Source  string `yaml:"source"`  // scenario | database
	Migrate bool   `yaml:"migrate"` // run migrations on startup
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel: "info",
		Tick: TickConfig{
			Frame: 50 * time.Millisecond,
			Fixed: 20 * time.Millisecond,
		},
		Grid: GridConfig{
			Width:      64,
			Depth:      64,
			CellRadius: 0.5,
			Mask:       1,
		},
		Planner: PlannerConfig{
			Budget: 2 * time.Millisecond,
			Smooth: true,
		},
		Spatial: SpatialConfig{
			OriginX:  -32,
			OriginY:  -32,
			CellSize: 8,
		},
		Behavior: BehaviorConfig{
			MoveSpeed:         3,
			MinStep:           150 * time.Millisecond,
			MaxStep:           2 * time.Second,
			Ease:              "linear",
			VisionRadius:      10,
			SightLossGrace:    500 * time.Millisecond,
			RepathInterval:    500 * time.Millisecond,
			SightConfirmTicks: 3,
			PatrolOnIdle:      true,
			IdleDwell:         time.Second,
			SightMask:         1,
		},
		Host: HostConfig{
			Backend: BackendPhysics,
		},
		Scenario: ScenarioConfig{
			Path:     "config/scenario.geojson",
			Watch:    true,
			Debounce: 200 * time.Millisecond,
		},
		Routes: RoutesConfig{
			Source: RoutesScenario,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "navsim",
			Password: "navsim",
			DBName:   "navsim",
			SSLMode:  "disable",
		},
	}
}

// PathFromEnv returns the config path from NAVSIM_CONFIG or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Simulation) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		check(false, "log_level: unknown level %q", c.LogLevel)
	}

	check(c.Tick.Frame > 0, "tick.frame must be positive")
	check(c.Tick.Fixed > 0, "tick.fixed must be positive")

	check(c.Grid.Width > 0 && c.Grid.Depth > 0, "grid: extent %.2fx%.2f must be positive", c.Grid.Width, c.Grid.Depth)
	check(c.Grid.CellRadius > 0, "grid.cell_radius must be positive")
	check(c.Grid.PenaltyFactor >= 0, "grid.penalty_factor must not be negative")

	check(c.Planner.Budget >= 0, "planner.budget must not be negative")
	check(c.Spatial.CellSize > 0, "spatial.cell_size must be positive")

	check(c.Behavior.MoveSpeed > 0, "behavior.move_speed must be positive")
	check(c.Behavior.VisionRadius > 0, "behavior.vision_radius must be positive")
	check(c.Behavior.MaxStep >= c.Behavior.MinStep, "behavior.max_step must not be below min_step")
	check(c.Behavior.SightConfirmTicks >= 0, "behavior.sight_confirm_ticks must not be negative")
	_, ok := tween.ByName(c.Behavior.Ease)
	check(ok, "behavior.ease: unknown easing %q", c.Behavior.Ease)

	check(c.Host.Backend == BackendPhysics || c.Host.Backend == BackendStatic,
		"host.backend: want %q or %q, got %q", BackendPhysics, BackendStatic, c.Host.Backend)

	check(c.Scenario.Path != "", "scenario.path is required")

	check(c.Routes.Source == RoutesScenario || c.Routes.Source == RoutesDatabase,
		"routes.source: want %q or %q, got %q", RoutesScenario, RoutesDatabase, c.Routes.Source)

	return errors.Join(errs...)
}
