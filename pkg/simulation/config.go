package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/clock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/drones"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

// Config holds every tunable of a run. Files only need the keys they change:
// they are decoded on top of DefaultConfig.
type Config struct {
	// Window
	ScreenWidth  int     `json:"screenWidth" toml:"screenWidth"`
	ScreenHeight int     `json:"screenHeight" toml:"screenHeight"`
	TPS          int     `json:"tps" toml:"tps"`
	Zoom         float64 `json:"zoom" toml:"zoom"` // pixels per world unit

	// Seed of the random source, 0 picks one from the wall clock.
	Seed uint64 `json:"seed" toml:"seed"`

	// Population
	InitialFlyers int  `json:"initialFlyers" toml:"initialFlyers"`
	SpawnBatch    int  `json:"spawnBatch" toml:"spawnBatch"` // flyers added by a spawn command
	ShowGrid      bool `json:"showGrid" toml:"showGrid"`

	Flock  FlockConfig  `json:"flock" toml:"flock"`
	Player PlayerConfig `json:"player" toml:"player"`
	Drones DronesConfig `json:"drones" toml:"drones"`
}

// FlockConfig maps to flock.Settings.
type FlockConfig struct {
	CellSize            float64       `json:"cellSize" toml:"cellSize"`
	InitialPoolSize     int           `json:"initialPoolSize" toml:"initialPoolSize"`
	GrowthFactor        float64       `json:"growthFactor" toml:"growthFactor"`
	SpawnMinRadius      float64       `json:"spawnMinRadius" toml:"spawnMinRadius"`
	SpawnMaxRadius      float64       `json:"spawnMaxRadius" toml:"spawnMaxRadius"`
	BaseSeekRadius      float64       `json:"baseSeekRadius" toml:"baseSeekRadius"`
	SeekRadiusVariation float64       `json:"seekRadiusVariation" toml:"seekRadiusVariation"`
	BatchCooldownMs     int           `json:"batchCooldownMs" toml:"batchCooldownMs"`
	MaxSpeed            float64       `json:"maxSpeed" toml:"maxSpeed"`
	MinSpeed            float64       `json:"minSpeed" toml:"minSpeed"`
	MaxForce            float64       `json:"maxForce" toml:"maxForce"`
	Weights             flock.Weights `json:"weights" toml:"weights"`
}

// PlayerConfig drives the leader everybody follows.
type PlayerConfig struct {
	Thrust  float64 `json:"thrust" toml:"thrust"`   // units/s²
	Damping float64 `json:"damping" toml:"damping"` // velocity kept per 1/60 s
}

// DronesConfig maps to drones.Settings.
type DronesConfig struct {
	Enabled           bool    `json:"enabled" toml:"enabled"`
	IntervalMs        int     `json:"intervalMs" toml:"intervalMs"`
	BatchSize         int     `json:"batchSize" toml:"batchSize"`
	MaxDrones         int     `json:"maxDrones" toml:"maxDrones"`
	SpawnDistance     float64 `json:"spawnDistance" toml:"spawnDistance"`
	SpawnJitter       float64 `json:"spawnJitter" toml:"spawnJitter"`
	SpawnArcDegrees   float64 `json:"spawnArcDegrees" toml:"spawnArcDegrees"`
	LookaheadMs       int     `json:"lookaheadMs" toml:"lookaheadMs"`
	MaxActiveDistance float64 `json:"maxActiveDistance" toml:"maxActiveDistance"`
	Size              float64 `json:"size" toml:"size"`
}

// DefaultConfig returns the tuned settings every file is decoded over.
func DefaultConfig() *Config {
	fs := flock.DefaultSettings()
	ds := drones.DefaultSettings()
	return &Config{
		ScreenWidth:   1024,
		ScreenHeight:  768,
		TPS:           60,
		Zoom:          12,
		InitialFlyers: 50,
		SpawnBatch:    25,
		Flock: FlockConfig{
			CellSize:            fs.CellSize,
			InitialPoolSize:     fs.InitialPoolSize,
			GrowthFactor:        fs.GrowthFactor,
			SpawnMinRadius:      fs.SpawnMinRadius,
			SpawnMaxRadius:      fs.SpawnMaxRadius,
			BaseSeekRadius:      fs.BaseSeekRadius,
			SeekRadiusVariation: fs.SeekRadiusVariation,
			BatchCooldownMs:     int(fs.BatchCooldown / time.Millisecond),
			MaxSpeed:            fs.MaxSpeed,
			MinSpeed:            fs.MinSpeed,
			MaxForce:            fs.MaxForce,
			Weights:             fs.Weights,
		},
		Player: PlayerConfig{
			Thrust:  30,
			Damping: 0.9,
		},
		Drones: DronesConfig{
			Enabled:           true,
			IntervalMs:        int(ds.SpawnInterval / time.Millisecond),
			BatchSize:         ds.BatchSize,
			MaxDrones:         ds.MaxDrones,
			SpawnDistance:     ds.SpawnDistance,
			SpawnJitter:       ds.SpawnJitter,
			SpawnArcDegrees:   ds.SpawnArc * 180 / math.Pi,
			LookaheadMs:       int(ds.Lookahead / time.Millisecond),
			MaxActiveDistance: ds.MaxActiveDistance,
			Size:              ds.Size.X,
		},
	}
}

// Settings converts the flock section.
func (c *Config) Settings() flock.Settings {
	f := c.Flock
	return flock.Settings{
		CellSize:            f.CellSize,
		InitialPoolSize:     f.InitialPoolSize,
		GrowthFactor:        f.GrowthFactor,
		SpawnMinRadius:      f.SpawnMinRadius,
		SpawnMaxRadius:      f.SpawnMaxRadius,
		BaseSeekRadius:      f.BaseSeekRadius,
		SeekRadiusVariation: f.SeekRadiusVariation,
		BatchCooldown:       time.Duration(f.BatchCooldownMs) * time.Millisecond,
		MaxSpeed:            f.MaxSpeed,
		MinSpeed:            f.MinSpeed,
		MaxForce:            f.MaxForce,
		Weights:             f.Weights,
	}
}

// WaveSettings converts the drones section.
func (c *Config) WaveSettings() drones.Settings {
	d := c.Drones
	return drones.Settings{
		Kind:              flock.KindHoverer,
		SpawnInterval:     time.Duration(d.IntervalMs) * time.Millisecond,
		BatchSize:         d.BatchSize,
		MaxDrones:         d.MaxDrones,
		SpawnDistance:     d.SpawnDistance,
		SpawnJitter:       d.SpawnJitter,
		SpawnArc:          d.SpawnArcDegrees * math.Pi / 180,
		Lookahead:         time.Duration(d.LookaheadMs) * time.Millisecond,
		MaxActiveDistance: d.MaxActiveDistance,
		Size:              geometry.Vector2D{X: d.Size, Y: d.Size},
	}
}

// FrameDuration is the simulated time of one tick.
// Invalid rates fall back to 60 ticks per second.
func (c *Config) FrameDuration() time.Duration {
	if d := clock.FrameDuration(c.TPS); d > 0 {
		return d
	}
	return clock.FrameDuration(60)
}

func compileSchema() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchema)
}

// LoadConfig reads a JSON or TOML (by extension) configuration file,
// validates it against the embedded schema and decodes it over the defaults.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(configFile), ".toml") {
		return ParseTOML(b)
	}
	return ParseJSON(b)
}

// ParseJSON validates and decodes a JSON document.
func ParseJSON(b []byte) (*Config, error) {
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ParseTOML validates and decodes a TOML document. The document goes through
// JSON once so the schema sees the same value types as for JSON files.
func ParseTOML(b []byte) (*Config, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(string(b), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config toml: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert config toml: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if _, err := toml.Decode(string(b), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func validate(doc interface{}) error {
	sch, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
