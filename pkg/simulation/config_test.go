package simulation

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/drones"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

func TestDefaultConfig_RoundTripsSettings(t *testing.T) {
	cfg := DefaultConfig()

	if got, want := cfg.Settings(), flock.DefaultSettings(); got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}

	got, want := cfg.WaveSettings(), drones.DefaultSettings()
	if math.Abs(got.SpawnArc-want.SpawnArc) > 1e-12 {
		t.Errorf("SpawnArc = %v, want %v", got.SpawnArc, want.SpawnArc)
	}
	got.SpawnArc = want.SpawnArc
	if got != want {
		t.Errorf("WaveSettings() = %+v, want %+v", got, want)
	}
}

func TestConfig_FrameDuration(t *testing.T) {
	tests := []struct {
		tps  int
		want time.Duration
	}{
		{60, time.Second / 60},
		{30, time.Second / 30},
		{0, time.Second / 60},
		{-5, time.Second / 60},
	}
	for _, tt := range tests {
		cfg := &Config{TPS: tt.tps}
		if got := cfg.FrameDuration(); got != tt.want {
			t.Errorf("TPS %d: FrameDuration() = %v, want %v", tt.tps, got, tt.want)
		}
	}
}

func TestParseJSON_OverridesDefaults(t *testing.T) {
	doc := `{
		"tps": 30,
		"seed": 7,
		"flock": {"maxSpeed": 9, "weights": {"separation": 2}},
		"drones": {"enabled": false, "spawnArcDegrees": 180}
	}`
	cfg, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}

	if cfg.TPS != 30 || cfg.Seed != 7 {
		t.Errorf("Expected tps 30 and seed 7, got %d and %d", cfg.TPS, cfg.Seed)
	}
	if cfg.Flock.MaxSpeed != 9 {
		t.Errorf("Expected maxSpeed 9, got %v", cfg.Flock.MaxSpeed)
	}
	if cfg.Flock.Weights.Separation != 2 || cfg.Flock.Weights.Cohesion != 1 {
		t.Errorf("Expected separation 2 and default cohesion, got %+v", cfg.Flock.Weights)
	}
	if cfg.Drones.Enabled {
		t.Error("Expected drones disabled")
	}
	if got := cfg.WaveSettings().SpawnArc; math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("SpawnArc = %v, want pi", got)
	}
	// untouched keys keep their defaults
	if cfg.ScreenWidth != 1024 || cfg.InitialFlyers != 50 {
		t.Errorf("Expected defaults to survive, got width %d and %d flyers", cfg.ScreenWidth, cfg.InitialFlyers)
	}
}

func TestParseTOML_OverridesDefaults(t *testing.T) {
	doc := `
tps = 120
showGrid = true

[flock]
cellSize = 20.0
batchCooldownMs = 500

[flock.weights]
alignment = 3.5

[player]
damping = 0.8
`
	cfg, err := ParseTOML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTOML() error = %v", err)
	}
	if cfg.TPS != 120 || !cfg.ShowGrid {
		t.Errorf("Expected tps 120 and grid on, got %d and %v", cfg.TPS, cfg.ShowGrid)
	}
	s := cfg.Settings()
	if s.CellSize != 20 || s.BatchCooldown != 500*time.Millisecond {
		t.Errorf("Expected cell 20 and cooldown 500ms, got %v and %v", s.CellSize, s.BatchCooldown)
	}
	if s.Weights.Alignment != 3.5 || s.Weights.Separation != 4 {
		t.Errorf("Unexpected weights %+v", s.Weights)
	}
	if cfg.Player.Damping != 0.8 || cfg.Player.Thrust != 30 {
		t.Errorf("Unexpected player config %+v", cfg.Player)
	}
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name  string
		parse func([]byte) (*Config, error)
		doc   string
	}{
		{"json syntax", ParseJSON, `{"tps": `},
		{"json unknown key", ParseJSON, `{"fps": 60}`},
		{"json zero cohesion", ParseJSON, `{"flock": {"weights": {"cohesion": 0}}}`},
		{"json small growth", ParseJSON, `{"flock": {"growthFactor": 1.05}}`},
		{"json damping above one", ParseJSON, `{"player": {"damping": 1.5}}`},
		{"json fractional tps", ParseJSON, `{"tps": 59.5}`},
		{"json wrong type", ParseJSON, `{"showGrid": "yes"}`},
		{"toml syntax", ParseTOML, `tps = `},
		{"toml unknown table", ParseTOML, "[camera]\nzoom = 2.0\n"},
		{"toml negative interval", ParseTOML, "[drones]\nintervalMs = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parse([]byte(tt.doc)); err == nil {
				t.Errorf("Expected an error for %s", tt.doc)
			}
		})
	}
}

func TestLoadConfig_ByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "flock.json")
	tomlPath := filepath.Join(dir, "flock.TOML")
	if err := os.WriteFile(jsonPath, []byte(`{"zoom": 8}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tomlPath, []byte("zoom = 6.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want float64
	}{
		{jsonPath, 8},
		{tomlPath, 6},
	}
	for _, tt := range tests {
		cfg, err := LoadConfig(tt.path)
		if err != nil {
			t.Fatalf("LoadConfig(%s) error = %v", tt.path, err)
		}
		if cfg.Zoom != tt.want {
			t.Errorf("LoadConfig(%s).Zoom = %v, want %v", tt.path, cfg.Zoom, tt.want)
		}
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
