package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/errors"
	"github.com/matzehuels/tiergraph/pkg/layout/force"
	"github.com/matzehuels/tiergraph/pkg/layout/sugiyama"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[canvas]
width = 1600

[builder]
quota = "random"
seed = 9

[force]
profile = "quick"
repulsion = 9000

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
ttl = "90m"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Canvas.Width != 1600 || cfg.Canvas.Height != Default().Canvas.Height {
		t.Errorf("canvas = %+v", cfg.Canvas)
	}
	if cfg.Builder.Quota != QuotaRandom || cfg.Builder.Seed != 9 || cfg.Builder.MaxNodes != build.MaxNodesTriples {
		t.Errorf("builder = %+v", cfg.Builder)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout.Duration != 10*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"unknown key", "[canvas]\ndepth = 3\n", errors.ErrCodeInvalidConfig},
		{"bad syntax", "[canvas\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"bad quota", "[builder]\nquota = \"fair\"\n", errors.ErrCodeInvalidConfig},
		{"bad engine", "[selector]\nengine = \"radial\"\n", errors.ErrCodeInvalidConfig},
		{"bad profile", "[force]\nprofile = \"slow\"\n", errors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig},
		{"negative canvas", "[canvas]\nwidth = -1\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load() = %v, want NOT_FOUND", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() = %v", err)
	}
	if cfg.Canvas != Default().Canvas {
		t.Errorf("canvas = %+v", cfg.Canvas)
	}
}

func TestParseQuota(t *testing.T) {
	if q, err := ParseQuota(""); err != nil || q != build.QuotaDeterministic {
		t.Errorf("ParseQuota(\"\") = %v, %v", q, err)
	}
	if q, err := ParseQuota("random"); err != nil || q != build.QuotaRandom {
		t.Errorf("ParseQuota(random) = %v, %v", q, err)
	}
	if _, err := ParseQuota("fair"); err == nil {
		t.Error("ParseQuota(fair) succeeded")
	}
}

func TestSugiyamaApply(t *testing.T) {
	cfg := sugiyama.DefaultConfig()
	Sugiyama{LevelSpacing: 150, Font: "12px mono"}.Apply(&cfg)
	if cfg.LevelSpacing != 150 || cfg.Font != "12px mono" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MarginX != sugiyama.DefaultConfig().MarginX {
		t.Error("zero tuning value overrode MarginX")
	}
}

func TestForceEngine(t *testing.T) {
	cfg, err := Force{Profile: "precise", Seed: 3, Repulsion: 5000}.Engine()
	if err != nil {
		t.Fatal(err)
	}
	want := force.ProfileConfig(force.ProfilePrecise)
	if cfg.Iterations != want.Iterations || cfg.Cooling != want.Cooling {
		t.Errorf("profile not applied: %d %v", cfg.Iterations, cfg.Cooling)
	}
	if cfg.Seed != 3 || cfg.Repulsion != 5000 {
		t.Errorf("tuning not applied: seed=%d repulsion=%v", cfg.Seed, cfg.Repulsion)
	}
	if _, err := (Force{Profile: "slow"}).Engine(); err == nil {
		t.Error("Engine() accepted unknown profile")
	}
}
