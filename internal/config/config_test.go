package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Physics.Horizons) != 4 {
		t.Errorf("horizons = %d, want one per category", len(cfg.Physics.Horizons))
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero constraint budget", func(c *Config) { c.Director.ConstraintsPerChapter = 0 }},
		{"negative create cap", func(c *Config) { c.Audit.MaxNewThreadsPerChapter = -1 }},
		{"zero stall threshold", func(c *Config) { c.Physics.StallThresholdChapters = 0 }},
		{"zero seed promotion", func(c *Config) { c.Physics.SeedPromotionChapters = 0 }},
		{"bloom karma out of range", func(c *Config) { c.Physics.BloomThresholdKarma = 101 }},
		{"inverted horizon window", func(c *Config) {
			c.Physics.Horizons["MAJOR"] = HorizonWindow{MinDelay: 8, MaxDelay: 2}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("want validation error")
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "engine.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Director.ConstraintsPerChapter != 4 {
		t.Errorf("constraints = %d, want default 4", cfg.Director.ConstraintsPerChapter)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	data := "director:\n  constraints_per_chapter: 6\nphysics:\n  stall_threshold_chapters: 15\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Director.ConstraintsPerChapter != 6 {
		t.Errorf("constraints = %d, want 6", cfg.Director.ConstraintsPerChapter)
	}
	if cfg.Physics.StallThresholdChapters != 15 {
		t.Errorf("stall threshold = %d, want 15", cfg.Physics.StallThresholdChapters)
	}
	// Untouched knobs keep their defaults.
	if cfg.Audit.MaxNewThreadsPerChapter != 3 {
		t.Errorf("create cap = %d, want default 3", cfg.Audit.MaxNewThreadsPerChapter)
	}
}

func TestLoad_InvalidConfigIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("director:\n  constraints_per_chapter: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("want error for invalid config")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JADE_CLASSIFIER_MODEL", "gemini-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "engine.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.APIKey != "test-key" {
		t.Errorf("api key = %q", cfg.Classifier.APIKey)
	}
	if cfg.Classifier.Model != "gemini-test" {
		t.Errorf("model = %q", cfg.Classifier.Model)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "engine.yaml")

	cfg := DefaultConfig()
	cfg.Director.WordCountTarget = 3000
	cfg.Resolution.HardBlockUnmetCriteria = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Director.WordCountTarget != 3000 {
		t.Errorf("word count = %d, want 3000", loaded.Director.WordCountTarget)
	}
	if !loaded.Resolution.HardBlockUnmetCriteria {
		t.Error("hard block policy lost in round trip")
	}
}

func TestHorizonFor_Fallback(t *testing.T) {
	cfg := DefaultConfig()

	if w := cfg.HorizonFor("MAJOR"); w.MinDelay != 2 || w.MaxDelay != 8 {
		t.Errorf("MAJOR window = %+v", w)
	}
	// Unknown categories get the MINOR window.
	if w := cfg.HorizonFor("COSMIC"); w != cfg.HorizonFor("MINOR") {
		t.Errorf("fallback window = %+v", w)
	}
}

func TestClassifierTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if d := cfg.ClassifierTimeout(); d != 90*time.Second {
		t.Errorf("default timeout = %v", d)
	}

	cfg.Classifier.Timeout = "2m"
	if d := cfg.ClassifierTimeout(); d != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", d)
	}

	cfg.Classifier.Timeout = "not a duration"
	if d := cfg.ClassifierTimeout(); d != 90*time.Second {
		t.Errorf("garbage timeout = %v, want the default", d)
	}
}
