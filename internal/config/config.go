// Package config holds all thread-engine configuration. Defaults are
// tuned for a serialized web novel (one chapter per update); every knob
// is overridable per novel via YAML or, for secrets, the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration.
type Config struct {
	// Physics tuning
	Physics PhysicsConfig `yaml:"physics"`

	// Director (per-chapter selection) settings
	Director DirectorConfig `yaml:"director"`

	// Audit (classifier ingestion) settings
	Audit AuditConfig `yaml:"audit"`

	// Resolution guardrail policy
	Resolution ResolutionPolicy `yaml:"resolution"`

	// Classifier (LLM) settings
	Classifier ClassifierConfig `yaml:"classifier"`
}

// PhysicsConfig tunes the scoring and lifecycle functions.
type PhysicsConfig struct {
	// Urgency weights. Urgency is clamped to 0..1000.
	KarmaFactor   float64 `yaml:"karma_factor"`   // per point of karma weight
	DebtFactor    float64 `yaml:"debt_factor"`    // per point of payoff debt
	EntropyFactor float64 `yaml:"entropy_factor"` // per point of entropy
	NeglectFactor float64 `yaml:"neglect_factor"` // per chapter since last mention
	VelocityBrake float64 `yaml:"velocity_brake"` // urgency relief per point of positive velocity

	// Debt accumulation
	DebtGrowthRate float64 `yaml:"debt_growth_rate"` // fraction of karma added per info-only touch
	DebtDecayRate  float64 `yaml:"debt_decay_rate"`  // fraction retained after an escalation

	// Entropy accumulation
	EntropyPerChapter float64 `yaml:"entropy_per_chapter"` // growth per neglected chapter
	HighEntropy       float64 `yaml:"high_entropy"`        // threshold counted against novel health

	// Automatic transitions
	SeedPromotionChapters  int `yaml:"seed_promotion_chapters"`
	StallThresholdChapters int `yaml:"stall_threshold_chapters"`
	BloomThresholdKarma    int `yaml:"bloom_threshold_karma"` // mapped onto the urgency scale (x10)

	// Payoff horizon windows, chapters after blooming, per category.
	Horizons map[string]HorizonWindow `yaml:"horizons"`
}

// HorizonWindow is the [MinDelay, MaxDelay] payoff window in chapters
// after the blooming chapter.
type HorizonWindow struct {
	MinDelay int `yaml:"min_delay"`
	MaxDelay int `yaml:"max_delay"`
}

// DirectorConfig bounds per-chapter selection.
type DirectorConfig struct {
	// ConstraintsPerChapter caps how many threads the next chapter must
	// address. Pinned threads can exceed it: the cap is a floor for
	// manual overrides, never a reason to drop a pin.
	ConstraintsPerChapter int `yaml:"constraints_per_chapter"`

	// EscalateUrgency and TouchUrgency split the urgency scale for the
	// directive action mapping.
	EscalateUrgency float64 `yaml:"escalate_urgency"`
	TouchUrgency    float64 `yaml:"touch_urgency"`

	// WordCountTarget is the default prose budget handed to generation.
	WordCountTarget int `yaml:"word_count_target"`
}

// AuditConfig bounds classifier ingestion.
type AuditConfig struct {
	// MaxNewThreadsPerChapter caps CREATE events per batch; excess
	// creates are dropped and reported, never queued.
	MaxNewThreadsPerChapter int `yaml:"max_new_threads_per_chapter"`
}

// ResolutionPolicy governs the resolution-criteria guardrail.
type ResolutionPolicy struct {
	// HardBlockUnmetCriteria downgrades a RESOLVE whose justification
	// does not address the thread's resolution criteria to an UPDATE.
	// Off by default: the original behavior is a soft warning.
	HardBlockUnmetCriteria bool `yaml:"hard_block_unmet_criteria"`
}

// ClassifierConfig configures the external semantic classifier.
type ClassifierConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			KarmaFactor:   2.0,
			DebtFactor:    3.0,
			EntropyFactor: 2.0,
			NeglectFactor: 5.0,
			VelocityBrake: 10.0,

			DebtGrowthRate: 0.15,
			DebtDecayRate:  0.5,

			EntropyPerChapter: 1.0,
			HighEntropy:       12.0,

			SeedPromotionChapters:  5,
			StallThresholdChapters: 10,
			BloomThresholdKarma:    75,

			Horizons: map[string]HorizonWindow{
				"SOVEREIGN": {MinDelay: 3, MaxDelay: 10},
				"MAJOR":     {MinDelay: 2, MaxDelay: 8},
				"MINOR":     {MinDelay: 1, MaxDelay: 5},
				"SEED":      {MinDelay: 1, MaxDelay: 3},
			},
		},

		Director: DirectorConfig{
			ConstraintsPerChapter: 4,
			EscalateUrgency:       600,
			TouchUrgency:          200,
			WordCountTarget:       2500,
		},

		Audit: AuditConfig{
			MaxNewThreadsPerChapter: 3,
		},

		Resolution: ResolutionPolicy{
			HardBlockUnmetCriteria: false,
		},

		Classifier: ClassifierConfig{
			Model:   "gemini-3-flash-preview",
			Timeout: "90s",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Classifier.APIKey = key
	}
	if model := os.Getenv("JADE_CLASSIFIER_MODEL"); model != "" {
		c.Classifier.Model = model
	}
}

// Validate rejects configurations the engine cannot run with. Invalid
// config is the one failure class that is allowed to be fatal.
func (c *Config) Validate() error {
	if c.Director.ConstraintsPerChapter < 1 {
		return fmt.Errorf("director.constraints_per_chapter must be >= 1, got %d", c.Director.ConstraintsPerChapter)
	}
	if c.Audit.MaxNewThreadsPerChapter < 0 {
		return fmt.Errorf("audit.max_new_threads_per_chapter must be >= 0, got %d", c.Audit.MaxNewThreadsPerChapter)
	}
	if c.Physics.StallThresholdChapters < 1 {
		return fmt.Errorf("physics.stall_threshold_chapters must be >= 1, got %d", c.Physics.StallThresholdChapters)
	}
	if c.Physics.SeedPromotionChapters < 1 {
		return fmt.Errorf("physics.seed_promotion_chapters must be >= 1, got %d", c.Physics.SeedPromotionChapters)
	}
	if c.Physics.BloomThresholdKarma < 1 || c.Physics.BloomThresholdKarma > 100 {
		return fmt.Errorf("physics.bloom_threshold_karma must be in 1..100, got %d", c.Physics.BloomThresholdKarma)
	}
	for cat, w := range c.Physics.Horizons {
		if w.MinDelay < 0 || w.MaxDelay < w.MinDelay {
			return fmt.Errorf("physics.horizons[%s]: invalid window [%d, %d]", cat, w.MinDelay, w.MaxDelay)
		}
	}
	return nil
}

// HorizonFor returns the payoff window for a category, falling back to
// the MINOR window when the category has no explicit entry.
func (c *Config) HorizonFor(category string) HorizonWindow {
	if w, ok := c.Physics.Horizons[category]; ok {
		return w
	}
	if w, ok := c.Physics.Horizons["MINOR"]; ok {
		return w
	}
	return HorizonWindow{MinDelay: 1, MaxDelay: 5}
}

// ClassifierTimeout returns the classifier timeout as a duration.
func (c *Config) ClassifierTimeout() time.Duration {
	d, err := time.ParseDuration(c.Classifier.Timeout)
	if err != nil || d <= 0 {
		return 90 * time.Second
	}
	return d
}
