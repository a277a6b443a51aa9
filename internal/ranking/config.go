package ranking

import (
	"fmt"
	"strings"
	"time"
)

// FallbackPolicy names the score given to a listing whose precise scoring failed.
type FallbackPolicy string

const (
	FallbackPessimistic FallbackPolicy = "pessimistic"
	FallbackNeutral     FallbackPolicy = "neutral"
)

// Score returns the fallback score for the policy.
func (p FallbackPolicy) Score() float64 {
	if p == FallbackNeutral {
		return 0.5
	}
	return 0
}

// RequirementPolicy decides what an unmet hard requirement does to a score.
type RequirementPolicy string

const (
	// RequirementHardZero forces the score to 0.
	RequirementHardZero RequirementPolicy = "hard-zero"
	// RequirementSoftPenalty multiplies the score by Config.SoftPenalty.
	RequirementSoftPenalty RequirementPolicy = "soft-penalty"
)

const (
	DefaultTopK        = 15
	DefaultTextLimit   = 2000
	DefaultWorkers     = 4
	DefaultCallTimeout = 30 * time.Second
	DefaultRetries     = 1
	DefaultSoftPenalty = 0.5

	maxRetries = 3
)

// Config tunes the two-stage ranker. The zero value is not valid; start from Defaults.
type Config struct {
	TopK      int `mapstructure:"top-k"`
	TextLimit int `mapstructure:"text-limit"`
	Workers   int `mapstructure:"workers"`
	// Delay is the minimum spacing between provider calls. 0 disables it.
	Delay       time.Duration `mapstructure:"delay"`
	CallTimeout time.Duration `mapstructure:"call-timeout"`
	// Timeout bounds the whole ranking operation. 0 leaves it to the caller's context.
	Timeout           time.Duration     `mapstructure:"timeout"`
	Retries           int               `mapstructure:"retries"`
	Fallback          FallbackPolicy    `mapstructure:"fallback"`
	Requirement       RequirementPolicy `mapstructure:"requirement-policy"`
	SoftPenalty       float64           `mapstructure:"soft-penalty"`
	ExtractAttributes bool              `mapstructure:"extract-attributes"`
}

func Defaults() Config {
	return Config{
		TopK:        DefaultTopK,
		TextLimit:   DefaultTextLimit,
		Workers:     DefaultWorkers,
		CallTimeout: DefaultCallTimeout,
		Retries:     DefaultRetries,
		Fallback:    FallbackPessimistic,
		Requirement: RequirementHardZero,
		SoftPenalty: DefaultSoftPenalty,
	}
}

// Validate normalizes enum casing and rejects values the ranker cannot honor.
func (c *Config) Validate() error {
	c.Fallback = FallbackPolicy(strings.ToLower(strings.TrimSpace(string(c.Fallback))))
	c.Requirement = RequirementPolicy(strings.ToLower(strings.TrimSpace(string(c.Requirement))))

	switch {
	case c.TopK <= 0:
		return fmt.Errorf("top-k must be positive, got %d", c.TopK)
	case c.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.CallTimeout <= 0:
		return fmt.Errorf("call-timeout must be positive, got %s", c.CallTimeout)
	case c.Delay < 0 || c.Timeout < 0:
		return fmt.Errorf("delay and timeout must not be negative")
	case c.Retries < 0 || c.Retries > maxRetries:
		return fmt.Errorf("retries must be between 0 and %d, got %d", maxRetries, c.Retries)
	}

	switch c.Fallback {
	case FallbackPessimistic, FallbackNeutral:
	default:
		return fmt.Errorf("unknown fallback policy %q", c.Fallback)
	}

	switch c.Requirement {
	case RequirementHardZero:
	case RequirementSoftPenalty:
		if c.SoftPenalty < 0 || c.SoftPenalty > 1 {
			return fmt.Errorf("soft-penalty must be between 0 and 1, got %v", c.SoftPenalty)
		}
	default:
		return fmt.Errorf("unknown requirement policy %q", c.Requirement)
	}

	return nil
}
