package config

import (
	"fmt"
	"time"

	"github.com/MrWong99/elocution/internal/assess"
	"github.com/MrWong99/elocution/internal/lang"
)

// Defaults applied by [Config.WithDefaults].
const (
	DefaultListenAddr      = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// WithDefaults returns a copy of c with unset server settings filled in.
func (c *Config) WithDefaults() Config {
	out := *c
	if out.Server.ListenAddr == "" {
		out.Server.ListenAddr = DefaultListenAddr
	}
	if out.Server.LogLevel == "" {
		out.Server.LogLevel = LogInfo
	}
	if out.Server.ShutdownTimeout == 0 {
		out.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if out.Server.MaxBodyBytes == 0 {
		out.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return out
}

// Tables returns the built-in language tables overlaid with the language
// overrides and confusables of c.
func (c *Config) Tables() (*lang.Tables, error) {
	base := lang.Default()
	if len(c.Languages) == 0 && len(c.Confusables) == 0 {
		return base, nil
	}
	overrides := make([]lang.Language, 0, len(c.Languages))
	for _, l := range c.Languages {
		overrides = append(overrides, lang.Language{
			Code:       lang.PrimaryCode(l.Code),
			Name:       l.Name,
			Graphemes:  l.Graphemes,
			Challenges: l.Challenges,
			Exercises:  l.Exercises,
		})
	}
	t, err := base.Merge(overrides, c.Confusables)
	if err != nil {
		return nil, fmt.Errorf("config: build language tables: %w", err)
	}
	return t, nil
}

// EngineOptions translates the engine section into [assess.Option] values.
func (c *Config) EngineOptions() []assess.Option {
	var opts []assess.Option
	e := c.Engine
	if e.LowConfidenceThreshold != nil {
		opts = append(opts, assess.WithLowConfidenceThreshold(*e.LowConfidenceThreshold))
	}
	if e.DefaultConfidence != nil {
		opts = append(opts, assess.WithDefaultConfidence(*e.DefaultConfidence))
	}
	if e.CommonIssueLimit != nil {
		opts = append(opts, assess.WithCommonIssueLimit(*e.CommonIssueLimit))
	}
	if e.ImprovementLimit != nil {
		opts = append(opts, assess.WithImprovementLimit(*e.ImprovementLimit))
	}
	if e.BatchConcurrency > 0 {
		opts = append(opts, assess.WithBatchConcurrency(e.BatchConcurrency))
	}
	return opts
}

// NewEngine builds an [assess.Engine] from c. extra options are applied
// after the configured ones, so callers can add metrics or override values.
func NewEngine(c *Config, extra ...assess.Option) (*assess.Engine, error) {
	tables, err := c.Tables()
	if err != nil {
		return nil, err
	}
	eng, err := assess.New(tables, append(c.EngineOptions(), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("config: build engine: %w", err)
	}
	return eng, nil
}
