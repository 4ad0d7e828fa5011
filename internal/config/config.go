// Package config provides the configuration schema, loader, file watcher and
// engine builder for the Elocution pronunciation assessment service.
package config

import (
	"slices"
	"time"

	"github.com/MrWong99/elocution/internal/lang"
)

// LogLevel controls log verbosity for the Elocution server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Elocution.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
// The zero value is a valid configuration that uses the built-in language
// tables and engine defaults.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`

	// Languages overrides or extends the built-in language tables. A
	// language whose code matches a built-in replaces only the fields it
	// sets.
	Languages []LanguageConfig `yaml:"languages"`

	// Confusables replaces the confusable-symbol set of each listed symbol.
	Confusables map[string][]string `yaml:"confusables"`
}

// ServerConfig holds network and logging settings for the HTTP server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on. Default: ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies. Default: 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RateLimit caps API requests per second across all clients. Zero
	// disables limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the number of requests allowed above RateLimit in a
	// burst. Default: 1 when RateLimit is set.
	RateBurst int `yaml:"rate_burst"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// EngineConfig tunes the assessment engine. Nil pointers and zero values
// keep the engine defaults.
type EngineConfig struct {
	// LowConfidenceThreshold is the confidence below which a correctly
	// recognized word still earns a suggestion.
	LowConfidenceThreshold *float64 `yaml:"low_confidence_threshold"`

	// DefaultConfidence is assumed for recognized words without a reported
	// confidence.
	DefaultConfidence *float64 `yaml:"default_confidence"`

	// CommonIssueLimit caps the common-issues histogram.
	CommonIssueLimit *int `yaml:"common_issue_limit"`

	// ImprovementLimit caps the improvement-area list.
	ImprovementLimit *int `yaml:"improvement_limit"`

	// BatchConcurrency bounds parallel scoring in batch requests.
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// Equal reports whether e and o configure the engine identically.
func (e EngineConfig) Equal(o EngineConfig) bool {
	return ptrEqual(e.LowConfidenceThreshold, o.LowConfidenceThreshold) &&
		ptrEqual(e.DefaultConfidence, o.DefaultConfidence) &&
		ptrEqual(e.CommonIssueLimit, o.CommonIssueLimit) &&
		ptrEqual(e.ImprovementLimit, o.ImprovementLimit) &&
		e.BatchConcurrency == o.BatchConcurrency
}

// LanguageConfig overrides or adds one language table.
type LanguageConfig struct {
	// Code is a BCP 47 tag; only its primary subtag is used.
	Code string `yaml:"code"`

	// Name is a human-readable label.
	Name string `yaml:"name"`

	// Graphemes maps spelling clusters to phoneme symbols, checked in order.
	Graphemes []lang.Grapheme `yaml:"graphemes"`

	// Challenges lists clusters that raise word difficulty.
	Challenges []string `yaml:"challenges"`

	// Exercises lists practice drills attached to suggestions.
	Exercises []string `yaml:"exercises"`
}

// equal reports whether l and o carry the same tables.
func (l LanguageConfig) equal(o LanguageConfig) bool {
	return l.Code == o.Code &&
		l.Name == o.Name &&
		slices.EqualFunc(l.Graphemes, o.Graphemes, func(a, b lang.Grapheme) bool {
			return a.Cluster == b.Cluster && slices.Equal(a.Symbols, b.Symbols)
		}) &&
		slices.Equal(l.Challenges, o.Challenges) &&
		slices.Equal(l.Exercises, o.Exercises)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
