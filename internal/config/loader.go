package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MrWong99/elocution/internal/lang"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// An empty document yields the zero [Config].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout %s must not be negative", cfg.Server.ShutdownTimeout))
	}
	if cfg.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes %d must not be negative", cfg.Server.MaxBodyBytes))
	}
	if cfg.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit %.2f must not be negative", cfg.Server.RateLimit))
	}
	if cfg.Server.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("server.rate_burst %d must not be negative", cfg.Server.RateBurst))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}

	// Engine
	eng := cfg.Engine
	if v := eng.LowConfidenceThreshold; v != nil && (*v < 0 || *v > 1) {
		errs = append(errs, fmt.Errorf("engine.low_confidence_threshold %.2f is out of range [0, 1]", *v))
	}
	if v := eng.DefaultConfidence; v != nil && (*v < 0 || *v > 1) {
		errs = append(errs, fmt.Errorf("engine.default_confidence %.2f is out of range [0, 1]", *v))
	}
	if v := eng.CommonIssueLimit; v != nil && *v < 0 {
		errs = append(errs, fmt.Errorf("engine.common_issue_limit %d must not be negative", *v))
	}
	if v := eng.ImprovementLimit; v != nil && *v < 0 {
		errs = append(errs, fmt.Errorf("engine.improvement_limit %d must not be negative", *v))
	}
	if eng.BatchConcurrency < 0 {
		errs = append(errs, fmt.Errorf("engine.batch_concurrency %d must not be negative", eng.BatchConcurrency))
	}

	// Languages
	builtin := lang.Default()
	codesSeen := make(map[string]int, len(cfg.Languages))
	for i, l := range cfg.Languages {
		prefix := fmt.Sprintf("languages[%d]", i)
		code := lang.PrimaryCode(l.Code)
		if code == "" {
			errs = append(errs, fmt.Errorf("%s.code is required", prefix))
		} else {
			if prev, ok := codesSeen[code]; ok {
				errs = append(errs, fmt.Errorf("%s.code %q is a duplicate of languages[%d]", prefix, l.Code, prev))
			}
			codesSeen[code] = i
		}
		for j, g := range l.Graphemes {
			if g.Cluster == "" {
				errs = append(errs, fmt.Errorf("%s.graphemes[%d].cluster is required", prefix, j))
			}
			if len(g.Symbols) == 0 {
				errs = append(errs, fmt.Errorf("%s.graphemes[%d].symbols must not be empty", prefix, j))
			}
		}

		if _, known := builtin.Lookup(code); !known && code != "" && len(l.Exercises) == 0 {
			slog.Warn("new language has no practice exercises; suggestions will carry none", "code", code)
		}
	}

	// Confusables
	for sym, set := range cfg.Confusables {
		if sym == "" {
			errs = append(errs, errors.New("confusables: symbol must not be empty"))
		}
		if len(set) == 0 {
			slog.Warn("confusable entry is empty and removes all confusions for the symbol", "symbol", sym)
		}
	}

	return errors.Join(errs...)
}
