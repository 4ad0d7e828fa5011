package config

import (
	"cmp"
	"maps"
	"slices"

	"github.com/MrWong99/elocution/internal/lang"
)

// ConfigDiff describes what changed between two configs.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// EngineChanged is true if any engine tuning value changed.
	EngineChanged bool

	// LanguagesChanged is true if any language override was added, removed
	// or modified. LanguageChanges lists them sorted by code.
	LanguagesChanged bool
	LanguageChanges  []LanguageDiff

	ConfusablesChanged bool

	// RestartRequired lists server settings that changed but only take
	// effect after a restart (e.g., "server.listen_addr").
	RestartRequired []string
}

// NeedsRebuild reports whether the assessment engine must be rebuilt to
// apply the diff.
func (d ConfigDiff) NeedsRebuild() bool {
	return d.EngineChanged || d.LanguagesChanged || d.ConfusablesChanged
}

// LanguageDiff describes what changed for a single language override.
type LanguageDiff struct {
	Code     string
	Added    bool
	Removed  bool
	Modified bool
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Server.ListenAddr != new.Server.ListenAddr {
		d.RestartRequired = append(d.RestartRequired, "server.listen_addr")
	}
	if !ptrEqual(old.Server.TLS, new.Server.TLS) {
		d.RestartRequired = append(d.RestartRequired, "server.tls")
	}
	if old.Server.ShutdownTimeout != new.Server.ShutdownTimeout {
		d.RestartRequired = append(d.RestartRequired, "server.shutdown_timeout")
	}
	if old.Server.MaxBodyBytes != new.Server.MaxBodyBytes {
		d.RestartRequired = append(d.RestartRequired, "server.max_body_bytes")
	}
	if old.Server.RateLimit != new.Server.RateLimit || old.Server.RateBurst != new.Server.RateBurst {
		d.RestartRequired = append(d.RestartRequired, "server.rate_limit")
	}

	d.EngineChanged = !old.Engine.Equal(new.Engine)

	oldLangs := languagesByCode(old.Languages)
	newLangs := languagesByCode(new.Languages)
	for _, code := range slices.Sorted(maps.Keys(oldLangs)) {
		nl, exists := newLangs[code]
		switch {
		case !exists:
			d.LanguageChanges = append(d.LanguageChanges, LanguageDiff{Code: code, Removed: true})
		case !oldLangs[code].equal(nl):
			d.LanguageChanges = append(d.LanguageChanges, LanguageDiff{Code: code, Modified: true})
		}
	}
	for _, code := range slices.Sorted(maps.Keys(newLangs)) {
		if _, exists := oldLangs[code]; !exists {
			d.LanguageChanges = append(d.LanguageChanges, LanguageDiff{Code: code, Added: true})
		}
	}
	slices.SortStableFunc(d.LanguageChanges, func(a, b LanguageDiff) int {
		return cmp.Compare(a.Code, b.Code)
	})
	d.LanguagesChanged = len(d.LanguageChanges) > 0

	d.ConfusablesChanged = !maps.EqualFunc(old.Confusables, new.Confusables, slices.Equal[[]string])

	return d
}

// languagesByCode keys language overrides by primary code. A later entry
// with the same code wins, although Validate rejects duplicates.
func languagesByCode(ls []LanguageConfig) map[string]LanguageConfig {
	out := make(map[string]LanguageConfig, len(ls))
	for _, l := range ls {
		out[lang.PrimaryCode(l.Code)] = l
	}
	return out
}
