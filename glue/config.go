package glue

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config carries the engine-wide settings SPEC_FULL.md's EXTERNAL
// INTERFACES section adds on top of spec.md's per-statement behaviour.
// It loads the same way the teacher's TOML schema format does
// (internal/parser/toml/parser.go's toml.Decode/DecodeFile split), just
// over a much smaller document.
type Config struct {
	// NullOrdering selects the ORDER BY NULL-sort policy spec §4.5/§9
	// leaves open. "nulls_last_asc" is the documented default (nulls
	// sort last ascending, first descending); "nulls_first" forces nulls
	// first regardless of direction.
	NullOrdering string `toml:"null_ordering"`

	// DictionaryPrefix namespaces the reserved identifiers the dict
	// package recognises (spec §4.8). Defaults to "GLUE_".
	DictionaryPrefix string `toml:"dictionary_prefix"`

	// DefaultIsolationNote documents the active back-end's isolation
	// behaviour for SHOW VARIABLE to surface (spec §5: back-ends must
	// document their isolation choice, not have one enforced on them).
	DefaultIsolationNote string `toml:"default_isolation_note"`
}

// DefaultConfig returns the configuration a Glue uses when none is
// supplied, matching spec §4.5/§9's documented default ORDER BY policy.
func DefaultConfig() Config {
	return Config{
		NullOrdering:         "nulls_last_asc",
		DictionaryPrefix:     "GLUE_",
		DefaultIsolationNote: "back-end did not document an isolation level",
	}
}

// LoadConfig reads and decodes a TOML configuration file, filling in any
// field the document omits from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("glue: load config %q: %w", path, err)
	}
	if cfg.NullOrdering == "" {
		cfg.NullOrdering = "nulls_last_asc"
	}
	if cfg.DictionaryPrefix == "" {
		cfg.DictionaryPrefix = "GLUE_"
	}
	return cfg, nil
}

func (c Config) nullsFirst() bool {
	return c.NullOrdering == "nulls_first"
}
