package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"moneta/internal/game"
)

// APIConfig is the runtime configuration of the HTTP entrypoint. The game
// rules themselves live in a separate YAML file; everything here is plumbing.
type APIConfig struct {
	Addr       string
	Seed       int64
	RulesPath  string
	SQLitePath string // empty disables the audit recorder
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("MONETA_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:       addr,
		Seed:       envInt64Default("MONETA_SEED", 0),
		RulesPath:  strings.TrimSpace(os.Getenv("MONETA_RULES_FILE")),
		SQLitePath: strings.TrimSpace(os.Getenv("MONETA_SQLITE_PATH")),
	}
	// An unset seed means a fresh session every boot; an explicit seed makes
	// the whole run reproducible.
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

// LoadRules reads the YAML rules file on top of the built-in defaults and
// validates the result. An empty path returns the defaults.
func LoadRules(path string) (game.Rules, error) {
	rules := game.DefaultRules()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return rules, fmt.Errorf("read rules: %w", err)
		}
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return rules, fmt.Errorf("parse rules: %w", err)
		}
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
