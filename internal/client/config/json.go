package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/eden/internal/flagx"
	"github.com/dmitrijs2005/eden/internal/timex"
)

// jsonDurations carries the fields whose JSON form differs from Config:
// timex.Duration accepts "3s" as well as integer nanoseconds.
type jsonDurations struct {
	RemoteTimeout *timex.Duration `json:"remote_timeout"`
}

// parseJSON overlays cfg with the JSON file named by -c or -config, if any.
// Keys absent from the file leave cfg untouched.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	var d jsonDurations
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if d.RemoteTimeout != nil {
		cfg.RemoteTimeout = d.RemoteTimeout.Duration
	}
	return nil
}
