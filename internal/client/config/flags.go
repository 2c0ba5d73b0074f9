package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/eden/internal/flagx"
)

var knownFlags = []string{"-db", "-storage", "-profiles", "-timeout", "-offline", "-log-backend", "-log-level", "-metrics"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-db string           device database path
//	-storage string      device storage driver: sqlite, badger or memory
//	-profiles string     remote profile store: firestore or postgres
//	-timeout duration    timeout of each remote call
//	-offline             never contact the remote services
//	-log-backend string  slog or zap
//	-log-level string    debug, info, warn or error
//	-metrics string      address to serve Prometheus metrics on
//
// Arguments are filtered with flagx.FilterArgs first so flags owned by other
// components are ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("eden", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "device database path")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "device storage driver")
	fs.StringVar(&cfg.ProfileDriver, "profiles", cfg.ProfileDriver, "remote profile store driver")
	fs.DurationVar(&cfg.RemoteTimeout, "timeout", cfg.RemoteTimeout, "remote call timeout")
	fs.BoolVar(&cfg.Offline, "offline", cfg.Offline, "never contact remote services")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "logging backend")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
