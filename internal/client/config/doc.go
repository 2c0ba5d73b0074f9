// Package config loads runtime configuration for the Eden CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables, read with cleanenv. The Firebase settings use
//     the EXPO_PUBLIC_FIREBASE_* names of the mobile build, everything else
//     is prefixed EDEN_.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "db_path": "eden.db",
//	  "storage_driver": "sqlite",
//	  "remote_timeout": "5s",
//	  "log_backend": "zap",
//	  "firebase": {"api_key": "...", "project_id": "eden-app"},
//	  "s3": {"endpoint": "http://127.0.0.1:9000", "bucket": "avatars"}
//	}
//
// The remote services are used only when every Firebase key is present; see
// (*Config).MissingFirebaseKeys.
package config
