// Package cli provides the interactive Eden command-line client.
//
// It wires configuration, the device store, the remote adapters and the
// fallback authentication service behind a small REPL that mirrors the
// mobile screens:
//   - Sign up / Login / Forgot password (remote first, device store when
//     the remote service is unavailable)
//   - Show / Update profile, upload a profile photo
//   - Logout and wiping the device store
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewAppFromConfig and runREPL for details.
package cli
