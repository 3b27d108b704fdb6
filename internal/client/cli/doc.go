// Package cli provides the interactive sharebox command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL. Typical
// flow: prompt for the access code, start a background watcher that reports
// objects appearing in or vanishing from the shared store, and execute user
// commands.
//
// Key features:
//   - Login / Logout with the shared access code
//   - Upload text snippets and files (with overwrite confirmation)
//   - List / Search / Download / Print / Remove objects
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartWatcher, and runREPL for details.
package cli
