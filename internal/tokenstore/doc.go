// Package tokenstore persists one access token per identity across process
// runs.
//
// Two backends are provided:
//   - File: one JSON record per identity under a per-user directory, with
//     atomic writes and owner-only permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
//
// A missing record is never an error: Read reports it as an empty token so
// callers can fall through to a fresh login. Corrupt or unreadable records
// do surface as errors, since silently re-authenticating would hide a real
// storage problem.
package tokenstore
