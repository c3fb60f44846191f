// Package cli provides the interactive antiquary command-line client.
//
// It wires configuration, the on-device store, the remote backend (or its
// disabled stand-in), image upload and the session, then runs a REPL. Scans
// taken before sign-in are kept on the device and moved to the account by the
// reconciliation engine as soon as the user signs in, or on "sync".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
