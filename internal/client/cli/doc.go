// Package cli is the interactive SrefHub terminal client.
//
// NewApp restores the session saved by a previous run, connects to the
// server and starts a REPL (App.Run) that blocks until the user exits.
// While it runs, a background watcher pings the server and flips the
// prompt between online and offline.
//
// Voting goes through a ledger that shows the new tally immediately and
// replaces it with the server's recount once the write is accepted.
package cli
