// Package client is the terminal client's connection to the catalog server.
//
// GRPCClient manages the connection, attaches the access token to every
// non-public call, refreshes an expired token once and retries, bounds each
// call with the configured request timeout and maps gRPC statuses back to
// the sentinels in internal/common so callers can use errors.Is.
//
// GRPCClient also satisfies ledger.Gateway, which is how the vote ledger
// reaches the server.
package client
