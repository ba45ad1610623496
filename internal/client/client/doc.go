// Package client contains the client-side transport for gophjournal.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the identity calls, the owner-scoped entry store calls and the archive
//     export.
//  2. A concrete gRPC implementation (see GRPCClient) that injects the access
//     token via an interceptor, transparently rotates expired tokens with the
//     refresh token, and maps gRPC status codes back to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     SQLite file that keeps the session handle between runs.
//
// # Error Handling
//
// Transport conditions are exposed as ErrUnavailable and ErrUnauthorized.
// Identity and ownership failures are mapped to the shared sentinels in
// internal/common so callers can match them with errors.Is.
package client
