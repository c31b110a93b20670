// Package storesrv is a reference record store for potluck clients.
//
// It serves one guest table over the PostgREST subset the client speaks:
//
//	GET    /rest/v1/{table}?select=*&order=created_at.asc   200, JSON array
//	POST   /rest/v1/{table}                                 201
//	PATCH  /rest/v1/{table}?id=eq.{id}                      204, 404 for unknown id
//	DELETE /rest/v1/{table}?id=eq.{id}                      204, 404 for unknown id
//	GET    /healthz
//	GET    /metrics                                         when a registry is given
//
// Errors are JSON objects with a "message" field. The server assigns ids
// (UUIDs) and creation times and validates payloads, but does not check name
// uniqueness; clients do that against their own cache. The apikey header is
// accepted and ignored.
//
// Storage is database/sql over SQLite (modernc.org/sqlite) or Postgres
// (pgx), chosen by the DSN passed to Open.
package storesrv
