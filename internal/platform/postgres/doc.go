// Package postgres contains the PostgreSQL implementations of the store
// interfaces and the job gateways. All implementations work through
// store.DBTX so they run equally against a pooled connection or inside a
// transaction; the job gateway methods additionally own their per-row
// transactions, since row locking is their correctness mechanism.
package postgres
