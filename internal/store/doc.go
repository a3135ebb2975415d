// Package store provides the SQLite-backed host for the wager engine.
//
// One database holds everything the engine touches:
//   - wager_state: the single Payment / Pot / Nonce row
//   - accounts: participant balances (the Ledger)
//   - plays: append-only journal of completed plays
//
// # Critical Patterns
//
// Atomic units:
//   - Store.Update runs the callback in one sql.Tx
//   - Any error from the callback rolls back every write, journal included
//
// Single writer:
//   - The pool is pinned to one connection, so units never interleave
//   - This is the host-side serialization the engine relies on
//
// Deterministic reads:
//   - Journal queries ORDER BY seq ASC
//
// # Amounts
//
// SQLite integers are signed 64-bit, so balances, payment, pot and nonce
// are stored as base-10 TEXT and parsed with wager.ParseAmount on read.
//
// # Pragmas
//
// journal_mode=WAL, synchronous=NORMAL, busy_timeout=5000, foreign_keys=ON.
package store
