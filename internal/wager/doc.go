// Package wager implements the pot wagering state machine.
//
// A participant pays a fixed stake into a shared pot. A draw derived from
// host-supplied randomness, the participant's identity and a per-call nonce
// decides whether the participant sweeps the pot. Otherwise the pot grows.
//
// ARCHITECTURE:
//
// The Engine owns no state. Payment, Pot and Nonce live in a host-provided
// Store, balances live in the host's Ledger, and every operation runs inside
// exactly one Store.Update call. The callback computes all new values before
// writing any of them, and any error returned from it discards the whole unit.
//
// State machine:
//   - Uninitialized: Payment unset. Play fails with CONFIGURATION_ERROR.
//   - Active: Payment set. SetStake is a silent no-op from here on.
//
// CRITICAL PATTERNS:
//
// Conservation: Pot == stakes paid - payouts. Every currency movement is a
// checked operation on Amount; nothing wraps except the Nonce, which is salt.
//
// Single writer: the Engine holds no lock. Hosts serialize Update calls
// (store.Store pins one SQLite connection, testutil.MemoryStore holds a mutex).
package wager
