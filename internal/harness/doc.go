// Package harness runs wager scenarios written in YAML.
//
// A scenario fixes the seed, the stake and the opening balances, then lists
// stake and play steps with the outcome each one must produce. The runner
// drives a real wager.Engine over an in-memory host, so expectations check
// the engine itself rather than restating themselves.
//
// # Scenario format
//
//	name: worked_example
//	description: "one win, then the pot rebuilds"
//	seed: "7365656431"          # hex, used by every play unless overridden
//	stake: 100                  # optional; applied by "owner" before the flow
//	accounts:
//	  alice: 1000000
//	flow:
//	  - play: alice
//	    expect:
//	      won: true
//	      balance: 1000000
//	      pot: 100
//	      nonce: 1
//	  - stake: 5                # later stakes are ignored
//	    expect:
//	      applied: false
//	final:
//	  pot: 100
//	  nonce: 1
//	  balances:
//	    alice: 1000000
//
// # Golden traces
//
// RunWithGolden compares the JSON trace of a run against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
