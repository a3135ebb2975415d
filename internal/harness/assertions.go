package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/potwager/internal/wager"
)

// AssertionError describes one expectation that did not hold.
type AssertionError struct {
	Step     int // -1 for the final state
	Field    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	if e.Step < 0 {
		fmt.Fprintf(&buf, "final.%s", e.Field)
	} else {
		fmt.Fprintf(&buf, "flow[%d].%s", e.Step, e.Field)
	}
	fmt.Fprintf(&buf, ": expected %s, got %s", e.Expected, e.Actual)
	return buf.String()
}

// checkStep compares a step's trace event with its expectation. A step
// without an expectation must still not fail.
func checkStep(i int, expect *Expect, event TraceEvent) []*AssertionError {
	var failures []*AssertionError
	fail := func(field string, expected, actual any) {
		failures = append(failures, &AssertionError{
			Step:     i,
			Field:    field,
			Expected: fmt.Sprint(expected),
			Actual:   fmt.Sprint(actual),
		})
	}

	wantErr := ""
	if expect != nil {
		wantErr = expect.Error
	}
	if event.Error != wantErr {
		fail("error", describeCode(wantErr), describeCode(event.Error))
	}
	if expect == nil {
		return failures
	}

	if expect.Won != nil {
		switch {
		case event.Outcome == nil:
			fail("won", *expect.Won, "no outcome")
		case event.Outcome.Won != *expect.Won:
			fail("won", *expect.Won, event.Outcome.Won)
		}
	}
	if expect.Applied != nil {
		switch {
		case event.Applied == nil:
			fail("applied", *expect.Applied, "no result")
		case *event.Applied != *expect.Applied:
			fail("applied", *expect.Applied, *event.Applied)
		}
	}
	if expect.Pot != nil && *expect.Pot != event.Pot {
		fail("pot", *expect.Pot, event.Pot)
	}
	if expect.Balance != nil && *expect.Balance != event.Balance {
		fail("balance", *expect.Balance, event.Balance)
	}
	if expect.Nonce != nil && *expect.Nonce != event.Nonce {
		fail("nonce", *expect.Nonce, event.Nonce)
	}
	return failures
}

func describeCode(code string) string {
	if code == "" {
		return "no error"
	}
	return code
}

// checkFinal compares the end state with the scenario's final block.
// Balances are a subset match: unlisted accounts are not checked.
func checkFinal(want *FinalState, got FinalSnapshot) []*AssertionError {
	if want == nil {
		return nil
	}

	var failures []*AssertionError
	fail := func(field string, expected, actual any) {
		failures = append(failures, &AssertionError{
			Step:     -1,
			Field:    field,
			Expected: fmt.Sprint(expected),
			Actual:   fmt.Sprint(actual),
		})
	}

	if want.Pot != nil && *want.Pot != got.Pot {
		fail("pot", *want.Pot, got.Pot)
	}
	if want.Nonce != nil && *want.Nonce != got.Nonce {
		fail("nonce", *want.Nonce, got.Nonce)
	}

	ids := make([]string, 0, len(want.Balances))
	for id := range want.Balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		expected := want.Balances[id]
		actual := got.Balances[wager.NewIdentity(id)]
		if actual != expected {
			fail("balances."+id, expected, actual)
		}
	}
	return failures
}
