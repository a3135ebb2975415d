package harness

import "github.com/roach88/potwager/internal/wager"

// TraceEvent records one flow step and the state it left behind.
type TraceEvent struct {
	Step    int            `json:"step"`
	Op      string         `json:"op"` // "play" or "stake"
	Caller  wager.Identity `json:"caller"`
	Value   *wager.Amount  `json:"value,omitempty"`   // stake steps
	Applied *bool          `json:"applied,omitempty"` // stake steps
	Outcome *wager.Outcome `json:"outcome,omitempty"` // successful plays
	Error   string         `json:"error,omitempty"`   // wager error code
	Pot     wager.Amount   `json:"pot"`
	Nonce   uint64         `json:"nonce"`
	Balance wager.Amount   `json:"balance"` // caller's balance
}

// FinalSnapshot is the host state after the flow.
type FinalSnapshot struct {
	Payment    wager.Amount                    `json:"payment"`
	PaymentSet bool                            `json:"payment_set"`
	Pot        wager.Amount                    `json:"pot"`
	Nonce      uint64                          `json:"nonce"`
	Balances   map[wager.Identity]wager.Amount `json:"balances"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent  `json:"trace"`
	Final  FinalSnapshot `json:"final"`
	Errors []string      `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
