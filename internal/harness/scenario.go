package harness

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/potwager/internal/wager"
)

// Scenario is a scripted run of the wager engine.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Seed is the hex randomness every play draws from unless a step
	// overrides it.
	Seed string `yaml:"seed"`

	// Stake, when set, is applied by DefaultStaker before the flow runs.
	Stake *wager.Amount `yaml:"stake,omitempty"`

	// Nonce is the opening nonce. Defaults to zero.
	Nonce *uint64 `yaml:"nonce,omitempty"`

	// Accounts are opening balances.
	Accounts map[string]wager.Amount `yaml:"accounts,omitempty"`

	Flow []FlowStep `yaml:"flow"`

	// Final is checked after the flow.
	Final *FinalState `yaml:"final,omitempty"`
}

// DefaultStaker is the caller used for stakes that name none.
const DefaultStaker = "owner"

// FlowStep is either a play or a stake, never both.
type FlowStep struct {
	// Play is the identity calling play.
	Play string `yaml:"play,omitempty"`

	// Stake is the value passed to setStake.
	Stake *wager.Amount `yaml:"stake,omitempty"`

	// As is the caller for a stake step. Defaults to DefaultStaker.
	As string `yaml:"as,omitempty"`

	// Seed overrides the scenario seed for this step.
	Seed string `yaml:"seed,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Op returns "play" or "stake".
func (s FlowStep) Op() string {
	if s.Stake != nil {
		return opStake
	}
	return opPlay
}

const (
	opPlay  = "play"
	opStake = "stake"
)

// Expect lists what a step must produce. Unset fields are not checked.
type Expect struct {
	Won     *bool         `yaml:"won,omitempty"`
	Applied *bool         `yaml:"applied,omitempty"`
	Error   string        `yaml:"error,omitempty"` // wager error code
	Pot     *wager.Amount `yaml:"pot,omitempty"`
	Balance *wager.Amount `yaml:"balance,omitempty"` // caller's balance
	Nonce   *uint64       `yaml:"nonce,omitempty"`
}

// FinalState is checked once the flow has run.
type FinalState struct {
	Pot      *wager.Amount           `yaml:"pot,omitempty"`
	Nonce    *uint64                 `yaml:"nonce,omitempty"`
	Balances map[string]wager.Amount `yaml:"balances,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if _, err := hex.DecodeString(s.Seed); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for id := range s.Accounts {
		if !wager.NewIdentity(id).Valid() {
			return fmt.Errorf("accounts: identity %q is empty", id)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step FlowStep) error {
	switch {
	case step.Play != "" && step.Stake != nil:
		return fmt.Errorf("flow[%d]: play and stake are mutually exclusive", i)
	case step.Play == "" && step.Stake == nil:
		return fmt.Errorf("flow[%d]: one of play or stake is required", i)
	case step.Play != "" && step.As != "":
		return fmt.Errorf("flow[%d]: as only applies to stake steps", i)
	}

	if step.Seed != "" {
		if _, err := hex.DecodeString(step.Seed); err != nil {
			return fmt.Errorf("flow[%d].seed: %w", i, err)
		}
	}

	if e := step.Expect; e != nil {
		if step.Stake != nil && e.Won != nil {
			return fmt.Errorf("flow[%d].expect: won only applies to play steps", i)
		}
		if step.Play != "" && e.Applied != nil {
			return fmt.Errorf("flow[%d].expect: applied only applies to stake steps", i)
		}
		if e.Error != "" && !knownCode(wager.ErrorCode(e.Error)) {
			return fmt.Errorf("flow[%d].expect: unknown error code %q", i, e.Error)
		}
	}
	return nil
}

func knownCode(code wager.ErrorCode) bool {
	switch code {
	case wager.ErrCodeConfiguration,
		wager.ErrCodeInsufficientFunds,
		wager.ErrCodeArithmeticOverflow,
		wager.ErrCodeUnauthenticated:
		return true
	}
	return false
}
