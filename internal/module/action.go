package module

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Action is one low-level call produced by a command.
type Action struct {
	To    common.Address
	Data  []byte
	Value *big.Int // nil when no value is sent
}

type actionJSON struct {
	To    string        `json:"to" yaml:"to"`
	Data  hexutil.Bytes `json:"data" yaml:"data"`
	Value string        `json:"value,omitempty" yaml:"value,omitempty"`
}

func (a Action) wire() actionJSON {
	w := actionJSON{To: a.To.Hex(), Data: a.Data}
	if a.Value != nil {
		w.Value = a.Value.String()
	}
	return w
}

// MarshalJSON renders the target EIP-55 checksummed, data as hex and value
// as a decimal string.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.wire())
}

// UnmarshalJSON parses the MarshalJSON form.
func (a *Action) UnmarshalJSON(b []byte) error {
	var w actionJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !common.IsHexAddress(w.To) {
		return fmt.Errorf("invalid action target %q", w.To)
	}
	a.To, a.Data, a.Value = common.HexToAddress(w.To), w.Data, nil
	if w.Value != "" {
		v, ok := new(big.Int).SetString(w.Value, 0)
		if !ok {
			return fmt.Errorf("invalid action value %q", w.Value)
		}
		a.Value = v
	}
	return nil
}

// MarshalYAML renders the same fields as MarshalJSON.
func (a Action) MarshalYAML() (any, error) {
	return a.wire(), nil
}
