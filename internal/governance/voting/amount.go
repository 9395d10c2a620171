package voting

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// amountBits bounds every Amount to the range of an unsigned 128-bit integer.
const amountBits = 128

var (
	ErrOverflow      = errors.New("amount overflow")
	ErrUnderflow     = errors.New("amount underflow")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Amount is a non-negative quantity of voting power. The zero value is zero.
type Amount struct {
	v uint256.Int
}

func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

func ZeroAmount() Amount {
	return Amount{}
}

// ParseAmount parses a base-10 unsigned integer.
func ParseAmount(s string) (Amount, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return AmountFromBig(b)
}

// AmountFromBig converts b, failing if it is negative or wider than 128 bits.
func AmountFromBig(b *big.Int) (Amount, error) {
	if b.Sign() < 0 {
		return Amount{}, ErrUnderflow
	}
	if b.BitLen() > amountBits {
		return Amount{}, ErrOverflow
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, ErrOverflow
	}
	return Amount{v: *v}, nil
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var z Amount
	if _, overflow := z.v.AddOverflow(&a.v, &b.v); overflow || z.v.BitLen() > amountBits {
		return Amount{}, ErrOverflow
	}
	return z, nil
}

// Sub returns a-b or ErrUnderflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	var z Amount
	if _, underflow := z.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrUnderflow
	}
	return z, nil
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Equal(b Amount) bool {
	return a.v.Eq(&b.v)
}

func (a Amount) LT(b Amount) bool {
	return a.v.Lt(&b.v)
}

func (a Amount) GT(b Amount) bool {
	return a.v.Gt(&b.v)
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Big returns a copy of a as a big.Int.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

func (a Amount) String() string {
	return a.v.ToBig().String()
}

// SumAmounts adds all amounts with overflow checking.
func SumAmounts(amounts []Amount) (Amount, error) {
	total := ZeroAmount()
	for _, amount := range amounts {
		var err error
		if total, err = total.Add(amount); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// MarshalJSON encodes the amount as a decimal string so that values beyond
// 2^53 survive JSON consumers.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
