package voting

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// DecimalPlaces is the fixed number of fractional digits carried by Decimal.
const DecimalPlaces = 18

var (
	decimalFractional = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalPlaces), nil)

	ErrInvalidDecimal = errors.New("invalid decimal")
)

// Decimal is an unsigned fixed-point number with 18 fractional digits,
// stored as its integer atomics (value * 10^18). All arithmetic is integer
// arithmetic so results are identical on every node.
type Decimal struct {
	atomics Amount
}

func DecimalOne() Decimal {
	return Decimal{atomics: mustAmountFromBig(decimalFractional)}
}

func DecimalZero() Decimal {
	return Decimal{}
}

// DecimalPercent returns p/100.
func DecimalPercent(p uint64) Decimal {
	atomics := new(big.Int).Mul(new(big.Int).SetUint64(p), new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalPlaces-2), nil))
	return Decimal{atomics: mustAmountFromBig(atomics)}
}

// DecimalFromRatio returns num/den rounded down to 18 places.
func DecimalFromRatio(num, den uint64) (Decimal, error) {
	if den == 0 {
		return Decimal{}, fmt.Errorf("%w: zero denominator", ErrInvalidDecimal)
	}
	atomics := new(big.Int).Mul(new(big.Int).SetUint64(num), decimalFractional)
	atomics.Quo(atomics, new(big.Int).SetUint64(den))
	a, err := AmountFromBig(atomics)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %v", ErrInvalidDecimal, err)
	}
	return Decimal{atomics: a}, nil
}

// ParseDecimal parses strings such as "1", "0.5" or "0.000000000000000001".
// More than 18 fractional digits are rejected rather than rounded.
func ParseDecimal(s string) (Decimal, error) {
	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
		if frac == "" {
			return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
		}
	}
	if whole == "" || !isDigits(whole) || !isDigits(frac) || len(frac) > DecimalPlaces {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}

	digits := whole + frac + strings.Repeat("0", DecimalPlaces-len(frac))
	atomics, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	a, err := AmountFromBig(atomics)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return Decimal{atomics: a}, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (d Decimal) IsZero() bool {
	return d.atomics.IsZero()
}

func (d Decimal) Cmp(o Decimal) int {
	return d.atomics.Cmp(o.atomics)
}

// Atomics returns value * 10^18.
func (d Decimal) Atomics() Amount {
	return d.atomics
}

// MulCeil returns ceil(a * d).
func (d Decimal) MulCeil(a Amount) (Amount, error) {
	product := new(big.Int).Mul(a.Big(), d.atomics.Big())
	quo, rem := new(big.Int).QuoRem(product, decimalFractional, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return AmountFromBig(quo)
}

func (d Decimal) String() string {
	b := d.atomics.Big()
	quo, rem := new(big.Int).QuoRem(b, decimalFractional, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := rem.String()
	frac = strings.Repeat("0", DecimalPlaces-len(frac)) + frac
	return quo.String() + "." + strings.TrimRight(frac, "0")
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDecimal, err)
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func mustAmountFromBig(b *big.Int) Amount {
	a, err := AmountFromBig(b)
	if err != nil {
		panic(err)
	}
	return a
}
