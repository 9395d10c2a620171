package voting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidExpiration = errors.New("invalid expiration")
	ErrInvalidDuration   = errors.New("invalid duration")
)

// Block is the host chain's view of "now" passed into every operation.
type Block struct {
	Height uint64    `json:"height"`
	Time   time.Time `json:"time"`
}

type ExpirationKind string

const (
	ExpiresNever    ExpirationKind = "never"
	ExpiresAtHeight ExpirationKind = "at_height"
	ExpiresAtTime   ExpirationKind = "at_time"
)

// Expiration is a height or time boundary. The zero value never expires.
type Expiration struct {
	Kind   ExpirationKind `json:"kind"`
	Height uint64         `json:"height,omitempty"`
	Time   time.Time      `json:"time,omitempty"`
}

func Never() Expiration {
	return Expiration{Kind: ExpiresNever}
}

func AtHeight(h uint64) Expiration {
	return Expiration{Kind: ExpiresAtHeight, Height: h}
}

func AtTime(t time.Time) Expiration {
	return Expiration{Kind: ExpiresAtTime, Time: t.UTC()}
}

// IsExpired reports whether block is at or past the boundary.
func (e Expiration) IsExpired(block Block) bool {
	switch e.Kind {
	case ExpiresAtHeight:
		return block.Height >= e.Height
	case ExpiresAtTime:
		return !block.Time.Before(e.Time)
	default:
		return false
	}
}

// Add extends the expiration by d. Both must measure the same unit.
func (e Expiration) Add(d Duration) (Expiration, error) {
	switch {
	case e.Kind == ExpiresAtHeight && d.Kind == DurationHeight:
		return AtHeight(e.Height + d.Height), nil
	case e.Kind == ExpiresAtTime && d.Kind == DurationTime:
		return AtTime(e.Time.Add(d.Time)), nil
	case e.Kind == ExpiresNever || e.Kind == "":
		return Never(), nil
	default:
		return Expiration{}, fmt.Errorf("%w: cannot add %s duration to %s expiration", ErrInvalidExpiration, d.Kind, e.Kind)
	}
}

func (e Expiration) String() string {
	switch e.Kind {
	case ExpiresAtHeight:
		return fmt.Sprintf("height %d", e.Height)
	case ExpiresAtTime:
		return "time " + e.Time.Format(time.RFC3339)
	default:
		return "never"
	}
}

func (e Expiration) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ExpiresAtHeight:
		return json.Marshal(struct {
			Kind   ExpirationKind `json:"kind"`
			Height uint64         `json:"height"`
		}{e.Kind, e.Height})
	case ExpiresAtTime:
		return json.Marshal(struct {
			Kind ExpirationKind `json:"kind"`
			Time time.Time      `json:"time"`
		}{e.Kind, e.Time})
	default:
		return json.Marshal(struct {
			Kind ExpirationKind `json:"kind"`
		}{ExpiresNever})
	}
}

type DurationKind string

const (
	DurationHeight DurationKind = "height"
	DurationTime   DurationKind = "time"
)

// Duration is a span measured in blocks or wall time.
type Duration struct {
	Kind   DurationKind  `json:"kind"`
	Height uint64        `json:"height,omitempty"`
	Time   time.Duration `json:"time,omitempty"`
}

func Blocks(n uint64) Duration {
	return Duration{Kind: DurationHeight, Height: n}
}

func Time(d time.Duration) Duration {
	return Duration{Kind: DurationTime, Time: d}
}

// ParseDuration reads "<n>" or "<n>blocks" as a block count and anything
// time.ParseDuration accepts as wall time.
func ParseDuration(s string) (Duration, error) {
	if n, err := strconv.ParseUint(strings.TrimSuffix(s, "blocks"), 10, 64); err == nil {
		return Blocks(n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return Time(d), nil
}

func (d Duration) Validate() error {
	switch d.Kind {
	case DurationHeight:
		if d.Height == 0 {
			return fmt.Errorf("%w: zero blocks", ErrInvalidDuration)
		}
	case DurationTime:
		if d.Time <= 0 {
			return fmt.Errorf("%w: non-positive time %s", ErrInvalidDuration, d.Time)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidDuration, d.Kind)
	}
	return nil
}

// After returns the expiration d past block.
func (d Duration) After(block Block) Expiration {
	if d.Kind == DurationTime {
		return AtTime(block.Time.Add(d.Time))
	}
	return AtHeight(block.Height + d.Height)
}

// SameUnit reports whether d and o are both heights or both times.
func (d Duration) SameUnit(o Duration) bool {
	return d.Kind == o.Kind
}

// Less compares two durations of the same unit.
func (d Duration) Less(o Duration) bool {
	if d.Kind == DurationTime {
		return d.Time < o.Time
	}
	return d.Height < o.Height
}

func (d Duration) String() string {
	if d.Kind == DurationTime {
		return d.Time.String()
	}
	return fmt.Sprintf("%dblocks", d.Height)
}
