package voting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	// MinNumChoices counts the caller supplied options, excluding the
	// appended "none of the above" option.
	MinNumChoices = 2
	MaxNumChoices = 20

	NoneOptionTitle       = "None of the above"
	NoneOptionDescription = "None of the above"
)

type OptionType string

const (
	OptionStandard OptionType = "standard"
	OptionNone     OptionType = "none"
)

var (
	ErrWrongNumberOfChoices = errors.New("wrong number of choices")
	ErrInvalidOption        = errors.New("invalid option")
)

// Message is an action executed if the option carrying it wins.
type Message struct {
	Target  string `json:"target"`
	Payload string `json:"payload"`
}

// Option is a choice as submitted by a proposer.
type Option struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Msgs        []Message `json:"msgs,omitempty"`
}

// CheckedOption is an Option placed at a stable index of a proposal.
type CheckedOption struct {
	Index       uint32     `json:"index"`
	OptionType  OptionType `json:"option_type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Msgs        []Message  `json:"msgs,omitempty"`
}

// CheckOptions validates the proposer's options and appends the
// "none of the above" option at the end.
func CheckOptions(options []Option) ([]CheckedOption, error) {
	if len(options) < MinNumChoices || len(options) > MaxNumChoices {
		return nil, fmt.Errorf("%w: got %d, want between %d and %d",
			ErrWrongNumberOfChoices, len(options), MinNumChoices, MaxNumChoices)
	}

	checked := make([]CheckedOption, 0, len(options)+1)
	for i, opt := range options {
		if strings.TrimSpace(opt.Title) == "" {
			return nil, fmt.Errorf("%w: option %d has an empty title", ErrInvalidOption, i)
		}
		checked = append(checked, CheckedOption{
			Index:       uint32(i),
			OptionType:  OptionStandard,
			Title:       opt.Title,
			Description: opt.Description,
			Msgs:        opt.Msgs,
		})
	}

	checked = append(checked, CheckedOption{
		Index:       uint32(len(options)),
		OptionType:  OptionNone,
		Title:       NoneOptionTitle,
		Description: NoneOptionDescription,
	})

	return checked, nil
}

// VerifyCheckedOptions re-checks the shape produced by CheckOptions:
// positional indices and exactly one None option which comes last.
func VerifyCheckedOptions(choices []CheckedOption) error {
	if len(choices) < MinNumChoices+1 || len(choices) > MaxNumChoices+1 {
		return fmt.Errorf("%w: got %d choices", ErrWrongNumberOfChoices, len(choices))
	}
	for i, c := range choices {
		if c.Index != uint32(i) {
			return fmt.Errorf("%w: choice at position %d has index %d", ErrInvalidOption, i, c.Index)
		}
	}
	nones := lo.CountBy(choices, func(c CheckedOption) bool {
		return c.OptionType == OptionNone
	})
	if nones != 1 || choices[len(choices)-1].OptionType != OptionNone {
		return fmt.Errorf("%w: expected exactly one trailing none option", ErrInvalidOption)
	}
	return nil
}
