package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardOptions(n int) []Option {
	opts := make([]Option, n)
	for i := range opts {
		opts[i] = Option{Title: "option", Description: "an option"}
	}
	return opts
}

func TestCheckOptions(t *testing.T) {
	checked, err := CheckOptions(standardOptions(2))
	require.Nil(t, err)
	require.Len(t, checked, 3)
	assert.Equal(t, OptionStandard, checked[0].OptionType)
	assert.Equal(t, OptionStandard, checked[1].OptionType)
	assert.Equal(t, OptionNone, checked[2].OptionType)
	assert.Equal(t, uint32(2), checked[2].Index)
	assert.Equal(t, NoneOptionTitle, checked[2].Title)
	assert.Nil(t, VerifyCheckedOptions(checked))

	checked, err = CheckOptions(standardOptions(MaxNumChoices))
	require.Nil(t, err)
	assert.Len(t, checked, MaxNumChoices+1)

	_, err = CheckOptions(standardOptions(1))
	assert.ErrorIs(t, err, ErrWrongNumberOfChoices)
	_, err = CheckOptions(standardOptions(MaxNumChoices + 1))
	assert.ErrorIs(t, err, ErrWrongNumberOfChoices)

	opts := standardOptions(2)
	opts[1].Title = "  "
	_, err = CheckOptions(opts)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestVerifyCheckedOptions(t *testing.T) {
	checked, err := CheckOptions(standardOptions(3))
	require.Nil(t, err)

	swapped := append([]CheckedOption{}, checked...)
	swapped[0], swapped[3] = swapped[3], swapped[0]
	assert.ErrorIs(t, VerifyCheckedOptions(swapped), ErrInvalidOption)

	noNone := append([]CheckedOption{}, checked...)
	noNone[3].OptionType = OptionStandard
	assert.ErrorIs(t, VerifyCheckedOptions(noNone), ErrInvalidOption)

	twoNones := append([]CheckedOption{}, checked...)
	twoNones[1].OptionType = OptionNone
	assert.ErrorIs(t, VerifyCheckedOptions(twoNones), ErrInvalidOption)

	assert.ErrorIs(t, VerifyCheckedOptions(checked[:2]), ErrWrongNumberOfChoices)
}
