package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

func TestNonEmpty(t *testing.T) {
	got, err := validation.NonEmpty("  Widget \t")
	require.NoError(t, err)
	require.Equal(t, "Widget", got)

	_, err = validation.NonEmpty("   ")
	require.ErrorIs(t, err, validation.ErrEmpty)
	require.Equal(t, validation.KindNonEmpty, validation.KindOf(err))
	require.Equal(t, "This cannot be left empty, please try again: ", validation.RetryPrompt(err))
}

func TestUnique(t *testing.T) {
	existing := map[string]bool{"Widget": true}
	rule := validation.Unique("Name", func(v string) (bool, error) { return existing[v], nil })

	_, err := rule("Widget")
	require.ErrorIs(t, err, validation.ErrDuplicate)
	require.Equal(t, validation.KindUnique, validation.KindOf(err))
	require.Equal(t, "Name already exists", err.Error())
	require.Equal(t, "Name already exists, please try again: ", validation.RetryPrompt(err))

	got, err := rule(" Gadget ")
	require.NoError(t, err)
	require.Equal(t, "Gadget", got)

	_, err = rule("")
	require.ErrorIs(t, err, validation.ErrEmpty)
}

func TestUnique_StoreErrorIsNotFailure(t *testing.T) {
	boom := errors.New("read failed")
	rule := validation.Unique("Name", func(string) (bool, error) { return false, boom })

	_, err := rule("Widget")
	require.ErrorIs(t, err, boom)
	require.False(t, validation.IsFailure(err))
}

func TestFloat(t *testing.T) {
	cases := map[string]string{
		"1.5":    "1.50",
		" 2 ":    "2.00",
		"0.125":  "0.13",
		"-3.1":   "-3.10",
		"10.999": "11.00",
	}
	for in, want := range cases {
		got, err := validation.Float(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.String(), in)
	}

	for _, bad := range []string{"abc", "1.2.3", "1,5", "$4"} {
		_, err := validation.Float(bad)
		require.ErrorIs(t, err, validation.ErrInvalidNumber, bad)
		require.Equal(t, validation.KindFloat, validation.KindOf(err))
	}
}

func TestInt(t *testing.T) {
	got, err := validation.Int("12")
	require.NoError(t, err)
	require.Equal(t, 12, got)

	got, err = validation.Int(" -4 ")
	require.NoError(t, err)
	require.Equal(t, -4, got)

	for _, bad := range []string{"12.5", "twelve", "1e3"} {
		_, err := validation.Int(bad)
		require.ErrorIs(t, err, validation.ErrInvalidInteger, bad)
		require.Equal(t, "Invalid integer, please try again: ", validation.RetryPrompt(err))
	}
}

func TestThen(t *testing.T) {
	errNegative := errors.New("stock cannot be a negative value")
	rule := validation.Then(validation.Int, func(n int) error {
		if n < 0 {
			return validation.Reject(validation.KindRange, errNegative, "Stock cannot be a negative value, please try again: ")
		}
		return nil
	})

	_, err := rule("-1")
	require.ErrorIs(t, err, errNegative)
	require.Equal(t, "Stock cannot be a negative value, please try again: ", validation.RetryPrompt(err))

	_, err = rule("x")
	require.ErrorIs(t, err, validation.ErrInvalidInteger)

	got, err := rule("0")
	require.NoError(t, err)
	require.Equal(t, 0, got)
}

func TestMap(t *testing.T) {
	rule := validation.Map(validation.Int, func(n int) string { return string(rune('a' + n)) })
	got, err := rule("2")
	require.NoError(t, err)
	require.Equal(t, "c", got)
}

func TestYesNo(t *testing.T) {
	for in, want := range map[string]bool{"Y": true, "y": true, " n ": false, "N": false} {
		got, err := validation.YesNo(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := validation.YesNo("yes")
	require.True(t, validation.IsFailure(err))
	require.Equal(t, "Please select 'Y' or 'N': ", validation.RetryPrompt(err))
}

func TestIntRange(t *testing.T) {
	rule := validation.IntRange(1, 5, "Option does not exist. Please choose a valid option: ")

	got, err := rule("5")
	require.NoError(t, err)
	require.Equal(t, 5, got)

	_, err = rule("6")
	require.Equal(t, validation.KindChoice, validation.KindOf(err))
	require.Equal(t, "Option does not exist. Please choose a valid option: ", validation.RetryPrompt(err))
}

func TestRetryPromptPlainError(t *testing.T) {
	require.Equal(t, "Boom, please try again: ", validation.RetryPrompt(errors.New("boom")))
}
