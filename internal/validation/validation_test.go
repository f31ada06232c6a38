package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  ", 100))
	assert.Equal(t, "abc", SanitizeString("abc\x00", 100))
	assert.Equal(t, "abcde", SanitizeString("abcdefgh", 5))
}

func TestRequired(t *testing.T) {
	assert.Nil(t, Required("field", "value")())
	assert.NotNil(t, Required("field", "")())
	assert.NotNil(t, Required("field", "   ")())
}

func TestPositive(t *testing.T) {
	assert.Nil(t, Positive("amount", 0.01)())
	assert.NotNil(t, Positive("amount", 0)())
	assert.NotNil(t, Positive("amount", -5)())
}

func TestMaxLength(t *testing.T) {
	assert.Nil(t, MaxLength("field", "short", 10)())
	assert.NotNil(t, MaxLength("field", strings.Repeat("x", 11), 10)())
}

func TestOneOf(t *testing.T) {
	allowed := []string{"debit", "credit", "prepaid"}

	assert.Nil(t, OneOf("card_type", "debit", allowed...)())
	assert.Nil(t, OneOf("card_type", "  CREDIT ", allowed...)())
	assert.NotNil(t, OneOf("card_type", "giftcard", allowed...)())
	// Empty passes; presence is Required's job.
	assert.Nil(t, OneOf("card_type", "", allowed...)())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	errs := Validate(
		Required("merchant_type", ""),
		Positive("amount", -1),
		OneOf("card_type", "giftcard", "debit", "credit", "prepaid"),
	)

	require.Len(t, errs, 3)
	msg := errs.Error()
	assert.Contains(t, msg, "merchant_type")
	assert.Contains(t, msg, "amount")
	assert.Contains(t, msg, "card_type")
}

func TestValidateNoErrors(t *testing.T) {
	errs := Validate(
		Required("merchant_type", "grocery"),
		Positive("amount", 10),
	)
	assert.Empty(t, errs)
}
