package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("maria_ivanova"))
	assert.True(t, ValidateUsername("abc"))
	assert.False(t, ValidateUsername("ab"))
	assert.False(t, ValidateUsername("has spaces"))
	assert.False(t, ValidateUsername("way_too_long_username_here"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("student@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@school.co.uk"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+79161234567"))
	assert.True(t, ValidatePhone("4951234567"))
	assert.False(t, ValidatePhone("123"))
	assert.False(t, ValidatePhone("+7 916 123"))
}

func TestValidateCurrency(t *testing.T) {
	assert.True(t, ValidateCurrency("RUB"))
	assert.True(t, ValidateCurrency("USD"))
	assert.False(t, ValidateCurrency("rub"))
	assert.False(t, ValidateCurrency("RUBL"))
}

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, ValidatePassword("Secure123"))

	problems := ValidatePassword("short")
	assert.NotEmpty(t, problems)

	assert.NotEmpty(t, ValidatePassword("alllowercase1"))
	assert.NotEmpty(t, ValidatePassword("ALLUPPERCASE1"))
	assert.NotEmpty(t, ValidatePassword("NoDigitsHere"))
}
