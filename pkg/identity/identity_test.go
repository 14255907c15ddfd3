package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := RandomCode(CodeLength)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.Contains(t, CodeAlphabet, string(r))
		}
		seen[code] = true
	}
	// 200 uniform draws from the 5-char keyspace should not all collide
	assert.Greater(t, len(seen), 1)
}

func TestValidCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "Valid code", code: "XK9P2", want: true},
		{name: "Too short", code: "XK9P", want: false},
		{name: "Too long", code: "XK9P2A", want: false},
		{name: "Excluded letter O", code: "XKOP2", want: false},
		{name: "Excluded letter I", code: "XKIP2", want: false},
		{name: "Lowercase", code: "xk9p2", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCode(tt.code))
		})
	}
}

func TestDeriveIwasku(t *testing.T) {
	iwasku, err := DeriveIwasku("AB-001", "XK9P2")
	require.NoError(t, err)
	assert.Equal(t, "AB00100XK9P2", iwasku)
	assert.Len(t, iwasku, IwaskuLength)
	assert.Equal(t, "XK9P2", iwasku[7:])
}

func TestDeriveIwasku_TurkishCharacters(t *testing.T) {
	iwasku, err := DeriveIwasku("ÇĞ-01ı", "ABCDE")
	require.NoError(t, err)
	assert.Equal(t, "CG01I00ABCDE", iwasku)
}

func TestDeriveIwasku_StripsSpaces(t *testing.T) {
	iwasku, err := DeriveIwasku("ab 12", "ABCDE")
	require.NoError(t, err)
	assert.Equal(t, "AB12000ABCDE", iwasku)
}

func TestDeriveIwasku_IdentifierTooLong(t *testing.T) {
	_, err := DeriveIwasku("ABCD-12345", "XK9P2")
	assert.ErrorIs(t, err, ErrIdentifierTooLong)
}

func TestDeriveIwasku_InvalidCode(t *testing.T) {
	_, err := DeriveIwasku("AB-001", "bad")
	assert.ErrorIs(t, err, ErrInvalidProductCode)
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{name: "Single digit padded", identifier: "AB-1", want: "AB-001"},
		{name: "Two digits padded", identifier: "AB-12", want: "AB-012"},
		{name: "Three digits unchanged", identifier: "AB-123", want: "AB-123"},
		{name: "More than three digits unchanged", identifier: "AB-1234", want: "AB-1234"},
		{name: "Trailing letter kept", identifier: "ABC-7X", want: "ABC-007X"},
		{name: "Non-matching passes through", identifier: "PRODUCT-X", want: "PRODUCT-X"},
		{name: "No hyphen passes through", identifier: "AB001", want: "AB001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdentifier(tt.identifier))
		})
	}
}

func TestBuildVariantKey(t *testing.T) {
	key := BuildVariantKey("AB-001", "Rug", "Red", "M", "Fringed")
	assert.Equal(t, "AB-001-Rug-Red-M-Fringed", key)

	key = BuildVariantKey("AB-001", "Rug", "Red", "M", "")
	assert.Equal(t, "AB-001-Rug-Red-M", key)
}

func TestBuildVariantKey_DegenerateInput(t *testing.T) {
	key := BuildVariantKey("", "", "", "", "")
	assert.True(t, strings.HasPrefix(key, "variant-"))
	assert.Greater(t, len(key), len("variant-"))
}
