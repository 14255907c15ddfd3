// Package identity implements the stock-keeping identifier rules shared by the
// whole catalog: product codes, IWASKU derivation and variant key building.
package identity

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// CodeAlphabet is the character set product codes are drawn from. The easily
// misread letters I, L, O and U are excluded so codes survive hand
// transcription on printed labels.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ1234567890"

// CodeLength is the fixed product code length.
const CodeLength = 5

// IwaskuLength is the fixed IWASKU length: 7-char identifier prefix + product code.
const IwaskuLength = 12

const iwaskuPrefixLength = IwaskuLength - CodeLength

var (
	// ErrIdentifierTooLong is returned when a cleaned identifier does not fit
	// the fixed IWASKU prefix width. Downstream barcode and marketplace SKU
	// mapping depend on the 12-character width, so the identifier is rejected
	// rather than truncated.
	ErrIdentifierTooLong = errors.New("identifier exceeds iwasku prefix width")

	// ErrInvalidProductCode is returned when the supplied code is not a valid
	// 5-character code from the fixed alphabet.
	ErrInvalidProductCode = errors.New("invalid product code")
)

var turkishReplacer = strings.NewReplacer(
	"ı", "i", "ğ", "g", "ü", "u", "ş", "s", "ö", "o", "ç", "c",
	"İ", "I", "Ğ", "G", "Ü", "U", "Ş", "S", "Ö", "O", "Ç", "C",
)

var identifierPattern = regexp.MustCompile(`^([A-Za-z]{2,3})-(\d+)([A-Za-z]?)$`)

// RandomCode draws length characters uniformly from CodeAlphabet. The caller is
// responsible for checking uniqueness against the store.
func RandomCode(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(CodeAlphabet[rand.Intn(len(CodeAlphabet))])
	}
	return sb.String()
}

// ValidCode reports whether code is exactly CodeLength characters from CodeAlphabet.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(CodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// DeriveIwasku builds the 12-character IWASKU from a business identifier and a
// product code. The identifier is transliterated to ASCII (Turkish characters),
// stripped of hyphens and spaces, uppercased and right-padded with '0' to 7
// characters before the code is appended.
func DeriveIwasku(identifier, productCode string) (string, error) {
	if !ValidCode(productCode) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProductCode, productCode)
	}

	cleaned := turkishReplacer.Replace(identifier)
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ToUpper(cleaned)

	if len(cleaned) > iwaskuPrefixLength {
		return "", fmt.Errorf("%w: %q cleans to %d characters", ErrIdentifierTooLong, identifier, len(cleaned))
	}
	if len(cleaned) < iwaskuPrefixLength {
		cleaned += strings.Repeat("0", iwaskuPrefixLength-len(cleaned))
	}

	return cleaned + productCode, nil
}

// NormalizeIdentifier zero-pads the digit run of identifiers shaped like
// "AB-1" or "ABC-12X" to three digits ("AB-001", "ABC-012X"). Identifiers that
// do not match the pattern pass through unchanged.
func NormalizeIdentifier(identifier string) string {
	m := identifierPattern.FindStringSubmatch(identifier)
	if m == nil {
		return identifier
	}
	digits := m[2]
	for len(digits) < 3 {
		digits = "0" + digits
	}
	return m[1] + "-" + digits + m[3]
}

// BuildVariantKey joins the parent identifier, parent name and the non-empty
// axis values into the persisted human key for a variant. Degenerate input
// (everything empty) falls back to a random suffix so the key stays non-empty.
func BuildVariantKey(parentIdentifier, parentName, color, size, custom string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{parentIdentifier, parentName, color, size, custom} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "variant-" + uuid.NewString()[:8]
	}
	return strings.Join(parts, "-")
}
