package domain

import "strings"

// DefaultCallingCode is the region prefix applied to bare national numbers.
const DefaultCallingCode = "91"

// NationalNumberLength is the digit count treated as a national number without a calling code.
const NationalNumberLength = 10

// NormalizeAddress strips everything except ASCII digits and '+', then applies the
// calling code rule: numbers already starting with callingCode get a '+', bare
// national numbers get '+'+callingCode, any other shape is returned as stripped.
func NormalizeAddress(destination, callingCode string) string {
	if callingCode = strings.TrimPrefix(strings.TrimSpace(callingCode), "+"); callingCode == "" {
		callingCode = DefaultCallingCode
	}

	var b strings.Builder
	b.Grow(len(destination))
	for i := 0; i < len(destination); i++ {
		ch := destination[i]
		if (ch >= '0' && ch <= '9') || ch == '+' {
			b.WriteByte(ch)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, callingCode) {
		return "+" + cleaned
	}
	if len(cleaned) == NationalNumberLength {
		return "+" + callingCode + cleaned
	}
	return cleaned
}
