package dsl

import "strings"

// NormalizeColor expands a 3-digit hex color to 6 digits and lowercases
// the result. It returns false when the token is not a valid hex color.
func NormalizeColor(tok string) (string, bool) {
	if !strings.HasPrefix(tok, "#") {
		return "", false
	}
	hex := strings.ToLower(tok[1:])
	switch len(hex) {
	case 3:
		var b strings.Builder
		b.WriteByte('#')
		for i := 0; i < 3; i++ {
			if !isHexDigit(hex[i]) {
				return "", false
			}
			b.WriteByte(hex[i])
			b.WriteByte(hex[i])
		}
		return b.String(), true
	case 6:
		for i := 0; i < 6; i++ {
			if !isHexDigit(hex[i]) {
				return "", false
			}
		}
		return "#" + hex, true
	}
	return "", false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
