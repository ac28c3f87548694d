package callflow

import "strings"

var phoneNumberCleaner = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhoneNumber rewrites raw user input into a canonical dial string:
// a leading + followed only by digits, at most 16 characters. Formatting
// punctuation (spaces, hyphens, parentheses, periods) is stripped first.
// Domestic numbers starting with 0 and exactly 10 digits long are rewritten
// to the +33 country code. The second return value reports whether the
// input was accepted.
func NormalizePhoneNumber(raw string) (string, bool) {
	cleaned := phoneNumberCleaner.Replace(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(cleaned, "+") && allDigits(cleaned[1:]) && len(cleaned) > 1 && len(cleaned) <= 16:
		return cleaned, true
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10 && allDigits(cleaned):
		return "+33" + cleaned[1:], true
	case len(cleaned) > 0 && allDigits(cleaned) && len(cleaned) <= 15:
		return "+" + cleaned, true
	default:
		return "", false
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
