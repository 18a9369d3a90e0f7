package models

import "strings"

// CPFLength is the number of digits of a Brazilian taxpayer id.
const CPFLength = 11

// NormalizeCPF strips every non-digit from raw and reports whether the
// remaining digits form an acceptable CPF: exactly eleven digits, not all equal.
func NormalizeCPF(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(CPFLength)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != CPFLength {
		return digits, false
	}
	if strings.Count(digits, digits[:1]) == CPFLength {
		return digits, false
	}
	return digits, true
}
