package validation

import "strings"

const (
	cpfLength  = 11
	cnpjLength = 14
)

var documentSeparators = strings.NewReplacer(".", "", "-", "", "/", "", " ", "")

// NormalizeDocument trims the payer document as it is stored.
func NormalizeDocument(doc string) string {
	return strings.TrimSpace(doc)
}

// ValidateDocument reports whether doc is a valid CPF (11 digits) or CNPJ
// (14 digits). Punctuation is ignored; check digits must match.
func ValidateDocument(doc string) bool {
	digits := documentSeparators.Replace(strings.TrimSpace(doc))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}

	switch len(digits) {
	case cpfLength:
		return isValidCPF(digits)
	case cnpjLength:
		return isValidCNPJ(digits)
	default:
		return false
	}
}

func isValidCPF(digits string) bool {
	if repeatedDigits(digits) {
		return false
	}
	d := toInts(digits)

	first := cpfCheckDigit(d[:9], 10)
	if first != d[9] {
		return false
	}
	return cpfCheckDigit(d[:10], 11) == d[10]
}

func cpfCheckDigit(d []int, startWeight int) int {
	sum := 0
	for i, v := range d {
		sum += v * (startWeight - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func isValidCNPJ(digits string) bool {
	if repeatedDigits(digits) {
		return false
	}
	d := toInts(digits)

	if cnpjCheckDigit(d[:12], cnpjFirstWeights) != d[12] {
		return false
	}
	return cnpjCheckDigit(d[:13], cnpjSecondWeights) == d[13]
}

func cnpjCheckDigit(d []int, weights []int) int {
	sum := 0
	for i, v := range d {
		sum += v * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func repeatedDigits(digits string) bool {
	return strings.Count(digits, digits[:1]) == len(digits)
}

func toInts(digits string) []int {
	out := make([]int, len(digits))
	for i, r := range digits {
		out[i] = int(r - '0')
	}
	return out
}
