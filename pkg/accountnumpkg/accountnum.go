// Package accountnumpkg generates and validates human-typeable account numbers.
//
// An account number is Length decimal digits. The leading digit is never zero
// and the trailing digit is a Luhn check digit, so most single-digit typos and
// adjacent swaps are caught before a lookup.
package accountnumpkg

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/theplant/luhn"
)

// Length is the number of digits in an account number.
const Length = 10

// bodyMin and bodySpan bound the Length-1 digit body: [10^8, 10^9).
var (
	bodyMin  = big.NewInt(100_000_000)
	bodySpan = big.NewInt(900_000_000)
)

// Generate returns a random account number.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, bodySpan)
	if err != nil {
		return "", err
	}

	body := n.Add(n, bodyMin).Int64()

	return strconv.FormatInt(body, 10) + strconv.Itoa(checkDigit(body)), nil
}

// Valid reports whether s is a well formed account number.
func Valid(s string) bool {
	if len(s) != Length || s[0] == '0' {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	body, err := strconv.ParseInt(s[:Length-1], 10, 64)
	if err != nil {
		return false
	}

	return checkDigit(body) == int(s[Length-1]-'0')
}

// checkDigit returns the Luhn check digit of a 9 digit body.
//
// luhn.Valid takes an int, so the body is checked in two halves that fit in
// 32 bits: the low 5 digits and the high 4 digits followed by a 0, which keeps
// the high digits at the doubling positions they have in the full number.
// The digits completing each half add up to the digit completing the whole.
func checkDigit(body int64) int {
	high := int(body / 100_000)
	low := int(body % 100_000)

	return (complement(high*10) + complement(low)) % 10
}

// complement returns the digit d that makes n*10+d pass the Luhn check.
func complement(n int) int {
	for d := 0; d < 9; d++ {
		if luhn.Valid(n*10 + d) {
			return d
		}
	}

	return 9
}
