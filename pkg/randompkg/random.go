// Package randompkg provides functionality for generating random fixtures.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max inclusive.
func IntBetween(min, max int) int {
	return min + int(Intn(max-min+1))
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	k := len(set)

	for i := 0; i < n; i++ {
		_ = sb.WriteByte(set[Intn(k)]) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// Owner generates a random holder name.
func Owner() string {
	return strings.Title(String(6)) + " " + strings.Title(String(8)) //nolint:staticcheck // ASCII only.
}

// Pin generates a random numeric PIN of length n.
func Pin(n int) string {
	return fromSet(digits, n)
}

// MoneyAmountBetween generates a random amount between min and max with two decimals.
func MoneyAmountBetween(min, max int64) decimal.Decimal {
	cents := min*100 + Intn(int((max-min)*100)+1)
	return decimal.New(cents, -2)
}
