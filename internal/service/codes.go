package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	bookingCodePrefix   = "PK-"
	codeSuffixLength    = 6
	maxBookingCodeTries = 5
	base36Alphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CodeGenerator produces candidate booking codes.
type CodeGenerator func() string

// NewBookingCode returns "PK-" followed by six uppercase base-36 characters.
func NewBookingCode() string {
	return bookingCodePrefix + randomBase36(codeSuffixLength)
}

// NewTransactionID returns "TXN-<unix ms>-<six uppercase base-36 characters>".
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), randomBase36(codeSuffixLength))
}

func randomBase36(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		sb.WriteByte(base36Alphabet[idx.Int64()])
	}
	return sb.String()
}
