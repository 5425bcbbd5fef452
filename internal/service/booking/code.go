package booking

import (
	"crypto/rand"

	"github.com/Domenick1991/skybooking/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Bytes at or above this bound are redrawn so every symbol is equally likely.
const codeByteBound = 256 - 256%len(codeAlphabet)

func generateCode() (string, error) {
	code := make([]byte, 0, domain.BookingCodeLength)
	buf := make([]byte, domain.BookingCodeLength)
	for len(code) < domain.BookingCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= codeByteBound {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == domain.BookingCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
