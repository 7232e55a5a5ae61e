package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// referenceChars is the alphabet for public booking references.
const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferenceLength is the fixed length of a booking reference.
const ReferenceLength = 7

// GenerateReference creates a random 7-character booking reference, one
// uniform draw per character. Uniqueness is the caller's job: the lifecycle
// service retries on collision against existing bookings.
func GenerateReference() (string, error) {
	result := make([]byte, ReferenceLength)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return string(result), nil
}
