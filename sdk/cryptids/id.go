// Package cryptids generates short random identifiers from a crypto source.
package cryptids

import (
	"crypto/rand"
	"fmt"
)

var (
	IDAlphabet = "bcdfghjklmnpqrstvwxyZBCDFGHJKLMNPQRSTVWXYZ0123456789"
	IDLength   = 18
)

// GenerateID creates a random string using the default alphabet and length.
func GenerateID() (string, error) {
	return generateID(IDAlphabet, IDLength)
}

// GenerateCustomID creates a random string with the given alphabet and size.
func GenerateCustomID(alphabet string, size int) (string, error) {
	return generateID(alphabet, size)
}

func generateID(alphabet string, size int) (string, error) {
	if len(alphabet) < 2 {
		return "", fmt.Errorf("alphabet must contain at least 2 characters")
	}
	if size < 1 {
		return "", fmt.Errorf("size must be at least 1")
	}

	// Mask to the closest power of two so modulo bias stays out of
	// the character distribution.
	mask := 1
	for mask < len(alphabet) {
		mask = (mask << 1) | 1
	}

	step := int(float64(size) * 1.6)
	if step < size {
		step = size
	}

	id := make([]byte, size)
	buf := make([]byte, step)

	idIndex := 0
	for idIndex < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for i := 0; i < len(buf) && idIndex < size; i++ {
			alphabetIndex := int(buf[i]) & mask
			if alphabetIndex >= len(alphabet) {
				continue
			}
			id[idIndex] = alphabet[alphabetIndex]
			idIndex++
		}
	}

	return string(id), nil
}
