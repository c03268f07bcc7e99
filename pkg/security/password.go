package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const minTempPasswordLength = 8

var (
	lowerCharset = []rune("abcdefghijkmnopqrstuvwxyz")
	upperCharset = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ")
	digitCharset = []rune("23456789")

	tempPasswordCharset = append(append(append([]rune{}, lowerCharset...), upperCharset...), digitCharset...)
)

// GenerateTempPassword produces a random credential containing at least one
// lower-case letter, one upper-case letter and one digit. Ambiguous glyphs
// (0/O, 1/l/I) are excluded since the value is read from an email.
func GenerateTempPassword(length int) (string, error) {
	if length < minTempPasswordLength {
		return "", fmt.Errorf("length must be at least %d", minTempPasswordLength)
	}

	result := make([]rune, length)
	for i, set := range [][]rune{lowerCharset, upperCharset, digitCharset} {
		r, err := pick(set)
		if err != nil {
			return "", err
		}
		result[i] = r
	}
	for i := 3; i < length; i++ {
		r, err := pick(tempPasswordCharset)
		if err != nil {
			return "", err
		}
		result[i] = r
	}

	// shuffle so the guaranteed classes are not always leading
	for i := length - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		result[i], result[j] = result[j], result[i]
	}
	return string(result), nil
}

func pick(set []rune) (rune, error) {
	idx, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[idx], nil
}

func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
