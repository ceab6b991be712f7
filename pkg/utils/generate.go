package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateCode returns a numeric confirmation code of the given length.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}
