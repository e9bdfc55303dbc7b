package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomString(length int) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(alphanumeric)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = alphanumeric[num.Int64()]
	}

	return string(result)
}

func GenerateReferralCode() string {
	code := strings.ToUpper(GenerateRandomString(ReferralCodeLength))

	// Ensure no confusing characters (0, O, I, L)
	code = strings.ReplaceAll(code, "0", "2")
	code = strings.ReplaceAll(code, "O", "3")
	code = strings.ReplaceAll(code, "I", "4")
	code = strings.ReplaceAll(code, "L", "5")

	return code
}
