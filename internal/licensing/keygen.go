package licensing

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const keyRandLen = 16 // 16 bytes = 32 hex chars, grouped 8-8-8-8

// GenerateKey creates a new license key string: the uppercased brand slug
// followed by four groups of eight uppercase hex characters drawn from
// crypto/rand, e.g. "ACME-3F9A1C2B-8D7E6F5D-4C3B2A19-08F7E6D5".
func GenerateKey(brandSlug string) (string, error) {
	buf := make([]byte, keyRandLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("licensing.GenerateKey: %w", err)
	}

	hexStr := strings.ToUpper(fmt.Sprintf("%x", buf))

	return fmt.Sprintf("%s-%s-%s-%s-%s",
		strings.ToUpper(brandSlug),
		hexStr[0:8], hexStr[8:16], hexStr[16:24], hexStr[24:32],
	), nil
}
