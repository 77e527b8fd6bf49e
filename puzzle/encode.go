package puzzle

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// Encode hides a spoiler field from casual reading. The plaintext is XORed
// with a one-byte salt and the result, prefixed by the salt, is base64
// encoded. This is obfuscation, not encryption.
//
// The salt comes from the plaintext itself so the same value always encodes
// the same way, while similar titles still end up with unrelated output.
func Encode(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return encodeWithSalt(plaintext, sum[0])
}

func encodeWithSalt(plaintext string, salt byte) string {
	buf := make([]byte, 0, len(plaintext)+1)
	buf = append(buf, salt)
	for i := 0; i < len(plaintext); i++ {
		buf = append(buf, plaintext[i]^salt)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// Decode reverses Encode. Any salt is accepted.
func Decode(encoded string) (string, error) {
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}
	if len(buf) == 0 {
		return "", errors.New("missing salt byte")
	}

	salt := buf[0]
	out := make([]byte, len(buf)-1)
	for i, b := range buf[1:] {
		out[i] = b ^ salt
	}
	return string(out), nil
}
