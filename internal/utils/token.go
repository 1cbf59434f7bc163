package utils

import "crypto/rand"

// publicTokenAlphabet is the 62-character alphabet public link tokens are
// drawn from. Tokens are embedded in URLs, so the alphabet stays strictly
// alphanumeric.
const publicTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// PublicTokenLength is the fixed length of a public link token.
const PublicTokenLength = 32

// NewPublicToken draws PublicTokenLength characters independently and
// uniformly from the alphabet using crypto/rand. Bytes >= 248 are
// rejected and redrawn so the modulo over 62 stays unbiased
// (248 = 4 * 62 divides evenly into the byte range).
func NewPublicToken() (string, error) {
	out := make([]byte, 0, PublicTokenLength)
	buf := make([]byte, 2*PublicTokenLength)
	for len(out) < PublicTokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 248 {
				continue
			}
			out = append(out, publicTokenAlphabet[int(b)%len(publicTokenAlphabet)])
			if len(out) == PublicTokenLength {
				break
			}
		}
	}
	return string(out), nil
}
