package auth

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const gravatarBaseURL = "https://www.gravatar.com/avatar/"

// normalizeEmail lower-cases and trims an address so lookups are case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// gravatarURL derives a 200px, pg-rated avatar with the mystery-person fallback
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))

	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")

	return gravatarBaseURL + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
