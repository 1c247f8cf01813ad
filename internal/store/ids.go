package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// NewID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// Seed files may omit ids; templates get "tpl" and groups "grp".
func NewID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}
