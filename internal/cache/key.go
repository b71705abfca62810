package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for keying: Unicode NFKC, case folded, with
// runs of whitespace collapsed to one space and the ends trimmed.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	// Casers are stateful, so each call gets its own.
	text = cases.Fold().String(text)
	return strings.Join(strings.Fields(text), " ")
}

// Key returns the cache key for text spoken at speed. Speeds that round to the
// same tenth share a key.
func Key(text string, speed float64) string {
	data := fmt.Sprintf("%s:%.1f", Normalize(text), speed)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
