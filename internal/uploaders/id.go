package uploaders

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	idPrefix     = "user_"
	suffixLen    = 3
	suffixChars  = "0123456789abcdefghijklmnopqrstuvwxyz"
	maxIDLength  = 128
	fallbackSlug = "guest"

	maxSlugLength = maxIDLength - len(idPrefix) - 1 - suffixLen
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	idPattern     = regexp.MustCompile(`^user_\S+_[0-9a-z]{3}$`)
)

// GenerateID derives a fresh uploader id from a display name. Two uploads
// under the same name get different ids.
func GenerateID(name string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	slug = strings.TrimRight(truncateSlug(slug), "_")
	if slug == "" {
		slug = fallbackSlug
	}
	return idPrefix + slug + "_" + randomSuffix()
}

// truncateSlug cuts slug to maxSlugLength bytes without splitting a rune.
func truncateSlug(slug string) string {
	if len(slug) <= maxSlugLength {
		return slug
	}
	cut := maxSlugLength
	for cut > 0 && !utf8.RuneStart(slug[cut]) {
		cut--
	}
	return slug[:cut]
}

// ValidID reports whether id has the shape GenerateID produces.
func ValidID(id string) bool {
	if len(id) > maxIDLength {
		return false
	}
	return idPattern.MatchString(id)
}

func randomSuffix() string {
	var b strings.Builder
	b.Grow(suffixLen)
	limit := big.NewInt(int64(len(suffixChars)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(err)
		}
		b.WriteByte(suffixChars[n.Int64()])
	}
	return b.String()
}
