package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 80

// Slugify lowercases s, folds accented Latin letters to ASCII and joins the
// remaining alphanumeric runs with hyphens. The result is empty when s has
// no ASCII letters or digits.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// SlugOr slugifies s and falls back to prefix plus a short hash of key.
func SlugOr(s, prefix, key string) string {
	if slug := Slugify(s); slug != "" {
		return slug
	}
	hash := sha256.Sum256([]byte(key))
	return prefix + "-" + hex.EncodeToString(hash[:])[:10]
}

// ItemSlug picks the article slug for an imported item.
func ItemSlug(item Item) string {
	if item.Slug != "" {
		return SlugOr(item.Slug, "post", item.GUID)
	}
	return SlugOr(item.Title, "post", item.GUID)
}
