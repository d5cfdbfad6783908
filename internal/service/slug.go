package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

const slugSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Slugify lowercases the title, collapses every non-alphanumeric run into a
// single hyphen, and appends the creation timestamp plus a short random
// suffix. The timestamp alone is not unique when two submissions land in the
// same second, hence the extra suffix.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "karya"
	}

	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = slugSuffixAlphabet[rand.Intn(len(slugSuffixAlphabet))]
	}
	return fmt.Sprintf("%s-%d-%s", base, time.Now().Unix(), suffix)
}
