package slug

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures Make.
type Option func(*options)

type options struct {
	separator string
	maxLength int
	suffix    int
}

// Separator sets the separator placed between words. Default "-".
func Separator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// MaxLength caps the base slug length in runes, not counting the suffix.
// Zero disables the limit.
func MaxLength(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxLength = n
		}
	}
}

// WithSuffix appends n random lowercase hex characters after a separator.
func WithSuffix(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.suffix = n
		}
	}
}

// Letters that do not decompose under NFD.
var replacements = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'Æ': "ae",
	'ø': "o",
	'Ø': "o",
	'œ': "oe",
	'Œ': "oe",
	'ł': "l",
	'Ł': "l",
	'đ': "d",
	'Đ': "d",
}

// Make converts s to a lowercase ASCII slug. Diacritics are folded, every
// run of other characters becomes a single separator and leading or
// trailing separators are trimmed.
func Make(s string, opts ...Option) string {
	o := options{separator: "-"}
	for _, opt := range opts {
		opt(&o)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range folded {
		if rep, ok := replacements[r]; ok {
			if pending && b.Len() > 0 {
				b.WriteString(o.separator)
			}
			pending = false
			b.WriteString(rep)
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteString(o.separator)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	out := b.String()
	if o.maxLength > 0 {
		if rs := []rune(out); len(rs) > o.maxLength {
			out = strings.TrimRight(string(rs[:o.maxLength]), o.separator)
		}
	}

	if o.suffix > 0 {
		suffix := randomHex(o.suffix)
		if out == "" {
			return suffix
		}
		return out + o.separator + suffix
	}
	return out
}

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}
