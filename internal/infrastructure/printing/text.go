package printing

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// encodeText converts UTF-8 text to the Windows-1252 bytes expected by the
// PDF core fonts. Runes outside the code page become '?'.
func encodeText(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
