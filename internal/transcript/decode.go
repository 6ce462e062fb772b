package transcript

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode turns raw export bytes into text. Invalid UTF-8 sequences are dropped
// and a leading byte-order mark is removed. It never fails.
func Decode(raw []byte) string {
	text := strings.ToValidUTF8(string(raw), "")

	out, _, err := transform.String(unicode.BOMOverride(unicode.UTF8.NewDecoder()), text)
	if err != nil {
		return text
	}
	return out
}
