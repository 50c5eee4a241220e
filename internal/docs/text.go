package docs

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText decodes file bytes as UTF-8, falling back to ISO-8859-1 for
// files with invalid sequences. Malformed encodings never abort a run.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// ISO-8859-1 maps every byte, so this is unreachable in
		// practice; drop invalid bytes rather than fail.
		return string(bytes.ToValidUTF8(data, nil))
	}
	return string(out)
}
