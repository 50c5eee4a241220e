package docs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"archgen/internal/docs"
)

func TestDecodeText_ValidUTF8(t *testing.T) {
	assert.Equal(t, "héllo wörld", docs.DecodeText([]byte("héllo wörld")))
}

func TestDecodeText_InvalidUTF8FallsBackToLatin1(t *testing.T) {
	// 0xE9 is é in ISO-8859-1 but an invalid standalone byte in UTF-8.
	got := docs.DecodeText([]byte{'c', 'a', 'f', 0xE9})
	assert.Equal(t, "café", got)
}

func TestDecodeText_Empty(t *testing.T) {
	assert.Equal(t, "", docs.DecodeText(nil))
}
