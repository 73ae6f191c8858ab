package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "corto", TruncateString("corto", 10))
	assert.Equal(t, "abc...", TruncateString("abcdef", 3))
	// rune-based, so multi-byte names truncate cleanly
	assert.Equal(t, "ñoñ...", TruncateString("ñoñería", 3))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "don quijote", Normalize("  Don Quijote "))
}

func TestDecodeFeedName(t *testing.T) {
	assert.Equal(t, "Don Quijote", DecodeFeedName("Don+Quijote"))
	assert.Equal(t, "Aldea bárbara", DecodeFeedName("Aldea+b%C3%A1rbara"))
	assert.Equal(t, "ya decodificado", DecodeFeedName("ya+decodificado"))
}

func TestDecodeFeedNameMalformedPercent(t *testing.T) {
	// a stray % makes strict decoding fail; the fallback still fixes the
	// sequences it knows and keeps the rest verbatim
	assert.Equal(t, "50% más", DecodeFeedName("50%+m%C3%A1s"))
}
