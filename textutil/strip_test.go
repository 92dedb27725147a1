package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/korean"
)

func TestStripHTML(t *testing.T) {
	in := `<div class="notice"><h1>Pickup &amp; Rewards</h1><script>alert(1)</script><p>Line one.<br>Line two.</p></div>`
	assert.Equal(t, "Pickup & Rewards Line one. Line two.", StripHTML(in))
}

func TestStripHTML_StyleBlocksRemoved(t *testing.T) {
	in := "<style>.a { color: red }</style><span>hello</span>"
	assert.Equal(t, "hello", StripHTML(in))
}

func TestStripHTML_AngleBracketInAttribute(t *testing.T) {
	// A ">" inside a quoted attribute value must not leak fragments into
	// the text, which would poison titles and content hashes downstream.
	in := `<a href="/n/1" title="a>b">Pickup Notice</a>`
	assert.Equal(t, "Pickup Notice", StripHTML(in))
}

func TestStripHTML_UnclosedTag(t *testing.T) {
	assert.Equal(t, "Maintenance window", StripHTML("<div><b>Maintenance window"))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\n\tb   c  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 220))

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	out := Truncate(string(long), 220)
	assert.Equal(t, 223, len(out))
	assert.Equal(t, "...", out[220:])
}

func TestDecodeBody_DeclaredCharset(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("점검 안내"))
	assert.NoError(t, err)

	assert.Equal(t, "점검 안내", DecodeBody(encoded, "euc-kr"))
}

func TestDecodeBody_SniffsMetaTag(t *testing.T) {
	body := []byte(`<html><head><meta charset="euc-kr"></head>`)
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("공지"))
	assert.NoError(t, err)
	body = append(body, encoded...)

	assert.Contains(t, DecodeBody(body, ""), "공지")
}

func TestDecodeBody_UnknownCharsetFallsBack(t *testing.T) {
	assert.Equal(t, "plain text", DecodeBody([]byte("plain text"), "x-made-up"))
}

func TestDecodeBody_NeverFails(t *testing.T) {
	garbage := []byte{0xff, 0xfe, 0x00, 0x81}
	assert.NotPanics(t, func() { DecodeBody(garbage, "shift_jis") })
}
