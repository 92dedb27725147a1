package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var metaCharsetRegex = regexp.MustCompile(`(?i)charset\s*=\s*["']?\s*([a-zA-Z0-9_\-]+)`)

// DecodeBody converts a raw response body to a UTF-8 string. The charset is
// taken from the Content-Type header if declared, otherwise sniffed from a
// charset= meta tag in the first 4KB. Decoding never fails; an unknown or
// broken charset falls back to interpreting the bytes as UTF-8.
func DecodeBody(body []byte, declaredCharset string) string {
	name := strings.TrimSpace(declaredCharset)
	if name == "" {
		name = sniffCharset(body)
	}

	enc := lookupEncoding(name)
	if enc == nil {
		return string(body)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func sniffCharset(body []byte) string {
	head := body
	if len(head) > 4096 {
		head = head[:4096]
	}

	// Latin-1 maps every byte to a rune, so the regex scan is safe even on
	// binary garbage.
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(head)
	if err != nil {
		return ""
	}

	m := metaCharsetRegex.FindSubmatch(text)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func lookupEncoding(name string) encoding.Encoding {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil
	case "euc-kr", "euckr", "ks_c_5601-1987", "ksc5601":
		return korean.EUCKR
	case "shift_jis", "shift-jis", "sjis", "windows-31j", "cp932":
		return japanese.ShiftJIS
	case "euc-jp", "eucjp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "gbk", "gb2312", "gb18030":
		return simplifiedchinese.GBK
	case "big5":
		return traditionalchinese.Big5
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "utf-16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	}
	return nil
}
