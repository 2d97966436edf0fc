package filing

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/unicode/norm"
)

var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	xmlDeclRe = regexp.MustCompile(`(?i)<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)
)

// Labels seen in DART archives that the WHATWG registry does not know.
var encodingAliases = map[string]string{
	"cp949":  "euc-kr",
	"ms949":  "euc-kr",
	"euc_kr": "euc-kr",
	"uhc":    "euc-kr",
}

// DecodeContent turns raw filing bytes into NFC-normalised UTF-8 text.
// An explicit hint wins, then a BOM, then a declared charset (XML declaration
// or <meta>), then UTF-8 if the bytes are valid, then EUC-KR/CP949. Anything
// left is decoded as UTF-8 with replacement characters.
func DecodeContent(b []byte, hint string) string {
	if len(b) == 0 {
		return ""
	}
	if bytes.HasPrefix(b, utf8BOM) {
		return normalize(strings.ToValidUTF8(string(b[len(utf8BOM):]), "�"))
	}

	label := hint
	if label == "" {
		label = declaredEncoding(b)
	}
	if enc := lookupEncoding(label); enc != nil {
		if out, err := enc.NewDecoder().Bytes(b); err == nil {
			return normalize(string(out))
		}
	}

	if utf8.Valid(b) {
		return normalize(string(b))
	}
	if out, err := korean.EUCKR.NewDecoder().Bytes(b); err == nil {
		return normalize(string(out))
	}
	return normalize(strings.ToValidUTF8(string(b), "�"))
}

func declaredEncoding(b []byte) string {
	head := b
	if len(head) > 1024 {
		head = head[:1024]
	}
	if m := xmlDeclRe.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	// DetermineEncoding falls back to windows-1252 when nothing is declared;
	// that guess is useless for Korean filings.
	_, name, certain := charset.DetermineEncoding(b, "")
	if certain || (name != "windows-1252" && name != "utf-8") {
		return name
	}
	return ""
}

func lookupEncoding(label string) encoding.Encoding {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return nil
	}
	if alias, ok := encodingAliases[label]; ok {
		label = alias
	}
	if label == "utf-8" || label == "utf8" {
		return nil
	}
	enc, _ := charset.Lookup(label)
	return enc
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
