package controlisyparser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeContent normalizes a Controlisy export to UTF-8. Exports from older
// installations are windows-1251; newer ones are UTF-8, sometimes with a
// BOM. The XML declaration is trusted when present, otherwise invalid UTF-8
// falls back to windows-1251.
func decodeContent(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	head := strings.ToLower(string(data[:min(len(data), 200)]))
	declared1251 := strings.Contains(head, "windows-1251") || strings.Contains(head, "cp1251")

	if declared1251 || !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		data = decoded
	}
	return string(data), nil
}

// escapeInnerQuotes repairs unescaped double quotes inside attribute
// values. Company names from the commercial register arrive as
// `contractorName=""БИГ" ЕООД"`, which is not well-formed XML. A quote
// inside a value is kept literal unless what follows looks like the end of
// the attribute list or the next attribute name.
func escapeInnerQuotes(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	inTag := false
	inValue := false

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case !inTag:
			if c == '<' {
				// copy processing instructions like the XML declaration
				// verbatim, their quotes never need repair
				if i+1 < len(content) && content[i+1] == '?' {
					if end := strings.Index(content[i:], "?>"); end >= 0 {
						b.WriteString(content[i : i+end+2])
						i += end + 1
						continue
					}
				}
				inTag = true
			}
			b.WriteByte(c)
		case !inValue:
			if c == '"' {
				inValue = true
			} else if c == '>' {
				inTag = false
			}
			b.WriteByte(c)
		default: // inside an attribute value
			if c != '"' {
				b.WriteByte(c)
				continue
			}
			if closesValue(content, i+1) {
				inValue = false
				b.WriteByte(c)
			} else {
				b.WriteString("&quot;")
			}
		}
	}
	return b.String()
}

// closesValue reports whether the text after a quote looks like the
// continuation of the tag: whitespace followed by another attribute name,
// or the tag end.
func closesValue(content string, pos int) bool {
	i := pos
	for i < len(content) && (content[i] == ' ' || content[i] == '\t' || content[i] == '\r' || content[i] == '\n') {
		i++
	}
	if i >= len(content) {
		return true
	}
	if content[i] == '>' {
		return true
	}
	if (content[i] == '/' || content[i] == '?') && i+1 < len(content) && content[i+1] == '>' {
		return true
	}
	if i == pos {
		// a quote directly followed by text stays inside the value
		return false
	}
	// whitespace then an identifier and '=' means a new attribute starts
	j := i
	for j < len(content) && isNameByte(content[j]) {
		j++
	}
	return j > i && j < len(content) && content[j] == '='
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == ':'
}
