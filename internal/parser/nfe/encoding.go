package nfe

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Fiscal XMLs in the wild are either UTF-8 or ISO-8859-1. Documents
// that declare a latin-1 encoding are handled by charsetReader; decode
// covers the ones that carry latin-1 bytes without declaring it.
func decode(data []byte) ([]byte, error) {
	if !utf8.Valid(data) && !declaresCharset(data) {
		return charmap.ISO8859_1.NewDecoder().Bytes(data)
	}
	return data, nil
}

// declaresCharset reports whether the XML declaration names a non-UTF-8
// encoding; those are left to charsetReader.
func declaresCharset(data []byte) bool {
	head := data
	if len(head) > 128 {
		head = head[:128]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("iso-8859-1")) ||
		bytes.Contains(lower, []byte("windows-1252"))
}

// charsetReader is plugged into etree.ReadSettings so declared latin-1
// encodings parse instead of failing in encoding/xml.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}
