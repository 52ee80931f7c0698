// Package encoding decodes OBJ sources written by exporters that do not use UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for a charset name that is not supported.
var ErrUnknownCharset = errors.New("unknown charset")

var charsets = map[string]xencoding.Encoding{
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

// Lookup returns the decoder for a charset name. An empty name and "utf-8"
// return nil, meaning no conversion.
func Lookup(name string) (xencoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, ok := charsets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// NewReader wraps r so that it yields UTF-8 text decoded from charset.
func NewReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// DecodeString converts s from charset to UTF-8.
// Returns the original string if conversion fails.
func DecodeString(s, charset string) string {
	enc, err := Lookup(charset)
	if err != nil || enc == nil {
		return s
	}
	result, _, err := transform.String(enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return result
}

// Names returns the supported charset names, sorted.
func Names() []string {
	names := []string{"utf-8"}
	for name := range charsets {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}
