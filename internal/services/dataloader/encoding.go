package dataloader

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Preference selects how uploaded bytes are decoded
type Preference string

const (
	PreferAuto     Preference = "auto"
	PreferUTF8     Preference = "utf-8"
	PreferShiftJIS Preference = "shift_jis"
)

// Encoding labels reported back to the user
const (
	LabelUTF8BOM      = "UTF-8 (BOM)"
	LabelUTF8         = "UTF-8"
	LabelUTF8Auto     = "UTF-8 (auto)"
	LabelShiftJIS     = "Shift_JIS"
	LabelShiftJISAuto = "Shift_JIS (auto)"
)

const (
	replacementChar    = "\uFFFD"
	minReplacementHits = 2
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrUnknownPreference is returned for an encoding preference other than
// auto, utf-8 or shift_jis
var ErrUnknownPreference = errors.New("unknown encoding preference")

// shiftJISAliases are tried in order until one resolves
var shiftJISAliases = []string{"shift_jis", "sjis", "windows-31j", "ms932"}

// ParsePreference validates an encoding preference; "" means auto
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PreferAuto:
		return PreferAuto, nil
	case PreferUTF8, PreferShiftJIS:
		return p, nil
	case "utf8":
		return PreferUTF8, nil
	case "sjis", "shift-jis":
		return PreferShiftJIS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreference, s)
}

// Decoded is decoded text plus the label of the encoding that produced it
type Decoded struct {
	Text     string
	Encoding string
}

// Decode turns raw file bytes into text. A UTF-8 byte order mark always wins;
// otherwise an explicit preference is honoured, and auto falls back to
// Shift_JIS when UTF-8 decoding produces too many replacement characters.
func Decode(data []byte, pref Preference) Decoded {
	if bytes.HasPrefix(data, utf8BOM) {
		text, _ := decodeWith(unicode.UTF8BOM, data)
		return Decoded{Text: text, Encoding: LabelUTF8BOM}
	}

	switch pref {
	case PreferUTF8:
		text, _ := decodeWith(unicode.UTF8, data)
		return Decoded{Text: text, Encoding: LabelUTF8}
	case PreferShiftJIS:
		text, _ := decodeShiftJIS(data)
		return Decoded{Text: text, Encoding: LabelShiftJIS}
	}

	text, _ := decodeWith(unicode.UTF8, data)
	if tooManyReplacements(text) {
		if sjis, err := decodeShiftJIS(data); err == nil {
			return Decoded{Text: sjis, Encoding: LabelShiftJISAuto}
		}
	}
	return Decoded{Text: text, Encoding: LabelUTF8Auto}
}

// tooManyReplacements reports whether the replacement count exceeds
// max(2, 1% of the decoded length)
func tooManyReplacements(text string) bool {
	count := strings.Count(text, replacementChar)
	limit := utf8.RuneCountInString(text) / 100
	if limit < minReplacementHits {
		limit = minReplacementHits
	}
	return count > limit
}

func decodeShiftJIS(data []byte) (string, error) {
	var lastErr error
	for _, name := range shiftJISAliases {
		enc, err := htmlindex.Get(name)
		if err != nil {
			lastErr = err
			continue
		}
		return decodeWith(enc, data)
	}
	return "", fmt.Errorf("no Shift_JIS decoder available: %w", lastErr)
}

// decodeWith decodes data, returning "" when the decoder fails
func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
