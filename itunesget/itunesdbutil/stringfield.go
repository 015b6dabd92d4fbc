package itunesdbutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// String sub-records are doubly nested: a generic "mhod" chunk whose content
// area starts with a 16-byte inner header (unknown, text byte length,
// unknown, unknown) immediately followed by UTF-16LE text of the declared
// byte length.
const (
	stringInnerHeaderLen = 16

	// StringFieldFallbackSkip is the advance distance when a sub-record
	// header is unreadable or declares a zero total length. It guarantees
	// forward progress so a corrupt record can never stall the walk.
	StringFieldFallbackSkip = 24
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ParseStringField decodes one string sub-record at offset and returns the
// decoded text together with the number of bytes consumed. Malformed records
// yield empty text but still consume the record's declared total length so
// the caller can advance to the next sibling. The returned count is always
// positive.
func ParseStringField(data []byte, offset int) (string, int) {
	tag, okTag := TagAt(data, offset)
	headerLen, okHeader := Uint32At(data, offset+4)
	totalLen, okTotal := Uint32At(data, offset+8)
	if !okTag || !okHeader || !okTotal {
		return "", StringFieldFallbackSkip
	}

	consumed := int(totalLen)
	if consumed <= 0 {
		consumed = StringFieldFallbackSkip
	}
	if tag != TagSubRecord {
		return "", consumed
	}

	sectionStart := offset + int(headerLen)
	sectionLen := int(totalLen) - int(headerLen)
	if sectionLen < stringInnerHeaderLen || sectionStart+sectionLen > len(data) {
		return "", consumed
	}

	textLen, ok := Uint32At(data, sectionStart+4)
	if !ok {
		return "", consumed
	}

	textStart := sectionStart + stringInnerHeaderLen
	textEnd := textStart + int(textLen)
	if textEnd > sectionStart+sectionLen || textEnd > len(data) {
		return "", consumed
	}

	return decodeUTF16(data[textStart:textEnd]), consumed
}

// decodeUTF16 decodes UTF-16LE bytes leniently: undecodable code units are
// dropped rather than failing the record, and trailing NULs are stripped.
func decodeUTF16(raw []byte) string {
	decoded, err := utf16LE.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.Grow(len(decoded))
	for _, r := range string(decoded) {
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), "\x00")
}
