package pix

import (
	"strconv"
	"strings"
)

// MaxValueLength is the largest value a two-digit length can describe.
const MaxValueLength = 99

// Field is a single tag/value pair of an EMV-QRCPS payload.
type Field struct {
	Tag   string
	Value string
}

// EncodeField encodes tag and value as tag + two-digit length + value.
// e.g. EncodeField("00", "01") -> "000201"
func EncodeField(tag, value string) (string, error) {
	if !validTag(tag) {
		return "", &FieldError{Tag: tag, Err: ErrInvalidTag}
	}
	if len(value) > MaxValueLength {
		return "", &FieldError{Tag: tag, Err: ErrValueTooLong}
	}
	if !printableASCII(value) {
		return "", &FieldError{Tag: tag, Err: ErrInvalidCharacter}
	}

	var sb strings.Builder
	sb.Grow(len(tag) + 2 + len(value))
	sb.WriteString(tag)
	if len(value) < 10 {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.Itoa(len(value)))
	sb.WriteString(value)
	return sb.String(), nil
}

// EncodeCompositeField encodes each subfield in the given order and
// wraps the concatenation as the value of tag.
func EncodeCompositeField(tag string, subfields []Field) (string, error) {
	var content strings.Builder
	for _, sub := range subfields {
		encoded, err := EncodeField(sub.Tag, sub.Value)
		if err != nil {
			return "", err
		}
		content.WriteString(encoded)
	}
	return EncodeField(tag, content.String())
}

func validTag(tag string) bool {
	return len(tag) == 2 &&
		tag[0] >= '0' && tag[0] <= '9' &&
		tag[1] >= '0' && tag[1] <= '9'
}

// the checksum works on bytes, so every character has to be a single byte
func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}
