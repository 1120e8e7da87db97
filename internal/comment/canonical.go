package comment

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON for a forest.
// This is the only serialization used for content digests.
//
// Differences from encoding/json:
//  1. Object keys are emitted in sorted order
//  2. No HTML escaping (<, >, & are written literally)
//  3. Strings are NFC normalized
//  4. U+2028 and U+2029 are written literally
//  5. A top-level comment omits "parentId" instead of writing null
func MarshalCanonical(f Forest) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonicalList(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonicalList(buf *bytes.Buffer, list []Comment) error {
	buf.WriteByte('[')
	for i := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalComment(buf, &list[i]); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// writeCanonicalComment writes keys in sorted order:
// author, id, parentId, replies, text, timestamp.
func writeCanonicalComment(buf *bytes.Buffer, c *Comment) error {
	fields := []struct {
		key   string
		value string
	}{
		{"author", c.Author},
		{"id", c.ID},
	}
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalField(buf, f.key, f.value); err != nil {
			return err
		}
	}
	if c.ParentID != nil {
		buf.WriteByte(',')
		if err := writeCanonicalField(buf, "parentId", *c.ParentID); err != nil {
			return err
		}
	}
	buf.WriteString(`,"replies":`)
	if err := writeCanonicalList(buf, c.Replies); err != nil {
		return err
	}
	buf.WriteByte(',')
	if err := writeCanonicalField(buf, "text", c.Text); err != nil {
		return err
	}
	buf.WriteByte(',')
	if err := writeCanonicalField(buf, "timestamp", c.Timestamp); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeCanonicalField(buf *bytes.Buffer, key, value string) error {
	k, err := marshalCanonicalString(key)
	if err != nil {
		return err
	}
	v, err := marshalCanonicalString(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshalCanonicalString NFC-normalizes s and encodes it without HTML
// escaping. Only control characters, backslash and quote stay escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(out), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json emits back into literal characters. An escape preceded by an
// odd run of backslashes is literal text and is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') && precedingBackslashes(out)%2 == 0 {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func precedingBackslashes(b []byte) int {
	n := 0
	for j := len(b) - 1; j >= 0 && b[j] == '\\'; j-- {
		n++
	}
	return n
}
