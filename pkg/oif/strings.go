package oif

import (
	"encoding/binary"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// The two legacy string encodings. SPP strings (V1) store one character
// ordinal per 16-bit word in the writer's byte order; packed strings (V2)
// store plain bytes. Both are terminated by a zero value or the field's
// fixed capacity, and both round-trip for strings that fit the capacity.

// DecodeSPP decodes a packed-short string field.
func DecodeSPP(b []byte, order binary.ByteOrder) string {
	out := make([]byte, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		v := order.Uint16(b[i:])
		if v == 0 {
			break
		}
		out = append(out, byte(v))
	}
	return string(out)
}

// EncodeSPP encodes s into a fixed-capacity packed-short field. The result
// is always exactly capBytes long (two bytes per character, zero padded). A
// string over capacity is truncated, not an error; the truncation is recorded
// as a warning finding.
func EncodeSPP(s string, capBytes int, order binary.ByteOrder, findings *valid.Findings) []byte {
	buf := make([]byte, capBytes)
	n := len(s)
	if n > capBytes/2 {
		n = capBytes / 2
		findings.Warnf("", "string %q truncated to %d characters", s, n)
	}
	for i := 0; i < n; i++ {
		order.PutUint16(buf[i*2:], uint16(s[i]))
	}
	return buf
}

// DecodePacked decodes a NUL-terminated (or capacity-bounded) byte string.
func DecodePacked(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// EncodePacked encodes s into a fixed-capacity byte-string field, truncating
// with a warning finding when s exceeds the capacity.
func EncodePacked(s string, capBytes int, findings *valid.Findings) []byte {
	buf := make([]byte, capBytes)
	n := len(s)
	if n > capBytes {
		n = capBytes
		findings.Warnf("", "string %q truncated to %d characters", s, n)
	}
	copy(buf, s[:n])
	return buf
}

// decodeString reads one embedded string field using the layout's encoding.
func decodeString(data []byte, f Field, lay *Layout, order binary.ByteOrder) string {
	if f.absent() || f.Off+f.Len > len(data) {
		return ""
	}
	raw := data[f.Off : f.Off+f.Len]
	if lay.Strings == SPPStrings {
		return DecodeSPP(raw, order)
	}
	return DecodePacked(raw)
}
