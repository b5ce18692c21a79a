package oif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"
)

// hostOrder is the byte order of the machine we are running on.
var hostOrder = func() binary.ByteOrder {
	var probe uint16 = 1
	if *(*byte)(unsafe.Pointer(&probe)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// HostOrder reports the byte order of the current host.
func HostOrder() binary.ByteOrder { return hostOrder }

// V1 magics are SPP strings, so the placement of the NUL bytes reveals the
// byte order the file was written in. V2 magics are plain bytes and the
// header is always big-endian.
var (
	v1HdrMagicBE = []byte{0, 'i', 0, 'm', 0, 'h', 0, 'd', 0, 'r'}
	v1PixMagicBE = []byte{0, 'i', 0, 'm', 0, 'p', 0, 'i', 0, 'x'}
	v1HdrMagicLE = []byte{'i', 0, 'm', 0, 'h', 0, 'd', 0, 'r', 0}
	v1PixMagicLE = []byte{'i', 0, 'm', 0, 'p', 0, 'i', 0, 'x', 0}
	v2HdrMagic   = []byte("imhv2")
	v2PixMagic   = []byte("impv2")
)

// Classification is the result of sniffing the leading bytes of a legacy file.
type Classification struct {
	Version Version
	Kind    Kind
	Order   binary.ByteOrder // byte order the file was written in
	Swap    bool             // multi-byte fields need swapping on this host
}

// Layout returns the offset table for the classified version.
func (c Classification) Layout() *Layout { return LayoutFor(c.Version) }

// Detect classifies a header or pixel file by its magic and resolves the byte
// order its fixed fields were written in. For V1 files the order is inferred:
// the magic orientation gives the candidate, which is then verified by
// decoding the dimension count and axis lengths for plausibility; if neither
// orientation is plausible the result is ErrAmbiguousByteOrder. forceSwap is
// authoritative when set: it flips the resolved order and bypasses
// verification, for legacy files whose self-description defeats inference.
func Detect(data []byte, forceSwap bool) (Classification, error) {
	if len(data) < len(v2HdrMagic) {
		return Classification{}, fmt.Errorf("%w: %d bytes is too short for any magic", ErrUnrecognizedFormat, len(data))
	}

	// V2 first: its magic is a strict prefix match.
	if bytes.HasPrefix(data, v2HdrMagic) || bytes.HasPrefix(data, v2PixMagic) {
		cls := Classification{Version: V2, Kind: HeaderFile, Order: binary.BigEndian}
		if bytes.HasPrefix(data, v2PixMagic) {
			cls.Kind = PixelFile
		}
		if forceSwap {
			cls.Order = opposite(cls.Order)
		}
		cls.Swap = cls.Order != hostOrder
		return cls, nil
	}

	cls := Classification{Version: V1}
	switch {
	case bytes.HasPrefix(data, v1HdrMagicBE):
		cls.Kind, cls.Order = HeaderFile, binary.BigEndian
	case bytes.HasPrefix(data, v1PixMagicBE):
		cls.Kind, cls.Order = PixelFile, binary.BigEndian
	case bytes.HasPrefix(data, v1HdrMagicLE):
		cls.Kind, cls.Order = HeaderFile, binary.LittleEndian
	case bytes.HasPrefix(data, v1PixMagicLE):
		cls.Kind, cls.Order = PixelFile, binary.LittleEndian
	default:
		return Classification{}, fmt.Errorf("%w: leading bytes match no known magic", ErrUnrecognizedFormat)
	}

	if forceSwap {
		cls.Order = opposite(cls.Order)
		cls.Swap = cls.Order != hostOrder
		return cls, nil
	}

	order, err := inferV1Order(data, cls.Order)
	if err != nil {
		return Classification{}, err
	}
	cls.Order = order
	cls.Swap = cls.Order != hostOrder
	return cls, nil
}

// inferV1Order verifies a candidate byte order against the dimension fields
// and falls back to the opposite orientation before giving up. Pure function:
// an implausible header is reported, never silently guessed at.
func inferV1Order(data []byte, candidate binary.ByteOrder) (binary.ByteOrder, error) {
	lay := &V1Layout
	if len(data) < lay.Physlen.Off+lay.Physlen.Len {
		return nil, malformedf("NDIM", "header truncated at %d bytes", len(data))
	}
	if plausibleDims(data, lay, candidate) {
		return candidate, nil
	}
	if flipped := opposite(candidate); plausibleDims(data, lay, flipped) {
		return flipped, nil
	}
	return nil, fmt.Errorf("%w: dimension fields implausible in either orientation", ErrAmbiguousByteOrder)
}

func plausibleDims(data []byte, lay *Layout, order binary.ByteOrder) bool {
	ndim := int32(order.Uint32(data[lay.Ndim.Off:]))
	if ndim < 1 || ndim > MaxDim {
		return false
	}
	for i := 0; i < int(ndim); i++ {
		if int32(order.Uint32(data[lay.Len.Off+4*i:])) <= 0 {
			return false
		}
	}
	return true
}
