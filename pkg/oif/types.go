// Package oif decodes legacy two-file OIF images: a ".imh" resident header
// plus a same-root ".pix" pixel store. Both on-disk generations are handled
// (V1 native-order headers with SPP strings, V2 fixed big-endian headers with
// byte strings), independent of the byte order of the host.
package oif

import (
	"encoding/binary"
	"time"
)

// PixelType is the legacy datatype code for stored pixels.
type PixelType int32

const (
	TypeShort   PixelType = 3  // signed 16-bit integer
	TypeInt     PixelType = 4  // signed 32-bit integer
	TypeLong    PixelType = 5  // signed 32-bit integer
	TypeReal    PixelType = 6  // 32-bit floating point
	TypeDouble  PixelType = 7  // 64-bit floating point
	TypeComplex PixelType = 8  // two 32-bit floats
	TypeUShort  PixelType = 11 // unsigned 16-bit integer
	TypeUByte   PixelType = 12 // unsigned 8-bit integer
)

// Width returns the element width in bytes, or 0 for unknown codes.
func (t PixelType) Width() int {
	switch t {
	case TypeUByte:
		return 1
	case TypeShort, TypeUShort:
		return 2
	case TypeInt, TypeLong, TypeReal:
		return 4
	case TypeDouble, TypeComplex:
		return 8
	}
	return 0
}

func (t PixelType) String() string {
	switch t {
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeReal:
		return "real"
	case TypeDouble:
		return "double"
	case TypeComplex:
		return "complex"
	case TypeUShort:
		return "ushort"
	case TypeUByte:
		return "ubyte"
	}
	return "unknown"
}

// MaxDim is the most axes a legacy image can carry.
const MaxDim = 7

// Legacy timestamps count seconds from the 1980 epoch; the original
// implementation used this approximate offset to unix time.
const epoch1980 = int64(10 * 365.25 * 24 * 3600)

// ImageDescriptor is the version-independent view of one decoded resident
// header. Axis lengths are stored in on-disk axis order (first axis varies
// fastest in the pixel store).
type ImageDescriptor struct {
	Version Version
	Order   binary.ByteOrder // byte order the header was written in
	Swapped bool             // pixel store is opposite to Order (V2 flag)

	HdrLen  int32
	Pixtype PixelType
	Ndim    int
	Len     [MaxDim]int32 // logical axis lengths
	Physlen [MaxDim]int32 // stored physical axis lengths (>= logical)

	Ssmtype int32
	Lutoff  int32
	Pixoff  int32
	Hgmoff  int32
	Blist   int32
	Szblist int32
	Nbpix   int32

	Ctime   int32
	Mtime   int32
	Limtime int32

	Max float32
	Min float32

	Pixfile string
	Hdrfile string
	Title   string
	History string // multi-line, retained verbatim
}

// Shape returns the logical axis lengths.
func (d *ImageDescriptor) Shape() []int {
	out := make([]int, d.Ndim)
	for i := range out {
		out[i] = int(d.Len[i])
	}
	return out
}

// PhysShape returns the stored physical axis lengths.
func (d *ImageDescriptor) PhysShape() []int {
	out := make([]int, d.Ndim)
	for i := range out {
		out[i] = int(d.Physlen[i])
	}
	return out
}

// Elements returns the logical pixel count.
func (d *ImageDescriptor) Elements() int {
	n := 1
	for i := 0; i < d.Ndim; i++ {
		n *= int(d.Len[i])
	}
	return n
}

// PixelOrder returns the byte order of the companion pixel store.
func (d *ImageDescriptor) PixelOrder() binary.ByteOrder {
	if d.Swapped {
		return opposite(d.Order)
	}
	return d.Order
}

// Created returns the creation timestamp adjusted from the legacy epoch.
func (d *ImageDescriptor) Created() time.Time { return legacyTime(d.Ctime) }

// Modified returns the modification timestamp adjusted from the legacy epoch.
func (d *ImageDescriptor) Modified() time.Time { return legacyTime(d.Mtime) }

// LimitsUpdated returns when the stored min/max were last refreshed.
func (d *ImageDescriptor) LimitsUpdated() time.Time { return legacyTime(d.Limtime) }

func legacyTime(v int32) time.Time {
	return time.Unix(int64(v)+epoch1980, 0).UTC()
}

func opposite(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
