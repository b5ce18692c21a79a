package oif

import (
	"encoding/binary"
	"math"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// DecodeHeader extracts every fixed-offset field of a classified resident
// header into a version-independent descriptor. Multi-byte fields are decoded
// in the classification's resolved order; gaps between fields are alignment
// padding and are skipped.
func DecodeHeader(data []byte, cls Classification, findings *valid.Findings) (*ImageDescriptor, error) {
	lay := cls.Layout()
	if cls.Kind != HeaderFile {
		return nil, malformedf("MAGIC", "pixel-file magic where a resident header was expected")
	}
	if len(data) < lay.HeaderSize {
		return nil, malformedf("HDRLEN", "resident header truncated: %d of %d bytes", len(data), lay.HeaderSize)
	}
	ord := cls.Order

	d := &ImageDescriptor{
		Version: lay.Version,
		Order:   ord,
		HdrLen:  i32(data, lay.HdrLen, ord),
		Pixtype: PixelType(i32(data, lay.Pixtype, ord)),
		Ndim:    int(i32(data, lay.Ndim, ord)),
		Ssmtype: i32(data, lay.Ssmtype, ord),
		Lutoff:  i32(data, lay.Lutoff, ord),
		Pixoff:  i32(data, lay.Pixoff, ord),
		Hgmoff:  i32(data, lay.Hgmoff, ord),
		Blist:   i32(data, lay.Blist, ord),
		Szblist: i32(data, lay.Szblist, ord),
		Nbpix:   i32(data, lay.Nbpix, ord),
		Ctime:   i32(data, lay.Ctime, ord),
		Mtime:   i32(data, lay.Mtime, ord),
		Limtime: i32(data, lay.Limtime, ord),
		Max:     f32(data, lay.Max, ord),
		Min:     f32(data, lay.Min, ord),
	}
	if !lay.Swapped.absent() {
		d.Swapped = i32(data, lay.Swapped, ord) == 1
	}

	if d.Ndim < 1 || d.Ndim > MaxDim {
		return nil, malformedf("NDIM", "dimension count %d outside [1,%d]", d.Ndim, MaxDim)
	}
	if d.Pixtype.Width() == 0 {
		findings.Warnf("PIXTYPE", "unknown pixel datatype code %d", int32(d.Pixtype))
	}
	for i := 0; i < MaxDim; i++ {
		d.Len[i] = i32at(data, lay.Len.Off+4*i, ord)
		d.Physlen[i] = i32at(data, lay.Physlen.Off+4*i, ord)
	}
	for i := 0; i < d.Ndim; i++ {
		if d.Len[i] <= 0 {
			return nil, malformedf(axisField("LEN", i), "axis length %d", d.Len[i])
		}
		if d.Physlen[i] < d.Len[i] {
			return nil, malformedf(axisField("PHYSLEN", i), "physical length %d below logical %d", d.Physlen[i], d.Len[i])
		}
	}

	d.Pixfile = decodeString(data, lay.Pixfile, lay, ord)
	d.Hdrfile = decodeString(data, lay.Hdrfile, lay, ord)
	d.Title = decodeString(data, lay.Title, lay, ord)
	d.History = decodeString(data, lay.History, lay, ord)

	return d, nil
}

// UserAreaBytes returns the free-text keyword block trailing the fixed header.
func UserAreaBytes(data []byte, cls Classification) []byte {
	lay := cls.Layout()
	if cls.Kind != HeaderFile || len(data) <= lay.UserArea {
		return nil
	}
	return data[lay.UserArea:]
}

func i32(data []byte, f Field, ord binary.ByteOrder) int32 {
	if f.absent() {
		return 0
	}
	return i32at(data, f.Off, ord)
}

func i32at(data []byte, off int, ord binary.ByteOrder) int32 {
	return int32(ord.Uint32(data[off : off+4]))
}

func f32(data []byte, f Field, ord binary.ByteOrder) float32 {
	return math.Float32frombits(ord.Uint32(data[f.Off : f.Off+4]))
}

func axisField(name string, i int) string {
	return name + string(rune('1'+i))
}
