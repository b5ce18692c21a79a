package oif

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

func decodeSynth(t *testing.T, img synthImage, forceSwap bool) (*ImageDescriptor, *valid.Findings) {
	t.Helper()
	hdr := img.header()
	cls, err := Detect(hdr, forceSwap)
	require.NoError(t, err)
	findings := &valid.Findings{}
	desc, err := DecodeHeader(hdr, cls, findings)
	require.NoError(t, err)
	return desc, findings
}

func TestDecodeHeader_V1KnownValues(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		img := synthImage{
			version: V1,
			order:   order,
			pixtype: TypeShort,
			lens:    []int32{640, 480},
			phys:    []int32{1024, 480},
			title:   "dark frame 12",
			pixfile: "HDR$pix/frame12.pix",
			hdrfile: "frame12.imh",
			history: "flat corrected\nregistered",
			ctime:   1234567,
			mtime:   1234999,
			min:     -3.5,
			max:     60000,
		}
		desc, _ := decodeSynth(t, img, false)

		assert.Equal(t, V1, desc.Version)
		assert.Equal(t, order, desc.Order)
		assert.Equal(t, TypeShort, desc.Pixtype)
		assert.Equal(t, 2, desc.Ndim)
		assert.Equal(t, []int{640, 480}, desc.Shape())
		assert.Equal(t, []int{1024, 480}, desc.PhysShape())
		assert.Equal(t, "dark frame 12", desc.Title)
		assert.Equal(t, "HDR$pix/frame12.pix", desc.Pixfile)
		assert.Equal(t, "frame12.imh", desc.Hdrfile)
		assert.Equal(t, "flat corrected\nregistered", desc.History)
		assert.Equal(t, int32(1234567), desc.Ctime)
		assert.Equal(t, int32(1234999), desc.Mtime)
		assert.InDelta(t, -3.5, desc.Min, 1e-6)
		assert.InDelta(t, 60000, desc.Max, 1e-3)
		assert.Equal(t, 640*480, desc.Elements())
	}
}

func TestDecodeHeader_V2KnownValues(t *testing.T) {
	img := synthImage{
		version: V2,
		order:   binary.BigEndian,
		swapped: true,
		pixtype: TypeReal,
		lens:    []int32{100, 50},
		title:   "m101 field",
		ctime:   777,
	}
	desc, _ := decodeSynth(t, img, false)

	assert.Equal(t, V2, desc.Version)
	assert.True(t, desc.Swapped)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), desc.PixelOrder())
	assert.Equal(t, TypeReal, desc.Pixtype)
	assert.Equal(t, []int{100, 50}, desc.Shape())
	assert.Equal(t, "m101 field", desc.Title)
	assert.Equal(t, int32(777), desc.Ctime)
}

func TestDecodeHeader_ForceSwapDecodesOppositeOrder(t *testing.T) {
	// Written little-endian; forcing swap must decode integer fields as if
	// the header were big-endian.
	img := synthImage{version: V1, order: binary.LittleEndian, pixtype: TypeShort, lens: []int32{2}}
	hdr := img.header()
	cls, err := Detect(hdr, true)
	require.NoError(t, err)
	_, err = DecodeHeader(hdr, cls, nil)
	// ndim 2 little-endian reads as 0x02000000 big-endian
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeHeader_Truncated(t *testing.T) {
	img := synthImage{version: V2, order: binary.BigEndian, pixtype: TypeReal, lens: []int32{10}}
	hdr := img.header()[:500]
	cls, err := Detect(hdr, false)
	require.NoError(t, err)
	_, err = DecodeHeader(hdr, cls, nil)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeHeader_BadAxisLength(t *testing.T) {
	img := synthImage{version: V2, order: binary.BigEndian, pixtype: TypeReal, lens: []int32{100, 50}}
	hdr := img.header()
	binary.BigEndian.PutUint32(hdr[V2Layout.Len.Off+4:], 0) // second axis length 0
	cls, err := Detect(hdr, false)
	require.NoError(t, err)
	_, err = DecodeHeader(hdr, cls, nil)
	require.ErrorIs(t, err, ErrMalformedHeader)
	assert.Contains(t, err.Error(), "LEN2")
}

func TestDecodeHeader_BadNdim(t *testing.T) {
	img := synthImage{version: V2, order: binary.BigEndian, pixtype: TypeReal, lens: []int32{10}}
	hdr := img.header()
	binary.BigEndian.PutUint32(hdr[V2Layout.Ndim.Off:], 9)
	cls, err := Detect(hdr, false)
	require.NoError(t, err)
	_, err = DecodeHeader(hdr, cls, nil)
	require.ErrorIs(t, err, ErrMalformedHeader)
	assert.Contains(t, err.Error(), "NDIM")
}

func TestDecodeHeader_UnknownPixtypeWarns(t *testing.T) {
	img := synthImage{version: V2, order: binary.BigEndian, pixtype: PixelType(42), lens: []int32{10}}
	desc, findings := decodeSynth(t, img, false)
	assert.Equal(t, PixelType(42), desc.Pixtype)
	require.Len(t, findings.Warnings(), 1)
	assert.Equal(t, "PIXTYPE", findings.Warnings()[0].Keyword)
}

func TestLegacyTimestampEpoch(t *testing.T) {
	d := &ImageDescriptor{Ctime: 0}
	// legacy timestamps count from the start of 1980
	assert.Equal(t, 1980, d.Created().Year())
}
