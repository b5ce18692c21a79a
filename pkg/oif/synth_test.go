package oif

import (
	"encoding/binary"
	"math"
)

// synthImage builds byte-exact legacy files for tests through the same layout
// tables the decoder reads.
type synthImage struct {
	version Version
	order   binary.ByteOrder // order the header is written in (V2: big-endian)
	swapped bool             // V2 pixel payload opposite to big-endian

	pixtype  PixelType
	lens     []int32
	phys     []int32 // defaults to lens
	title    string
	pixfile  string
	hdrfile  string
	history  string
	userArea string

	ctime, mtime, limtime int32
	min, max              float32
}

func (s synthImage) layout() *Layout { return LayoutFor(s.version) }

func (s synthImage) physLens() []int32 {
	if s.phys != nil {
		return s.phys
	}
	return s.lens
}

func (s synthImage) header() []byte {
	lay := s.layout()
	buf := make([]byte, lay.HeaderSize)
	s.writeMagic(buf, "imhdr", "imhv2")
	s.writeFields(buf, lay)
	putI32(buf, lay.HdrLen, s.order, int32(lay.HeaderSize))
	s.writeString(buf, lay.Pixfile, s.pixfile)
	s.writeString(buf, lay.Hdrfile, s.hdrfile)
	s.writeString(buf, lay.Title, s.title)
	s.writeString(buf, lay.History, s.history)
	putI32(buf, lay.Ctime, s.order, s.ctime)
	putI32(buf, lay.Mtime, s.order, s.mtime)
	putI32(buf, lay.Limtime, s.order, s.limtime)
	putI32(buf, lay.Max, s.order, int32(math.Float32bits(s.max)))
	putI32(buf, lay.Min, s.order, int32(math.Float32bits(s.min)))
	if s.userArea != "" {
		buf = append(buf, s.encodeText(s.userArea)...)
	}
	return buf
}

// pixFile lays the payload (already in its stored byte order) after the
// pixel-file mini-header.
func (s synthImage) pixFile(payload []byte) []byte {
	lay := s.layout()
	buf := make([]byte, lay.PixHeaderSize)
	s.writeMagic(buf, "impix", "impv2")
	s.writeFields(buf, lay)
	return append(buf, payload...)
}

// payloadOrder is the byte order pixel elements are stored in.
func (s synthImage) payloadOrder() binary.ByteOrder {
	if s.version == V2 {
		if s.swapped {
			return binary.LittleEndian
		}
		return binary.BigEndian
	}
	return s.order
}

func (s synthImage) writeMagic(buf []byte, v1, v2 string) {
	if s.version == V2 {
		copy(buf, v2)
		return
	}
	for i := 0; i < len(v1); i++ {
		s.order.PutUint16(buf[i*2:], uint16(v1[i]))
	}
}

func (s synthImage) writeFields(buf []byte, lay *Layout) {
	putI32(buf, lay.Pixtype, s.order, int32(s.pixtype))
	putI32(buf, lay.Ndim, s.order, int32(len(s.lens)))
	phys := s.physLens()
	for i, l := range s.lens {
		s.order.PutUint32(buf[lay.Len.Off+4*i:], uint32(l))
		s.order.PutUint32(buf[lay.Physlen.Off+4*i:], uint32(phys[i]))
	}
	if !lay.Swapped.absent() {
		var flag int32
		if s.swapped {
			flag = 1
		}
		putI32(buf, lay.Swapped, s.order, flag)
	}
}

func (s synthImage) writeString(buf []byte, f Field, val string) {
	if val == "" {
		return
	}
	var enc []byte
	if s.layout().Strings == SPPStrings {
		enc = EncodeSPP(val, f.Len, s.order, nil)
	} else {
		enc = EncodePacked(val, f.Len, nil)
	}
	copy(buf[f.Off:], enc)
}

// encodeText renders free user-area text in the version's string encoding.
func (s synthImage) encodeText(text string) []byte {
	if s.layout().Strings != SPPStrings {
		return []byte(text)
	}
	out := make([]byte, len(text)*2)
	for i := 0; i < len(text); i++ {
		s.order.PutUint16(out[i*2:], uint16(text[i]))
	}
	return out
}

func putI32(buf []byte, f Field, ord binary.ByteOrder, v int32) {
	ord.PutUint32(buf[f.Off:], uint32(v))
}

// f32payload packs float32 values in the given order.
func f32payload(vals []float32, ord binary.ByteOrder) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		ord.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// i16payload packs int16 values in the given order.
func i16payload(vals []int16, ord binary.ByteOrder) []byte {
	out := make([]byte, len(vals)*2)
	for i, v := range vals {
		ord.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
