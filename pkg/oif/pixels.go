package oif

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// PixelBuffer holds the decoded logical pixel region: flat row-major (first
// axis fastest) elements in host byte order.
type PixelBuffer struct {
	Type  PixelType
	Shape []int
	Data  []byte // len == Elements() * Type.Width()
}

// Elements returns the product of the shape.
func (b *PixelBuffer) Elements() int {
	n := 1
	for _, l := range b.Shape {
		n *= l
	}
	return n
}

// ReadPixels decodes the companion pixel file for a descriptor. The pixel
// file's own mini-header supplies the byte order of the payload (V1: magic
// orientation; V2: the stored SWAPPED flag relative to big-endian); forceSwap
// overrides that determination, mirroring the header-level override. The
// declared extents are validated against the file size before any bulk copy,
// and physical axis lengths are trimmed to the logical lengths.
func ReadPixels(desc *ImageDescriptor, pix []byte, forceSwap bool, findings *valid.Findings) (*PixelBuffer, error) {
	width := desc.Pixtype.Width()
	if width == 0 || desc.Pixtype == TypeComplex {
		return nil, fmt.Errorf("%w: datatype code %d (%s)", ErrUnsupportedPixelType, int32(desc.Pixtype), desc.Pixtype)
	}

	cls, err := Detect(pix, forceSwap)
	if err != nil {
		return nil, err
	}
	if cls.Kind != PixelFile {
		return nil, fmt.Errorf("%w: header magic where a pixel file was expected", ErrUnrecognizedFormat)
	}
	if cls.Version != desc.Version {
		findings.Warnf("", "pixel file is %s but header is %s", cls.Version, desc.Version)
	}
	lay := cls.Layout()
	if len(pix) < lay.PixHeaderSize {
		return nil, fmt.Errorf("%w: pixel file header truncated: %d of %d bytes", ErrTruncatedPixelData, len(pix), lay.PixHeaderSize)
	}

	// Resolve the payload order. V1 payloads share the file's written order,
	// which Detect has already resolved (ForceSwap included). V2 mini-header
	// fields are fixed big-endian, so the SWAPPED flag is read without
	// ambiguity and states whether the payload is opposite to big-endian;
	// ForceSwap overrides that determination.
	order := cls.Order
	fieldOrder := cls.Order
	if cls.Version == V2 {
		fieldOrder = binary.BigEndian
		order = binary.BigEndian
		if !lay.Swapped.absent() && len(pix) >= lay.Swapped.Off+4 && i32(pix, lay.Swapped, fieldOrder) == 1 {
			order = opposite(order)
		}
		if forceSwap {
			order = opposite(order)
		}
	}

	// Cross-check the pixel file's own copy of the structural fields.
	if pt := PixelType(i32(pix, lay.Pixtype, fieldOrder)); pt != desc.Pixtype {
		findings.Warnf("PIXTYPE", "pixel file declares datatype %s, header %s", pt, desc.Pixtype)
	}
	if nd := int(i32(pix, lay.Ndim, fieldOrder)); nd != desc.Ndim {
		findings.Warnf("NDIM", "pixel file declares %d axes, header %d", nd, desc.Ndim)
	}

	shape := desc.Shape()
	phys := desc.PhysShape()

	// Bound the physical extent before any stride arithmetic. Seven positive
	// axis lengths can wrap 64-bit products, so a corrupt header must be
	// rejected here, not discovered as a short allocation during the copy.
	elems := uint64(1)
	for i, l := range phys {
		hi, lo := bits.Mul64(elems, uint64(l))
		elems = lo
		if hi != 0 || elems > uint64(math.MaxInt64)/uint64(width) {
			return nil, malformedf(axisField("PHYSLEN", i), "declared extents overflow the addressable range")
		}
	}

	// Element strides of the physical store, first axis fastest.
	stride := make([]int, desc.Ndim)
	stride[0] = 1
	for i := 1; i < desc.Ndim; i++ {
		stride[i] = stride[i-1] * phys[i-1]
	}
	last := 0 // flat physical index of the final logical element
	for i := 0; i < desc.Ndim; i++ {
		last += (shape[i] - 1) * stride[i]
	}
	offset := lay.PixHeaderSize
	need := offset + (last+1)*width
	if len(pix) < need {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedPixelData, need, len(pix))
	}
	raw := pix[offset:]

	buf := &PixelBuffer{Type: desc.Pixtype, Shape: shape}
	buf.Data = make([]byte, buf.Elements()*width)

	// Copy one first-axis run at a time, trimming physical padding.
	rowBytes := shape[0] * width
	idx := make([]int, desc.Ndim)
	dst := 0
	for {
		src := 0
		for i := 1; i < desc.Ndim; i++ {
			src += idx[i] * stride[i]
		}
		copy(buf.Data[dst:dst+rowBytes], raw[src*width:src*width+rowBytes])
		dst += rowBytes

		i := 1
		for ; i < desc.Ndim; i++ {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
		if i >= desc.Ndim {
			break
		}
	}

	if order != hostOrder {
		swapBytes(buf.Data, width)
	}
	return buf, nil
}

func swapBytes(data []byte, width int) {
	if width < 2 {
		return
	}
	for i := 0; i+width <= len(data); i += width {
		for a, b := i, i+width-1; a < b; a, b = a+1, b-1 {
			data[a], data[b] = data[b], data[a]
		}
	}
}

// Stats returns the min, max and mean of the buffer, for listing output.
func (b *PixelBuffer) Stats() (min, max, mean float64) {
	n := b.Elements()
	if n == 0 {
		return 0, 0, 0
	}
	min = math.Inf(1)
	max = math.Inf(-1)
	sum := 0.0
	for i := 0; i < n; i++ {
		v := b.at(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(n)
}

// at returns element i as a float64, converting per the buffer's type.
func (b *PixelBuffer) at(i int) float64 {
	switch b.Type {
	case TypeUByte:
		return float64(b.Data[i])
	case TypeShort:
		return float64(int16(hostOrder.Uint16(b.Data[i*2:])))
	case TypeUShort:
		return float64(hostOrder.Uint16(b.Data[i*2:]))
	case TypeInt, TypeLong:
		return float64(int32(hostOrder.Uint32(b.Data[i*4:])))
	case TypeReal:
		return float64(math.Float32frombits(hostOrder.Uint32(b.Data[i*4:])))
	case TypeDouble:
		return math.Float64frombits(hostOrder.Uint64(b.Data[i*8:]))
	}
	return 0
}
