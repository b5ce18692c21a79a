package oif

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/jpfielding/oif2fits.go/pkg/fits"
	"github.com/jpfielding/oif2fits.go/pkg/util"
	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// Options control one conversion pipeline. Pipelines are isolated: each owns
// its buffers for its lifetime, so independent files may be converted
// concurrently.
type Options struct {
	// ForceSwap overrides all byte-order inference, header and pixels both.
	ForceSwap bool
	// CollectFindings enables accumulation of non-fatal validation findings.
	// Purely a cost/verbosity knob; decoded values are unaffected.
	CollectFindings bool
}

// Image is the decoded form of one legacy header/pixel file pair.
type Image struct {
	Descriptor *ImageDescriptor
	Keywords   []KeywordRecord
	Pixels     *PixelBuffer
	Findings   valid.Findings
}

// Decode runs detection, header decode, user-area parse and pixel read over
// in-memory header and pixel file contents. Any fatal error aborts this
// file's pipeline only.
func Decode(hdr, pix []byte, opts Options) (*Image, error) {
	var findings *valid.Findings
	if opts.CollectFindings {
		findings = &valid.Findings{}
	}

	cls, err := Detect(hdr, opts.ForceSwap)
	if err != nil {
		return nil, err
	}
	desc, err := DecodeHeader(hdr, cls, findings)
	if err != nil {
		return nil, err
	}
	keywords := ParseUserArea(UserAreaBytes(hdr, cls), findings)
	pixels, err := ReadPixels(desc, pix, opts.ForceSwap, findings)
	if err != nil {
		return nil, err
	}

	img := &Image{Descriptor: desc, Keywords: keywords, Pixels: pixels}
	if findings != nil {
		img.Findings = *findings
	}
	return img, nil
}

// DecodeFiles reads both files fully into memory and decodes them. Legacy
// file sizes are bounded, so streaming is unnecessary.
func DecodeFiles(hdrPath, pixPath string, opts Options) (*Image, error) {
	hdr, err := ReadFile(hdrPath)
	if err != nil {
		return nil, fmt.Errorf("reading header %s: %w", hdrPath, err)
	}
	pix, err := ReadFile(pixPath)
	if err != nil {
		return nil, fmt.Errorf("reading pixels %s: %w", pixPath, err)
	}
	return Decode(hdr, pix, opts)
}

// ReadFile loads a file fully into memory, transparently expanding gzip so
// archived ".imh.gz"/".pix.gz" pairs convert without an unpack step.
func ReadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", path, err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}
	return raw, nil
}

// ToFITS maps the decoded image onto the output container: structural cards
// from the descriptor, the user-area keywords re-rendered in their original
// order, provenance history, and the payload. source names the input file in
// the provenance card.
func (img *Image) ToFITS(source string) (*fits.Image, error) {
	out := &fits.Image{Shape: img.Pixels.Shape, Data: img.Pixels.Data}

	switch img.Pixels.Type {
	case TypeUByte:
		out.Bitpix = 8
	case TypeShort:
		out.Bitpix = 16
	case TypeUShort:
		// no unsigned BITPIX; the customary offset makes 16-bit work
		out.Bitpix = 16
		out.Scaled = true
		out.BScale = 1
		out.BZero = 32768
	case TypeInt, TypeLong:
		out.Bitpix = 32
	case TypeReal:
		out.Bitpix = -32
	case TypeDouble:
		out.Bitpix = -64
	default:
		return nil, fmt.Errorf("%w: datatype code %d (%s)", ErrUnsupportedPixelType, int32(img.Pixels.Type), img.Pixels.Type)
	}

	if img.Descriptor.Title != "" {
		out.AddCard("OBJECT", img.Descriptor.Title, "image title")
	}
	for _, kw := range img.Keywords {
		if kw.Text {
			if kw.Name == "COMMENT" {
				out.AddComment(kw.Value.(string))
			} else {
				out.AddHistory(kw.Value.(string))
			}
			continue
		}
		out.AddCard(kw.Name, normalizeCardValue(kw.Value), kw.Comment)
	}
	out.AddCard("FILEID", util.HashUUID(img.Pixels.Data), "content-derived identifier")
	out.AddHistory("New copy of " + source)
	return out, nil
}

// normalizeCardValue maps parsed keyword values onto the card renderer's
// accepted types.
func normalizeCardValue(v any) any {
	switch val := v.(type) {
	case string, bool, int64, float64:
		return val
	case int:
		return int64(val)
	case float32:
		return float64(val)
	}
	return fmt.Sprintf("%v", v)
}
