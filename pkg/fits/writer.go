package fits

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// hostIsLittle reports whether this machine stores integers little-endian.
var hostIsLittle = func() bool {
	var probe uint16 = 1
	return *(*byte)(unsafe.Pointer(&probe)) == 1
}()

// WriteFile encodes an image to a file.
func WriteFile(path string, img *Image, findings *valid.Findings) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Encode(f, img, findings)
}

// Encode writes the container: header cards padded to a block boundary, then
// the payload converted to big-endian and zero-padded to a block boundary.
// Encoding the same image twice produces byte-identical output.
func Encode(w io.Writer, img *Image, findings *valid.Findings) (int64, error) {
	width := img.ElementWidth()
	switch img.Bitpix {
	case 8, 16, 32, -32, -64:
	default:
		return 0, fmt.Errorf("fits: invalid BITPIX %d", img.Bitpix)
	}
	if want := img.Elements() * width; len(img.Data) != want {
		return 0, fmt.Errorf("fits: payload is %d bytes, shape requires %d", len(img.Data), want)
	}

	cw := &CountingWriter{Writer: w}

	cards := img.headerCards()
	checkNames(cards, findings)
	if rem := len(cards) % CardsPerBlock; rem != 0 {
		findings.Infof("", "%d header cards; final block padded with %d blank cards", len(cards), CardsPerBlock-rem)
	}
	for _, c := range cards {
		if _, err := io.WriteString(cw, c.Render(findings)); err != nil {
			return cw.Count.Load(), err
		}
	}
	if err := padBlock(cw, ' '); err != nil {
		return cw.Count.Load(), err
	}

	payload := img.Data
	if hostIsLittle && width > 1 {
		payload = swappedCopy(img.Data, width)
	}
	if _, err := cw.Write(payload); err != nil {
		return cw.Count.Load(), err
	}
	if err := padBlock(cw, 0); err != nil {
		return cw.Count.Load(), err
	}
	return cw.Count.Load(), nil
}

func padBlock(cw *CountingWriter, fill byte) error {
	rem := int(cw.Count.Load() % BlockSize)
	if rem == 0 {
		return nil
	}
	pad := make([]byte, BlockSize-rem)
	if fill != 0 {
		for i := range pad {
			pad[i] = fill
		}
	}
	_, err := cw.Write(pad)
	return err
}

// swappedCopy returns a byte-swapped copy of data, width bytes per element.
// The input is never mutated.
func swappedCopy(data []byte, width int) []byte {
	out := make([]byte, len(data))
	for i := 0; i+width <= len(data); i += width {
		for j := 0; j < width; j++ {
			out[i+j] = data[i+width-1-j]
		}
	}
	return out
}

// CountingWriter wraps a writer and tracks bytes written.
type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		c.Count.Add(int64(n))
	}
	return n, err
}
