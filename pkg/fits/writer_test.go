package fits

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

func i16image(shape []int, vals []int16) *Image {
	data := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.NativeEndian.PutUint16(data[i*2:], uint16(v))
	}
	return &Image{Bitpix: 16, Shape: shape, Data: data}
}

func TestEncode_BlockStructure(t *testing.T) {
	img := i16image([]int{3, 2}, []int16{1, 2, 3, 4, 5, 6})
	img.AddCard("OBJECT", "test field", "")

	var buf bytes.Buffer
	n, err := Encode(&buf, img, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, 0, buf.Len()%BlockSize)
	// one header block, one data block
	assert.Equal(t, 2*BlockSize, buf.Len())
}

func TestEncode_HeaderLayout(t *testing.T) {
	img := i16image([]int{3, 2}, make([]int16, 6))

	var buf bytes.Buffer
	_, err := Encode(&buf, img, nil)
	require.NoError(t, err)

	header := buf.String()[:BlockSize]
	assert.Equal(t, "SIMPLE  = ", header[:10])
	for _, want := range []string{"BITPIX", "NAXIS ", "NAXIS1", "NAXIS2", "END"} {
		idx := strings.Index(header, want)
		require.GreaterOrEqual(t, idx, 0, want)
		assert.Equal(t, 0, idx%CardSize, "%s starts a card", want)
	}
	// padding after END is blanks, not NULs
	end := strings.Index(header, "END")
	assert.Equal(t, strings.Repeat(" ", BlockSize-end-CardSize), header[end+CardSize:])
}

func TestEncode_PayloadIsBigEndian(t *testing.T) {
	img := i16image([]int{1}, []int16{0x0102})

	var buf bytes.Buffer
	_, err := Encode(&buf, img, nil)
	require.NoError(t, err)

	payload := buf.Bytes()[BlockSize:]
	assert.Equal(t, []byte{0x01, 0x02}, payload[:2])
	assert.Equal(t, bytes.Repeat([]byte{0}, BlockSize-2), payload[2:], "data padding is zero-filled")
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	img := i16image([]int{2}, []int16{0x0102, 0x0304})
	before := append([]byte(nil), img.Data...)

	var out bytes.Buffer
	_, err := Encode(&out, img, nil)
	require.NoError(t, err)
	assert.Equal(t, before, img.Data)
}

func TestEncode_ScaledCards(t *testing.T) {
	img := i16image([]int{2}, []int16{1, 2})
	img.Scaled, img.BZero, img.BScale = true, 32768, 1

	var out bytes.Buffer
	_, err := Encode(&out, img, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "BSCALE  = ")
	assert.Contains(t, out.String(), "BZERO   = ")
	assert.Contains(t, out.String(), "32768.0")
}

func TestEncode_InvalidBitpix(t *testing.T) {
	img := &Image{Bitpix: 24, Shape: []int{1}, Data: make([]byte, 3)}
	var out bytes.Buffer
	_, err := Encode(&out, img, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BITPIX")
}

func TestEncode_PayloadSizeMismatch(t *testing.T) {
	img := &Image{Bitpix: 16, Shape: []int{4}, Data: make([]byte, 6)}
	var out bytes.Buffer
	_, err := Encode(&out, img, nil)
	require.Error(t, err)
}

func TestEncode_PartialBlockNoted(t *testing.T) {
	// Five structural cards leave the header block mostly blank; that is
	// recorded as an informational finding, never a warning.
	img := i16image([]int{1}, []int16{1})
	var out bytes.Buffer
	findings := &valid.Findings{}
	_, err := Encode(&out, img, findings)
	require.NoError(t, err)
	assert.Empty(t, findings.Warnings())
	require.Len(t, *findings, 1)
	assert.Equal(t, valid.Info, (*findings)[0].Severity)
	assert.Contains(t, (*findings)[0].Message, "blank cards")
}

func TestEncode_FullBlockNotNoted(t *testing.T) {
	img := i16image([]int{1}, []int16{1})
	// pad the card count to exactly one block: four structural cards plus
	// END leave room for 31 commentary cards
	for i := 0; i < CardsPerBlock-5; i++ {
		img.AddHistory("fill")
	}
	var out bytes.Buffer
	findings := &valid.Findings{}
	_, err := Encode(&out, img, findings)
	require.NoError(t, err)
	assert.Empty(t, *findings)
	assert.Equal(t, 2*BlockSize, out.Len())
}

func TestEncode_CollisionWarningStillWrites(t *testing.T) {
	img := i16image([]int{1}, []int16{7})
	img.AddCard("object", "a", "")
	img.AddCard("OBJECT", "b", "")

	var out bytes.Buffer
	findings := &valid.Findings{}
	_, err := Encode(&out, img, findings)
	require.NoError(t, err)
	require.Len(t, findings.Warnings(), 1)
	assert.Equal(t, 2*BlockSize, out.Len())
}
