package oif

// Version identifies the on-disk generation of a legacy OIF file.
type Version int

const (
	V1 Version = 1 // native byte order, SPP (packed-short) strings
	V2 Version = 2 // fixed big-endian, plain byte strings
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	}
	return "unknown"
}

// Kind distinguishes the two files of an OIF image pair.
type Kind int

const (
	HeaderFile Kind = iota // ".imh" resident header
	PixelFile              // ".pix" companion pixel store
)

func (k Kind) String() string {
	if k == PixelFile {
		return "pixel"
	}
	return "header"
}

// StringEncoding selects how a layout stores embedded text.
type StringEncoding int

const (
	SPPStrings    StringEncoding = iota // one character per 16-bit word
	PackedStrings                       // one character per byte
)

// Field is a fixed-offset byte range within a legacy header.
type Field struct {
	Off int
	Len int
}

func (f Field) absent() bool { return f.Off < 0 }

// Layout carries the fixed offsets of one header generation as data. The two
// generations place semantically identical fields at different positions, so
// keeping the tables as data keeps the decoder free of version branching.
// Offsets not covered by any field are alignment padding and are never
// interpreted.
type Layout struct {
	Version Version
	Strings StringEncoding

	HeaderSize    int // fixed size of the ".imh" resident header
	PixHeaderSize int // fixed size of the ".pix" file header
	UserArea      int // byte offset where the free-text keyword block begins

	// int32 fields
	HdrLen  Field // header length as stored
	Pixtype Field // pixel datatype code
	Swapped Field // pixel store swapped relative to origin order (V2 only)
	Ndim    Field // dimension count
	Len     Field // 7 contiguous int32 logical axis lengths
	Physlen Field // 7 contiguous int32 physical axis lengths
	Ssmtype Field // subscript-map type
	Lutoff  Field // offset of subscript-map LUTs in the pixel file
	Pixoff  Field // offset of pixel data in the pixel file
	Hgmoff  Field // offset of the histogram block
	Blist   Field // offset of the bad-pixel list
	Szblist Field // allocated size of the bad-pixel list
	Nbpix   Field // bad-pixel count
	Ctime   Field // creation time, seconds since the legacy 1980 epoch
	Mtime   Field // modification time
	Limtime Field // time min/max were last updated

	// float32 fields
	Max Field
	Min Field

	// embedded strings, Len is the field capacity in bytes
	Pixfile Field
	Hdrfile Field
	Title   Field
	History Field
}

// V1Layout describes old native-order headers: 2052-byte resident header,
// 1024-byte pixel-file header, SPP strings.
var V1Layout = Layout{
	Version:       V1,
	Strings:       SPPStrings,
	HeaderSize:    2052,
	PixHeaderSize: 1024,
	UserArea:      2052,
	HdrLen:        Field{12, 4},
	Pixtype:       Field{16, 4},
	Swapped:       Field{-1, 0}, // no explicit order flag in V1
	Ndim:          Field{20, 4},
	Len:           Field{24, 28},
	Physlen:       Field{52, 28},
	Ssmtype:       Field{80, 4},
	Lutoff:        Field{84, 4},
	Pixoff:        Field{88, 4},
	Hgmoff:        Field{92, 4},
	Blist:         Field{96, 4},
	Szblist:       Field{100, 4},
	Nbpix:         Field{104, 4},
	Ctime:         Field{108, 4},
	Mtime:         Field{112, 4},
	Limtime:       Field{116, 4},
	Max:           Field{120, 4},
	Min:           Field{124, 4},
	Pixfile:       Field{412, 160},
	Hdrfile:       Field{572, 160},
	Title:         Field{732, 160},
	History:       Field{892, 1156},
}

// V2Layout describes fixed big-endian headers: 2046-byte resident header,
// 2048-byte pixel-file header, byte strings.
var V2Layout = Layout{
	Version:       V2,
	Strings:       PackedStrings,
	HeaderSize:    2046,
	PixHeaderSize: 2048,
	UserArea:      2046,
	HdrLen:        Field{6, 4},
	Pixtype:       Field{10, 4},
	Swapped:       Field{14, 4},
	Ndim:          Field{18, 4},
	Len:           Field{22, 28},
	Physlen:       Field{50, 28},
	Ssmtype:       Field{78, 4},
	Lutoff:        Field{82, 4},
	Pixoff:        Field{86, 4},
	Hgmoff:        Field{90, 4},
	Blist:         Field{94, 4},
	Szblist:       Field{98, 4},
	Nbpix:         Field{102, 4},
	Ctime:         Field{106, 4},
	Mtime:         Field{110, 4},
	Limtime:       Field{114, 4},
	Max:           Field{118, 4},
	Min:           Field{122, 4},
	Pixfile:       Field{126, 256},
	Hdrfile:       Field{382, 256},
	Title:         Field{638, 80},
	History:       Field{990, 1056},
}

// LayoutFor returns the offset table for a version.
func LayoutFor(v Version) *Layout {
	if v == V2 {
		return &V2Layout
	}
	return &V1Layout
}
