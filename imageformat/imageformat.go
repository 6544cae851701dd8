// Package imageformat classifies firmware containers from their header.
package imageformat

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"sdkmatch/fileio"
	"sdkmatch/logger"

	"github.com/h2non/filetype"
)

type Layout string

const (
	MultiImage  Layout = "MultiImage"
	SingleImage Layout = "SingleImage"
	Unknown     Layout = "Unknown"
)

// Flashable reports whether the layout can be written to persistent storage.
func (l Layout) Flashable() bool {
	return l == MultiImage
}

const (
	headerSize    = 8
	sniffSize     = 261
	trailerLength = 16

	DefaultTolerance int64 = 100
)

// DefaultMagic marks a multicore image container.
var DefaultMagic = [4]byte{'M', 'S', 'T', 'R'}

// Inspector holds the header constants. Tolerance is the byte slack allowed
// between the length field and fileSize-16.
type Inspector struct {
	Magic     [4]byte
	Tolerance int64
}

func New(tolerance int64) *Inspector {
	return &Inspector{Magic: DefaultMagic, Tolerance: tolerance}
}

var Default = New(DefaultTolerance)

// Inspect reads the header of path and classifies it. It never fails:
// unreadable files are Unknown.
func (in *Inspector) Inspect(path string) Layout {
	header, size, err := fileio.ReadHeader(path, headerSize)
	if err != nil {
		logger.Debugf("Failed to read image header %s: %v", path, err)
		return Unknown
	}
	return in.Classify(header, size)
}

// Classify applies the header rules to the leading bytes of a file of the
// given total size.
func (in *Inspector) Classify(header []byte, fileSize int64) Layout {
	if len(header) < headerSize {
		return Unknown
	}
	if !bytes.Equal(header[:4], in.Magic[:]) {
		return Unknown
	}
	sentinel := int64(binary.LittleEndian.Uint32(header[4:8]))
	if sentinel == 1 {
		return SingleImage
	}
	diff := sentinel - (fileSize - trailerLength)
	if diff < 0 {
		diff = -diff
	}
	if diff < in.Tolerance {
		return MultiImage
	}
	return Unknown
}

// Details is the extended header view used by the inspect command.
type Details struct {
	Path       string `json:"path"`
	Layout     Layout `json:"layout"`
	Flashable  bool   `json:"flashable"`
	SizeBytes  int64  `json:"size_bytes"`
	Magic      string `json:"magic"`
	MagicOK    bool   `json:"magic_ok"`
	Sentinel   uint32 `json:"sentinel"`
	Expected   int64  `json:"expected_length"`
	Tolerance  int64  `json:"tolerance"`
	Kind       string `json:"kind"`
	ReadFailed bool   `json:"read_failed,omitempty"`
}

// Describe reports the header fields alongside the classification and the
// sniffed content kind, which flags archives or ELF files misnamed as images.
func (in *Inspector) Describe(path string) Details {
	d := Details{Path: path, Layout: Unknown, Tolerance: in.Tolerance, Kind: "unknown"}
	header, size, err := fileio.ReadHeader(path, sniffSize)
	if err != nil {
		d.ReadFailed = true
		return d
	}
	d.SizeBytes = size
	d.Expected = size - trailerLength
	if len(header) >= 4 {
		d.Magic = hex.EncodeToString(header[:4])
		d.MagicOK = bytes.Equal(header[:4], in.Magic[:])
	}
	if len(header) >= headerSize {
		d.Sentinel = binary.LittleEndian.Uint32(header[4:8])
	}
	d.Layout = in.Classify(header, size)
	d.Flashable = d.Layout.Flashable()
	if kind, err := filetype.Match(header); err == nil && kind != filetype.Unknown && kind.MIME.Value != "" {
		d.Kind = kind.MIME.Value
	}
	return d
}
