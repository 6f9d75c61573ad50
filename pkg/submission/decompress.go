package submission

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

var (
	magicBZip2 = []byte("BZh")
	magicXZ    = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
)

// maxDecompressedSize is the limit of a decompressed document.
var maxDecompressedSize int64 = 256 << 20

// Decompress returns the decompressed document if it is compressed with
// bzip2 or xz (detected by magic bytes), otherwise the input as is.
func Decompress(b []byte) ([]byte, error) {
	var (
		r      io.Reader
		format string
	)
	switch {
	case bytes.HasPrefix(b, magicBZip2):
		format = "bzip2"
		r = bzip2.NewReader(bytes.NewReader(b))
	case bytes.HasPrefix(b, magicXZ):
		format = "xz"
		xzReader, err := xz.ReaderConfig{SingleStream: true}.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, ErrDecompress{Format: format, Err: fmt.Errorf("unable to create XZ reader: %w", err)}
		}
		r = xzReader
	default:
		return b, nil
	}

	var decompressed bytes.Buffer
	n, err := io.Copy(&decompressed, io.LimitReader(r, maxDecompressedSize+1))
	if err != nil {
		return nil, ErrDecompress{Format: format, Err: err}
	}
	if n > maxDecompressedSize {
		return nil, ErrDecompress{
			Format: format,
			Err:    fmt.Errorf("decompressed data exceeds %d bytes", maxDecompressedSize),
		}
	}
	return decompressed.Bytes(), nil
}
