// Package codec implements the mozlz4 container the browser uses for its
// compressed JSON stores.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"mozsearch/internal/settings"
)

// Magic is the mozlz4 file header.
var Magic = []byte("mozLz40\x00")

const headerSize = 8 + 4

// maxDecodedSize bounds the size header accepted by Decompress.
const maxDecodedSize = 256 << 20

// ErrCodecUnavailable is returned when packaging is attempted without a codec.
var ErrCodecUnavailable = errors.New("PKG_CODEC_MISSING")

// Codec compresses a rendered document into the on-disk container.
type Codec interface {
	Compress(src []byte) ([]byte, error)
}

// MozLz4 writes magic, little-endian uncompressed size, then one LZ4 block.
type MozLz4 struct{}

func (MozLz4) Compress(src []byte) ([]byte, error) {
	out := make([]byte, headerSize+lz4.CompressBlockBound(len(src)))
	copy(out, Magic)
	binary.LittleEndian.PutUint32(out[len(Magic):], uint32(len(src)))
	if len(src) == 0 {
		return out[:headerSize], nil
	}
	var c lz4.Compressor
	n, err := c.CompressBlock(src, out[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("LZ4_COMPRESS: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("LZ4_COMPRESS: empty block for %d input bytes", len(src))
	}
	return out[:headerSize+n], nil
}

// Decompress reverses MozLz4.Compress.
func Decompress(blob []byte) ([]byte, error) {
	if len(blob) < headerSize || !bytes.Equal(blob[:len(Magic)], Magic) {
		return nil, fmt.Errorf("LZ4_MAGIC: not a mozlz4 file")
	}
	size := binary.LittleEndian.Uint32(blob[len(Magic):headerSize])
	if size > maxDecodedSize {
		return nil, fmt.Errorf("LZ4_SIZE: declared size %d exceeds limit", size)
	}
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	n, err := lz4.UncompressBlock(blob[headerSize:], out)
	if err != nil {
		return nil, fmt.Errorf("LZ4_DECOMPRESS: %w", err)
	}
	if n != int(size) {
		return nil, fmt.Errorf("LZ4_DECOMPRESS: got %d bytes, header says %d", n, size)
	}
	return out, nil
}

// Package compresses a finalized document with c.
func Package(c Codec, doc *settings.Final) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no compression codec configured", ErrCodecUnavailable)
	}
	if doc == nil {
		return nil, fmt.Errorf("PKG_DOCUMENT: nil document")
	}
	return c.Compress(doc.Bytes())
}
