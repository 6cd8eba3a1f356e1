package codec

import (
	"bytes"
	"fmt"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"io"
)

// --------------------------------------------------------------------------
// LZ4 (frame format)
// --------------------------------------------------------------------------

// NewLZ4Compressor creates a compressor using the lz4 frame format
func NewLZ4Compressor() ICompressor {
	return &lz4CompressorImpl{}
}

type lz4CompressorImpl struct {
}

func (c lz4CompressorImpl) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c lz4CompressorImpl) Decompress(src []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	return io.ReadAll(zr)
}

// --------------------------------------------------------------------------
// Zstandard
// --------------------------------------------------------------------------

// NewZstdCompressor creates a compressor using zstandard.
// The encoder and decoder are shared, EncodeAll and DecodeAll are safe for concurrent use.
func NewZstdCompressor() (ICompressor, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &zstdCompressorImpl{enc: enc, dec: dec}, nil
}

type zstdCompressorImpl struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (c *zstdCompressorImpl) Compress(src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, nil), nil
}

func (c *zstdCompressorImpl) Decompress(src []byte) ([]byte, error) {
	return c.dec.DecodeAll(src, nil)
}

// --------------------------------------------------------------------------
// Snappy (block format)
// --------------------------------------------------------------------------

// NewSnappyCompressor creates a compressor using the snappy block format
func NewSnappyCompressor() ICompressor {
	return &snappyCompressorImpl{}
}

type snappyCompressorImpl struct {
}

func (c snappyCompressorImpl) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (c snappyCompressorImpl) Decompress(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}
