package statistic

import (
	"bytes"
	"fmt"
	"tripgen/internal/statistic/interfaces"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

// Decompress passes through values that are not zstd frames, which is how
// records written before compression was enabled are stored.
func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	if !IsCompressed(val) {
		return val, nil
	}
	return z.decoder.DecodeAll(val, nil)
}

func IsCompressed(val []byte) bool {
	return bytes.HasPrefix(val, zstdMagic)
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}
