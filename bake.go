package layers

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

// BakedData holds a channel's baked samples, zstd-compressed in memory.
type BakedData struct {
	compressed []byte
	samples    int
}

// Samples returns the number of baked samples.
func (b *BakedData) Samples() int {
	if b == nil {
		return 0
	}
	return b.samples
}

// CompressedSize returns the stored payload size in bytes.
func (b *BakedData) CompressedSize() int {
	if b == nil {
		return 0
	}
	return len(b.compressed)
}

// encodeBake compresses samples for in-memory retention.
func encodeBake(samples []float32) (*BakedData, error) {
	raw := make([]byte, 4*len(samples))
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(sample))
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("layers: bake encoder: %w", err)
	}
	defer encoder.Close()

	return &BakedData{
		compressed: encoder.EncodeAll(raw, nil),
		samples:    len(samples),
	}, nil
}

// Decode decompresses the baked samples.
func (b *BakedData) Decode() ([]float32, error) {
	if b == nil {
		return nil, nil
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("layers: bake decoder: %w", err)
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(b.compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("layers: bake decode: %w", err)
	}
	if len(raw) != 4*b.samples {
		return nil, fmt.Errorf("layers: bake decode: expected %d bytes, got %d", 4*b.samples, len(raw))
	}

	samples := make([]float32, b.samples)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return samples, nil
}
