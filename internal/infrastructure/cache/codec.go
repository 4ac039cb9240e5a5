// Package cache provides the Redis-backed show detail cache.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Payload markers, first byte of every cached value.
const (
	markerJSON byte = 'j'
	markerZstd byte = 'z'
)

// Codec serializes values to JSON and zstd-compresses payloads larger than
// the threshold. Safe for concurrent use.
type Codec struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

// NewCodec creates a codec. threshold <= 0 compresses everything.
func NewCodec(threshold int) (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder, threshold: threshold}, nil
}

// Encode marshals v.
func (c *Codec) Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if len(raw) < c.threshold {
		return append([]byte{markerJSON}, raw...), nil
	}
	out := make([]byte, 1, len(raw)/2+1)
	out[0] = markerZstd
	return c.encoder.EncodeAll(raw, out), nil
}

// Decode unmarshals data produced by Encode into v.
func (c *Codec) Decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty payload")
	}
	raw := data[1:]
	switch data[0] {
	case markerJSON:
	case markerZstd:
		var err error
		if raw, err = c.decoder.DecodeAll(raw, nil); err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
	default:
		return fmt.Errorf("unknown payload marker %q", data[0])
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
