// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package store

import (
	"fmt"
	"runtime"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// codec wraps a third-party compression algorithm so DiskStore can treat
// every value it writes uniformly, the way compr.Compressor/Decompressor
// abstract over zstd and s2 for ion block data.
type codec interface {
	name() string
	compress(src []byte) []byte
	decompress(src []byte, size int) ([]byte, error)
}

type noneCodec struct{}

func (noneCodec) name() string                 { return "none" }
func (noneCodec) compress(src []byte) []byte   { return append([]byte(nil), src...) }
func (noneCodec) decompress(src []byte, size int) ([]byte, error) {
	if len(src) != size {
		return nil, fmt.Errorf("store: none codec length mismatch: have %d want %d", len(src), size)
	}
	return append([]byte(nil), src...), nil
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		return nil, err
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (z *zstdCodec) name() string { return "zstd" }

func (z *zstdCodec) compress(src []byte) []byte {
	return z.enc.EncodeAll(src, nil)
}

func (z *zstdCodec) decompress(src []byte, size int) ([]byte, error) {
	dst, err := z.dec.DecodeAll(src, make([]byte, 0, size))
	if err != nil {
		return nil, err
	}
	if len(dst) != size {
		return nil, fmt.Errorf("store: zstd length mismatch: have %d want %d", len(dst), size)
	}
	return dst, nil
}

type s2Codec struct{}

func (s2Codec) name() string { return "s2" }

func (s2Codec) compress(src []byte) []byte {
	return s2.Encode(nil, src)
}

func (s2Codec) decompress(src []byte, size int) ([]byte, error) {
	dst, err := s2.Decode(make([]byte, size), src)
	if err != nil {
		return nil, err
	}
	if len(dst) != size {
		return nil, fmt.Errorf("store: s2 length mismatch: have %d want %d", len(dst), size)
	}
	return dst, nil
}

// codecByName selects a compression codec by configuration name. An empty
// name and "none" both disable compression.
func codecByName(name string) (codec, error) {
	switch name {
	case "", "none":
		return noneCodec{}, nil
	case "zstd":
		return newZstdCodec()
	case "s2":
		return s2Codec{}, nil
	default:
		return nil, fmt.Errorf("store: unknown compression codec %q", name)
	}
}
