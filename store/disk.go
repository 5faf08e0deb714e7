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
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore is a content-addressed Effector rooted in a directory. Every
// key is written to its own file, named by the base32 encoding of the key,
// compressed with a configured codec, and written atomically via
// CreateTemp+Rename so a crash mid-write never leaves a corrupt entry
// visible under its final name.
type DiskStore struct {
	root  string
	codec codec
	Log   func(format string, args ...interface{})
}

// NewDiskStore opens (creating if necessary) a DiskStore rooted at dir,
// compressing values with the named codec ("zstd", "s2", or "none"/"").
func NewDiskStore(dir, compression string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	c, err := codecByName(compression)
	if err != nil {
		return nil, err
	}
	return &DiskStore{root: dir, codec: c}, nil
}

func (d *DiskStore) pathFor(key []byte) string {
	return filepath.Join(d.root, base32.StdEncoding.EncodeToString(key))
}

// entry layout: 4-byte little-endian uncompressed length, then the
// compressed payload. The length lets decompress pre-size its destination
// buffer the way store's codecs require.
func encodeEntry(c codec, value []byte) []byte {
	compressed := c.compress(value)
	out := make([]byte, 4+len(compressed))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(value)))
	copy(out[4:], compressed)
	return out
}

func decodeEntry(c codec, raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("store: truncated entry (%d bytes)", len(raw))
	}
	size := binary.LittleEndian.Uint32(raw[:4])
	return c.decompress(raw[4:], int(size))
}

func (d *DiskStore) Load(key []byte) ([]byte, bool) {
	raw, err := os.ReadFile(d.pathFor(key))
	if err != nil {
		return nil, false
	}
	value, err := decodeEntry(d.codec, raw)
	if err != nil {
		if d.Log != nil {
			d.Log("store: decode %s: %s", d.pathFor(key), err)
		}
		return nil, false
	}
	return value, true
}

func (d *DiskStore) Store(key, value []byte) {
	if err := d.writeFile(d.pathFor(key), encodeEntry(d.codec, value)); err != nil && d.Log != nil {
		d.Log("store: write %s: %s", d.pathFor(key), err)
	}
}

func (d *DiskStore) writeFile(fullpath string, buf []byte) error {
	dir, base := filepath.Split(fullpath)
	tmp, err := os.CreateTemp(dir, base)
	if err != nil {
		return err
	}
	_, err = tmp.Write(buf)
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), fullpath); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (d *DiskStore) NearestNeighbor(point [32]byte) [32]byte { return point }

func (d *DiskStore) Random(buf []byte) { _, _ = rand.Read(buf) }

func (d *DiskStore) Send(destination [32]byte, message []byte, localCost uint64) {
	if d.Log != nil {
		d.Log("store: send to %x dropped (%d bytes, cost %d)", destination, len(message), localCost)
	}
}
