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
	"os"

	"sigs.k8s.io/yaml"

	"github.com/hoplight/nockvm/vm"
)

// Config is the on-disk configuration for a nockeval invocation: how many
// ticks a single Eval gets, where its content-addressed store lives, and
// which codec that store compresses values with.
type Config struct {
	TickCap     uint64 `json:"tickCap"`
	StoreDir    string `json:"storeDir"`
	Compression string `json:"compression"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		TickCap:     10_000_000,
		StoreDir:    "",
		Compression: "zstd",
	}
}

// LoadConfig reads and parses a YAML (or JSON, which is a YAML subset)
// config file. sigs.k8s.io/yaml converts the document to JSON before
// unmarshaling, so the same json struct tags serve both formats.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("store: parsing config %s: %w", path, err)
	}
	if cfg.TickCap == 0 {
		return nil, fmt.Errorf("store: config %s: tickCap must be non-zero", path)
	}
	return cfg, nil
}

// Open constructs the Effector described by cfg: a DiskStore if StoreDir is
// set, or an in-memory MemStore otherwise.
func (c *Config) Open() (vm.Effector, error) {
	if c.StoreDir == "" {
		return NewMemStore(), nil
	}
	return NewDiskStore(c.StoreDir, c.Compression)
}
