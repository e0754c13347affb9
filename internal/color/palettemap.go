package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// PaletteMap persists frame-name to color assignments across runs so the
// same function keeps the same color between flame graphs.
type PaletteMap struct {
	path   string
	colors map[string]string
	dirty  bool
}

// LoadPaletteMap reads a YAML map of frame name to "#rrggbb". A missing
// file yields an empty map; Save creates it.
func LoadPaletteMap(path string) (*PaletteMap, error) {
	m := &PaletteMap{path: path, colors: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading palette map")
	}
	if err := yaml.Unmarshal(data, &m.colors); err != nil {
		return nil, errors.Wrap(err, "parsing palette map")
	}
	if m.colors == nil {
		m.colors = make(map[string]string)
	}
	return m, nil
}

// Color returns the mapped color for name, assigning and recording the
// generated one on first sight.
func (m *PaletteMap) Color(name string, generate func() RGB) RGB {
	if hex, ok := m.colors[name]; ok {
		if c, err := parseRGBHex(hex); err == nil {
			return c
		}
	}
	c := generate()
	m.colors[name] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	m.dirty = true
	return c
}

// Save writes the map back if any assignment was added.
func (m *PaletteMap) Save() error {
	if !m.dirty {
		return nil
	}
	data, err := yaml.Marshal(m.colors)
	if err != nil {
		return errors.Wrap(err, "encoding palette map")
	}
	return errors.Wrap(os.WriteFile(m.path, data, 0644), "writing palette map")
}

func parseRGBHex(s string) (RGB, error) {
	hex, err := parseHexColor(s)
	if err != nil {
		return RGB{}, err
	}
	r, _ := strconv.ParseUint(hex[1:3], 16, 8)
	g, _ := strconv.ParseUint(hex[3:5], 16, 8)
	b, _ := strconv.ParseUint(hex[5:7], 16, 8)
	return RGB{uint8(r), uint8(g), uint8(b)}, nil
}
