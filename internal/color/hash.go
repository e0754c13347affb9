package color

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "hash/fnv"

// Mode selects how the variance scalars are derived.
type Mode int

const (
	// ModeRandom draws fresh scalars per frame from an LCG seeded at render
	// start.
	ModeRandom Mode = iota
	// ModeHash derives scalars from the frame name so identical names get
	// identical colors across runs.
	ModeHash
	// ModeDeterministic derives a single scalar from an FNV-1a hash of the
	// name; a stricter consistency guarantee than ModeHash.
	ModeDeterministic
)

// lcg is a 32-bit linear congruential generator (Numerical Recipes
// constants). One instance is seeded per render so the default mode is
// reproducible within a run but varies across runs only via the seed.
type lcg struct {
	state uint32
}

func newLCG(seed uint32) *lcg {
	return &lcg{state: seed}
}

func (g *lcg) next() float64 {
	g.state = g.state*1664525 + 1013904223
	return float64(g.state) / float64(1<<32)
}

// namehash maps a frame name to [0,1], weighting the first characters so
// related names land near each other. A "module`" prefix is dropped first so
// the hash reflects the symbol. The weight decays geometrically by 0.70 per
// character and only the first three characters contribute.
func namehash(name []byte) float64 {
	if i := indexByte(name, '`'); i >= 0 {
		name = name[i+1:]
	}
	vector := 0.0
	weight := 1.0
	maxV := 1.0
	mod := 10
	for _, c := range name {
		i := float64(int(c) % mod)
		vector += (i / float64(mod-1)) * weight
		maxV += weight
		mod++
		weight *= 0.70
		if mod > 12 {
			break
		}
	}
	return 1.0 - vector/maxV
}

func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

// fnvUnit hashes the name with 64-bit FNV-1a and scales into [0,1).
func fnvUnit(name string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return float64(h.Sum64()) / float64(1<<64)
}
