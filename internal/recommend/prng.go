// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package recommend

// unitValue hashes (seed, id) to a uniform value in [0, 1). It is a pure
// function of the pair — independent of insertion order and of any
// generator state — so random orderings are reproducible for a process
// lifetime given a fixed seed.
//
// The mix is the splitmix64 finalizer. Not cryptographic.
func unitValue(seed int64, id int) float64 {
	x := uint64(seed) + uint64(int64(id))
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	// Take the top 53 bits for a full-precision float in [0, 1).
	return float64(x>>11) / (1 << 53)
}
