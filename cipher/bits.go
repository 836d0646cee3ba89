package cipher

import "encoding/binary"

// rotl64 rotates a 64-bit word left by n bits (0 <= n < 64).
func rotl64(x uint64, n uint) uint64 {
	n &= 63
	if n == 0 {
		return x
	}

	return (x << n) | (x >> (64 - n))
}

// split128 reads a 16-byte big-endian block as a pair of 64-bit halves.
func split128(b [16]byte) (hi, lo uint64) {
	return binary.BigEndian.Uint64(b[0:8]), binary.BigEndian.Uint64(b[8:16])
}

// join128 packs a pair of 64-bit halves back into a 16-byte big-endian block.
func join128(hi, lo uint64) [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], hi)
	binary.BigEndian.PutUint64(b[8:16], lo)

	return b
}

// rotl128 rotates a 128-bit value (hi:lo, hi holding the most significant
// bits) left by n bits, 0 <= n < 128.
func rotl128(hi, lo uint64, n uint) (rhi, rlo uint64) {
	n %= 128
	if n == 0 {
		return hi, lo
	}
	if n == 64 {
		return lo, hi
	}
	if n < 64 {
		rhi = (hi << n) | (lo >> (64 - n))
		rlo = (lo << n) | (hi >> (64 - n))

		return rhi, rlo
	}

	m := n - 64
	rhi = (lo << m) | (hi >> (64 - m))
	rlo = (hi << m) | (lo >> (64 - m))

	return rhi, rlo
}

// rotr128 rotates a 128-bit value right by n bits.
func rotr128(hi, lo uint64, n uint) (rhi, rlo uint64) {
	return rotl128(hi, lo, 128-(n%128))
}

// xorBlock16 XORs two 16-byte blocks.
func xorBlock16(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}

	return out
}

// invertSBox builds the inverse permutation of a bijective 256-entry S-box.
func invertSBox(s [256]byte) [256]byte {
	var inv [256]byte
	for i, v := range s {
		inv[v] = byte(i)
	}

	return inv
}
