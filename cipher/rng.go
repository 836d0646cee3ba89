package cipher

// xorShift128 is a deterministic, non-cryptographic PRNG used only to
// expand a small encryption seed into key and IV material. It is not
// suitable for generating the seed itself.
type xorShift128 struct {
	x, y, z, w uint32
}

// newXorShift128 seeds the generator from the high 24 bits of the
// container's encryption seed, spun forward spin times before the caller
// draws any output. The low 96 bits of state are fixed constants so that a
// given (seedHigh24, spin) pair always produces the same stream.
func newXorShift128(seedHigh24 uint32, spin uint8) *xorShift128 {
	r := &xorShift128{
		x: seedHigh24 ^ 0x9E3779B9,
		y: 0x243F6A88,
		z: 0x85A308D3,
		w: 0x13198A2E,
	}
	for i := uint8(0); i < spin; i++ {
		r.next()
	}

	return r
}

// next advances the generator and returns the next 32-bit word.
func (r *xorShift128) next() uint32 {
	t := r.x ^ (r.x << 11)
	r.x, r.y, r.z = r.y, r.z, r.w
	r.w = r.w ^ (r.w >> 19) ^ t ^ (t >> 8)

	return r.w
}

// fill writes successive generator output into dst, 4 bytes (big-endian)
// at a time.
func (r *xorShift128) fill(dst []byte) {
	for i := 0; i < len(dst); i += 4 {
		v := r.next()
		n := 4
		if i+n > len(dst) {
			n = len(dst) - i
		}
		for j := 0; j < n; j++ {
			dst[i+j] = byte(v >> (24 - 8*j))
		}
	}
}
