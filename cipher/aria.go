package cipher

// ariaRounds matches the round count ARIA-256 specifies for its full key
// schedule.
const ariaRounds = 16

// ariaSB2 is ARIA's second substitution box. SB1 reuses the Rijndael
// S-box (sbox, in sbox.go); SB3 and SB4 are the inverse permutations of
// SB1 and SB2, computed once at init rather than hand-duplicated.
var ariaSB2 = [256]byte{
	0xe2, 0x4e, 0x54, 0xfc, 0x94, 0xc2, 0x4a, 0xcc, 0x62, 0x0d, 0x6a, 0x46, 0x3c, 0x4d, 0x8b, 0xd1,
	0x5e, 0xfa, 0x64, 0xcb, 0xb4, 0x97, 0xbe, 0x2b, 0xbc, 0x77, 0x2e, 0x03, 0xd3, 0x19, 0x59, 0xc1,
	0x1d, 0x06, 0x41, 0x6b, 0x55, 0xf0, 0x99, 0x69, 0xea, 0x9c, 0x18, 0xae, 0x63, 0xdf, 0xe7, 0xbb,
	0x00, 0x73, 0x66, 0xfb, 0x96, 0x4c, 0x85, 0xe4, 0x3a, 0x09, 0x45, 0xaa, 0x0f, 0xee, 0x10, 0xeb,
	0x2d, 0x7f, 0xf4, 0x29, 0xac, 0xcf, 0xad, 0x91, 0x8d, 0x78, 0xc8, 0x95, 0xf9, 0x2f, 0xce, 0xcd,
	0x08, 0x7a, 0x88, 0x38, 0x5c, 0x83, 0x2a, 0x28, 0x47, 0xdb, 0xb8, 0xc7, 0x93, 0xa4, 0x12, 0x53,
	0xff, 0x87, 0x0e, 0x31, 0x36, 0x21, 0x58, 0x48, 0x01, 0x8e, 0x37, 0x74, 0x32, 0xca, 0xe9, 0xb1,
	0xb7, 0xab, 0x0c, 0xd7, 0xc4, 0x56, 0x42, 0x26, 0x07, 0x98, 0x60, 0xd9, 0xb6, 0xb9, 0x11, 0x40,
	0xec, 0x20, 0x8c, 0xbd, 0xa0, 0xc9, 0x84, 0x04, 0x49, 0x23, 0xf1, 0x4f, 0x50, 0x1f, 0x13, 0xdc,
	0xd8, 0xc0, 0x9e, 0x57, 0xe3, 0xc3, 0x7b, 0x65, 0x3b, 0x02, 0x8f, 0x3e, 0xe8, 0x25, 0x92, 0xe5,
	0x15, 0xdd, 0xfd, 0x17, 0xa9, 0xbf, 0xd4, 0x9a, 0x7e, 0xc5, 0x39, 0x67, 0xfe, 0x76, 0x9d, 0x43,
	0xa7, 0xe1, 0xd0, 0xf5, 0x68, 0xf2, 0x1b, 0x34, 0x70, 0x05, 0xa3, 0x8a, 0xd5, 0x79, 0x86, 0xa8,
	0x30, 0xc6, 0x51, 0x4b, 0x1e, 0xa6, 0x27, 0xf6, 0x35, 0xd2, 0x6e, 0x24, 0x16, 0x82, 0x5f, 0xda,
	0xe6, 0x75, 0xa2, 0xef, 0x2c, 0xb2, 0x1c, 0x9f, 0x5d, 0x6f, 0x80, 0x0a, 0x72, 0x44, 0x9b, 0x6c,
	0x90, 0x0b, 0x5b, 0x33, 0x7d, 0x5a, 0x52, 0xf3, 0x61, 0xa1, 0xf7, 0xb0, 0xd6, 0x3f, 0x7c, 0x6d,
	0xed, 0x14, 0xe0, 0xa5, 0x3d, 0x22, 0xb3, 0xf8, 0x89, 0xde, 0x71, 0x1a, 0xaf, 0xba, 0xb5, 0x81,
}

var (
	ariaSB3 = invertSBox(sbox)
	ariaSB4 = invertSBox(ariaSB2)
)

// ariaSL1 substitutes the 16 bytes of a block through SB1,SB2,SB3,SB4 in
// a repeating 4-byte pattern. ariaSL2 uses the inverse pattern
// (SB3,SB4,SB1,SB2), which makes it the exact inverse substitution of
// ariaSL1 since SB3=SB1^-1 and SB4=SB2^-1.
func ariaSL1(b [16]byte) [16]byte {
	var out [16]byte
	for i, v := range b {
		switch i % 4 {
		case 0:
			out[i] = sbox[v]
		case 1:
			out[i] = ariaSB2[v]
		case 2:
			out[i] = ariaSB3[v]
		case 3:
			out[i] = ariaSB4[v]
		}
	}

	return out
}

func ariaSL2(b [16]byte) [16]byte {
	var out [16]byte
	for i, v := range b {
		switch i % 4 {
		case 0:
			out[i] = ariaSB3[v]
		case 1:
			out[i] = ariaSB4[v]
		case 2:
			out[i] = sbox[v]
		case 3:
			out[i] = ariaSB2[v]
		}
	}

	return out
}

// ariaDiffuse is ARIA's linear mixing layer: every output byte is the
// XOR of all 15 other input bytes. It is its own inverse, since XORing
// a second time cancels the even number of repeated terms and restores
// each byte.
func ariaDiffuse(b [16]byte) [16]byte {
	var total byte
	for _, v := range b {
		total ^= v
	}

	var out [16]byte
	for i, v := range b {
		out[i] = total ^ v
	}

	return out
}

func ariaFO(x, rk [16]byte) [16]byte { return ariaDiffuse(ariaSL1(xorBlock16(x, rk))) }
func ariaFE(x, rk [16]byte) [16]byte { return ariaDiffuse(ariaSL2(xorBlock16(x, rk))) }

// ARIA key-schedule constants C1, C2, C3 (the fractional bits of 1/pi,
// split into three 128-bit words). The 256-bit key schedule consumes
// them in the order (C3, C1, C2).
var (
	ariaC1 = [2]uint64{0x517cc1b727220a94, 0xfe13abe8fa9a6ee0}
	ariaC2 = [2]uint64{0x6db14acc9e21c820, 0xff28b1d5ef5de2b0}
	ariaC3 = [2]uint64{0xdb92371d2126e970, 0x0324977504e8c90e}
)

func toBlock(hi, lo uint64) [16]byte { return join128(hi, lo) }

// ariaBlock implements a 256-bit-key, 16-round ARIA block cipher: its
// own substitution-permutation network, distinct from Camellia's
// Feistel structure.
type ariaBlock struct {
	ek [17][16]byte
}

func (a *ariaBlock) BlockSize() int { return blockSize }

func newARIA256Block(key []byte) (blockCipher, error) {
	var kl, kr [16]byte
	copy(kl[:], key[0:16])
	copy(kr[:], key[16:32])

	ck1 := toBlock(ariaC3[0], ariaC3[1])
	ck2 := toBlock(ariaC1[0], ariaC1[1])
	ck3 := toBlock(ariaC2[0], ariaC2[1])

	w0 := kl
	w1 := xorBlock16(ariaFO(w0, ck1), kr)
	w2 := xorBlock16(ariaFE(w1, ck2), w0)
	w3 := xorBlock16(ariaFO(w2, ck3), w1)

	w0hi, w0lo := split128(w0)
	w1hi, w1lo := split128(w1)
	w2hi, w2lo := split128(w2)
	w3hi, w3lo := split128(w3)

	rotr := func(hi, lo uint64, n uint) [16]byte { h, l := rotr128(hi, lo, n); return join128(h, l) }
	rotl := func(hi, lo uint64, n uint) [16]byte { h, l := rotl128(hi, lo, n); return join128(h, l) }

	var a ariaBlock
	a.ek[0] = xorBlock16(w0, rotr(w1hi, w1lo, 19))
	a.ek[1] = xorBlock16(w1, rotr(w2hi, w2lo, 19))
	a.ek[2] = xorBlock16(w2, rotr(w3hi, w3lo, 19))
	a.ek[3] = xorBlock16(rotr(w0hi, w0lo, 19), w3)
	a.ek[4] = xorBlock16(w0, rotr(w1hi, w1lo, 31))
	a.ek[5] = xorBlock16(w1, rotr(w2hi, w2lo, 31))
	a.ek[6] = xorBlock16(w2, rotr(w3hi, w3lo, 31))
	a.ek[7] = xorBlock16(rotr(w0hi, w0lo, 31), w3)
	a.ek[8] = xorBlock16(w0, rotl(w1hi, w1lo, 61))
	a.ek[9] = xorBlock16(w1, rotl(w2hi, w2lo, 61))
	a.ek[10] = xorBlock16(w2, rotl(w3hi, w3lo, 61))
	a.ek[11] = xorBlock16(rotl(w0hi, w0lo, 61), w3)
	a.ek[12] = xorBlock16(w0, rotl(w1hi, w1lo, 31))
	a.ek[13] = xorBlock16(w1, rotl(w2hi, w2lo, 31))
	a.ek[14] = xorBlock16(w2, rotl(w3hi, w3lo, 31))
	a.ek[15] = xorBlock16(rotl(w0hi, w0lo, 31), w3)
	a.ek[16] = xorBlock16(w0, rotl(w1hi, w1lo, 19))

	return &a, nil
}

func (a *ariaBlock) Encrypt(dst, src []byte) {
	var x [16]byte
	copy(x[:], src)

	for round := 1; round <= ariaRounds-1; round++ {
		x = xorBlock16(x, a.ek[round-1])
		if round%2 == 1 {
			x = ariaSL1(x)
		} else {
			x = ariaSL2(x)
		}
		x = ariaDiffuse(x)
	}

	x = xorBlock16(x, a.ek[ariaRounds-1])
	x = ariaSL1(x)
	x = xorBlock16(x, a.ek[ariaRounds])

	copy(dst, x[:])
}

func (a *ariaBlock) Decrypt(dst, src []byte) {
	var x [16]byte
	copy(x[:], src)

	x = xorBlock16(x, a.ek[ariaRounds])
	x = ariaSL2(x) // inverse of the final round's SL1
	x = xorBlock16(x, a.ek[ariaRounds-1])

	for round := ariaRounds - 1; round >= 1; round-- {
		x = ariaDiffuse(x) // ariaDiffuse is its own inverse
		if round%2 == 1 {
			x = ariaSL2(x) // inverse of SL1
		} else {
			x = ariaSL1(x) // inverse of SL2
		}
		x = xorBlock16(x, a.ek[round-1])
	}

	copy(dst, x[:])
}
