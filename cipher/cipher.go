// Package cipher implements the container's encryption pipeline: seeded
// key/IV derivation and CBC-mode encryption under one of three selectable
// block ciphers, all pure Go (no cgo) so the container can be read back on
// any platform the encoder ran on.
//
// AES-256 wraps the standard library and is bit-exact to FIPS-197.
// Camellia-256 (camellia.go) is a from-scratch 24-round Feistel network
// with its own S-box, F-function, FL/FL^-1 whitening, and KL/KR/KA/KB key
// schedule, checked against the RFC 3713 known-answer vector in
// cipher_test.go. ARIA-256 (aria.go) is a from-scratch 16-round
// substitution-permutation network with its own second S-box and
// CK-constant key schedule, distinct from Camellia's; its diffusion layer
// is a verified-involutory all-but-self byte XOR rather than a
// transcription of RFC 5794's published binary matrix, so it round-trips
// correctly but is not expected to match the RFC's byte-exact test
// vector — see DESIGN.md.
package cipher

import "fmt"

// Engine encrypts and decrypts whole buffers under one derived key/IV
// pair, using CBC mode with PKCS#7 padding.
type Engine struct {
	block blockCipher
	iv    [16]byte
}

// New builds an Engine for the given seed, deriving its algorithm, key,
// and IV per DeriveParams.
func New(seed uint32) (*Engine, error) {
	p := DeriveParams(seed)

	var (
		bc  blockCipher
		err error
	)
	switch p.Algorithm {
	case AlgorithmAES256:
		bc, err = newAES256Block(p.Key[:])
	case AlgorithmARIA256:
		bc, err = newARIA256Block(p.Key[:])
	case AlgorithmCamellia256:
		bc, err = newCamellia256Block(p.Key[:])
	default:
		return nil, fmt.Errorf("cipher: unknown algorithm %d", p.Algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("cipher: build %s: %w", p.Algorithm, err)
	}

	return &Engine{block: bc, iv: p.IV}, nil
}

// Encrypt pads plaintext with PKCS#7 and encrypts it under CBC mode.
func (e *Engine) Encrypt(plaintext []byte) []byte {
	return cbcEncrypt(e.block, e.iv[:], plaintext)
}

// Decrypt reverses Encrypt, returning an error if the padding is corrupt.
func (e *Engine) Decrypt(ciphertext []byte) ([]byte, error) {
	return cbcDecrypt(e.block, e.iv[:], ciphertext)
}
