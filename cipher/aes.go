package cipher

import "crypto/aes"

// newAES256Block wraps the standard library's AES implementation (pure Go,
// no cgo) as a blockCipher. crypto/cipher.Block already has the exact
// method set blockCipher requires.
func newAES256Block(key []byte) (blockCipher, error) {
	return aes.NewCipher(key)
}
