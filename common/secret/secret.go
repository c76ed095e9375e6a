// Package secret provides symmetric encryption for stored third-party
// credentials such as social OAuth tokens.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

var ErrDecrypt = errors.New("secret: decryption failed")

// Cipher seals and opens short secrets with nacl secretbox. The random
// 24-byte nonce is prefixed to the ciphertext.
type Cipher struct {
	key [32]byte
}

// NewCipher derives the secretbox key from the configured passphrase.
func NewCipher(passphrase string) *Cipher {
	c := &Cipher{}
	c.key = sha256.Sum256([]byte(passphrase))
	return c
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", errors.Wrap(err, "secret: read nonce")
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "secret: decode ciphertext")
	}
	if len(sealed) < 24 {
		return "", ErrDecrypt
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, &c.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}
