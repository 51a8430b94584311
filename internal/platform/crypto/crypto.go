package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Keeper encrypts sensitive blobs (MFA secrets, payslip PDFs) at rest with
// AES-256-GCM. An empty key yields a passthrough keeper.
type Keeper struct {
	key []byte
}

func New(rawKey string) (*Keeper, error) {
	if rawKey == "" {
		return &Keeper{}, nil
	}
	key, err := decodeKey(rawKey)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return &Keeper{key: key}, nil
}

func (k *Keeper) Configured() bool {
	return len(k.key) == 32
}

func (k *Keeper) Seal(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	if !k.Configured() {
		return plain, nil
	}
	gcm, err := k.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return append(nonce, gcm.Seal(nil, nonce, plain, nil)...), nil
}

func (k *Keeper) Open(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	if !k.Configured() {
		return sealed, nil
	}
	gcm, err := k.aead()
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	return gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
}

func (k *Keeper) SealString(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	return k.Seal([]byte(value))
}

func (k *Keeper) OpenString(sealed []byte) (string, error) {
	plain, err := k.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (k *Keeper) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
