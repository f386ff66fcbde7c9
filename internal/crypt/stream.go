package crypt

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Stream format:
//
//	magic (8) | scrypt logN (1) | salt (16) | nonce (24) | XChaCha20-Poly1305 ciphertext
//
// The header is authenticated as additional data.
var streamMagic = []byte("VSCANEC1")

const (
	// DefaultScryptN is the scrypt cost used when none is configured.
	DefaultScryptN = 1 << 15

	saltSize = 16
	scryptR  = 8
	scryptP  = 1
)

// ErrBadPassword is returned by Decrypt when authentication fails.
var ErrBadPassword = errors.New("wrong password or corrupted data")

// StreamBackend encrypts the artifact bytes with a password-derived key.
// It depends on nothing but the bytes, so it works for any artifact.
type StreamBackend struct {
	ScryptN int
}

func (StreamBackend) Name() string { return BackendStream }

func (b StreamBackend) Encrypt(src, password string) (string, error) {
	plain, err := os.ReadFile(src)
	if err != nil {
		return "", ioFailure(BackendStream, err)
	}

	sealed, err := Seal(plain, password, b.ScryptN)
	if err != nil {
		return "", format(BackendStream, err)
	}

	dst := protectedPath(src, filepath.Ext(src)+".enc")
	err = writeAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(sealed)
		return err
	})
	if err != nil {
		return "", ioFailure(BackendStream, err)
	}
	return dst, nil
}

// Seal encrypts plain into the stream format.
func Seal(plain []byte, password string, scryptN int) ([]byte, error) {
	if scryptN <= 0 {
		scryptN = DefaultScryptN
	}
	logN := 0
	for n := scryptN; n > 1; n >>= 1 {
		logN++
	}
	if 1<<logN != scryptN {
		return nil, fmt.Errorf("scrypt cost %d is not a power of two", scryptN)
	}

	header := make([]byte, 0, len(streamMagic)+1+saltSize+chacha20poly1305.NonceSizeX)
	header = append(header, streamMagic...)
	header = append(header, byte(logN))

	salt := make([]byte, saltSize)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	header = append(header, salt...)
	header = append(header, nonce...)

	aead, err := newAEAD(password, salt, scryptN)
	if err != nil {
		return nil, err
	}
	return aead.Seal(header, nonce, plain, header), nil
}

// Open decrypts data produced by Seal.
func Open(data []byte, password string) ([]byte, error) {
	headerSize := len(streamMagic) + 1 + saltSize + chacha20poly1305.NonceSizeX
	if len(data) < headerSize || !bytes.Equal(data[:len(streamMagic)], streamMagic) {
		return nil, errors.New("not a protected stream")
	}
	logN := int(data[len(streamMagic)])
	if logN < 1 || logN > 30 {
		return nil, fmt.Errorf("invalid scrypt cost 2^%d", logN)
	}
	salt := data[len(streamMagic)+1 : len(streamMagic)+1+saltSize]
	nonce := data[len(streamMagic)+1+saltSize : headerSize]

	aead, err := newAEAD(password, salt, 1<<logN)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, data[headerSize:], data[:headerSize])
	if err != nil {
		return nil, ErrBadPassword
	}
	return plain, nil
}

// DecryptFile decrypts a stream-protected file into dst.
func DecryptFile(src, dst, password string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	plain, err := Open(data, password)
	if err != nil {
		return err
	}
	return writeAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(plain)
		return err
	})
}

func newAEAD(password string, salt []byte, n int) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, n, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
