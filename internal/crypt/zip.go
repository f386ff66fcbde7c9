package crypt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yeka/zip"
)

// ZipBackend wraps the artifact in an AES-256 encrypted zip archive.
type ZipBackend struct{}

func (ZipBackend) Name() string { return BackendZip }

func (ZipBackend) Encrypt(src, password string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", ioFailure(BackendZip, err)
	}
	defer in.Close()

	dst := protectedPath(src, ".zip")
	err = writeAtomic(dst, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		entry, err := zw.Encrypt(filepath.Base(src), password, zip.AES256Encryption)
		if err != nil {
			return err
		}
		if _, err := io.Copy(entry, in); err != nil {
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return "", ioFailure(BackendZip, err)
	}
	return dst, nil
}

// OpenZip returns the decrypted content of the single entry of a protected
// archive.
func OpenZip(path, password string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if len(r.File) != 1 {
		return nil, fmt.Errorf("protected archive has %d entries, want 1", len(r.File))
	}
	zf := r.File[0]
	if zf.IsEncrypted() {
		zf.SetPassword(password)
	}
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
