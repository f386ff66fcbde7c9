package crypt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Backend names, in default fallback order.
const (
	BackendNative = "native"
	BackendZip    = "zip"
	BackendStream = "stream"
)

// DefaultOrder is the fallback chain used when none is configured.
var DefaultOrder = []string{BackendNative, BackendZip, BackendStream}

// Backend protects one artifact with a password.
//
// Encrypt writes the protected form of src next to it and returns the new
// path. It must not modify or remove src, and on failure it must leave no
// file at the returned path's location. Failures are *BackendError.
type Backend interface {
	Name() string
	Encrypt(src, password string) (string, error)
}

// NewBackends builds the backends named in order. scryptN is the cost of
// the stream backend's key derivation; zero uses the default.
func NewBackends(order []string, scryptN int) ([]Backend, error) {
	if len(order) == 0 {
		order = DefaultOrder
	}
	out := make([]Backend, 0, len(order))
	for _, name := range order {
		switch strings.TrimSpace(name) {
		case BackendNative:
			out = append(out, NativeBackend{})
		case BackendZip:
			out = append(out, ZipBackend{})
		case BackendStream:
			out = append(out, StreamBackend{ScryptN: scryptN})
		default:
			return nil, fmt.Errorf("unknown encryption backend %q", name)
		}
	}
	return out, nil
}

// protectedPath returns the output name for src: "report.xlsx" becomes
// "report_protected" + ext.
func protectedPath(src, ext string) string {
	base := strings.TrimSuffix(src, filepath.Ext(src))
	return base + "_protected" + ext
}

// writeAtomic writes dst through a temporary file in the same directory.
// The temp name keeps dst's extension.
func writeAtomic(dst string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".vscan-*"+filepath.Ext(dst))
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
