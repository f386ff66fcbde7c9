package crypt

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Decrypt recovers the plain workbook from any protected artifact into dst.
// The backend is chosen from the file name: ".enc" for the raw stream,
// ".zip" for the archive and ".xlsx" for native workbook protection.
func Decrypt(src, dst, password string) error {
	switch ext := strings.ToLower(filepath.Ext(src)); ext {
	case ".enc":
		return DecryptFile(src, dst, password)

	case ".zip":
		plain, err := OpenZip(src, password)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		return writeAtomic(dst, func(w io.Writer) error {
			_, err := w.Write(plain)
			return err
		})

	case ".xlsx":
		f, err := excelize.OpenFile(src, excelize.Options{Password: password})
		if errors.Is(err, excelize.ErrWorkbookPassword) {
			return ErrBadPassword
		}
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return writeAtomic(dst, func(w io.Writer) error {
			return f.Write(w)
		})

	default:
		return fmt.Errorf("not a protected artifact: %q", filepath.Base(src))
	}
}

// DecryptedName is the default output for Decrypt: the "_protected" marker
// and protection extension are dropped.
func DecryptedName(src string) string {
	base := src
	if strings.EqualFold(filepath.Ext(base), ".enc") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, "_protected")
	return base + "_decrypted.xlsx"
}
