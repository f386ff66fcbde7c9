package crypt

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// NativeBackend applies the workbook format's own password protection
// (ECMA-376 agile encryption), so spreadsheet applications prompt for the
// password when opening the file.
type NativeBackend struct{}

func (NativeBackend) Name() string { return BackendNative }

func (NativeBackend) Encrypt(src, password string) (string, error) {
	if !strings.EqualFold(filepath.Ext(src), ".xlsx") {
		return "", capability(BackendNative, errors.New("only .xlsx workbooks can be protected natively"))
	}

	f, err := excelize.OpenFile(src)
	if err != nil {
		return "", format(BackendNative, err)
	}
	defer f.Close()

	dst := protectedPath(src, ".xlsx")
	err = writeAtomic(dst, func(w io.Writer) error {
		return f.Write(w, excelize.Options{Password: password})
	})
	if err != nil {
		return "", ioFailure(BackendNative, err)
	}
	return dst, nil
}
