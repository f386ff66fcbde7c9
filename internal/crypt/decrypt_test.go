package crypt

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"
)

func readFirstSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(%s) error = %v", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	return rows
}

func TestDecrypt_AllBackends(t *testing.T) {
	backends := []Backend{NativeBackend{}, ZipBackend{}, StreamBackend{ScryptN: testScryptN}}
	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			dir := t.TempDir()
			src, rows := writeWorkbook(t, dir)

			protected, err := b.Encrypt(src, "Pa55word")
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			out := filepath.Join(dir, "plain.xlsx")
			if err := Decrypt(protected, out, "Pa55word"); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			got := readFirstSheet(t, out)
			if !slices.EqualFunc(got, rows, slices.Equal) {
				t.Errorf("rows = %v, want %v", got, rows)
			}
		})
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	dir := t.TempDir()
	src, _ := writeWorkbook(t, dir)

	for _, b := range []Backend{NativeBackend{}, ZipBackend{}, StreamBackend{ScryptN: testScryptN}} {
		protected, err := b.Encrypt(src, "right-password")
		if err != nil {
			t.Fatalf("%s Encrypt() error = %v", b.Name(), err)
		}
		out := filepath.Join(dir, b.Name()+".xlsx")
		err = Decrypt(protected, out, "wrong-password")
		if err == nil {
			t.Errorf("%s Decrypt() error = nil, want error", b.Name())
		}
		if b.Name() == BackendStream && !errors.Is(err, ErrBadPassword) {
			t.Errorf("stream Decrypt() error = %v, want ErrBadPassword", err)
		}
		if _, statErr := os.Stat(out); statErr == nil {
			t.Errorf("%s left output behind after a failed decrypt", b.Name())
		}
	}
}

func TestDecrypt_UnknownExtension(t *testing.T) {
	if err := Decrypt("report.pdf", "out.xlsx", "x"); err == nil {
		t.Error("Decrypt(pdf) error = nil, want error")
	}
}

func TestDecryptedName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"out/top_transaction_2024-01_protected.xlsx.enc", "out/top_transaction_2024-01_decrypted.xlsx"},
		{"out/top_transaction_2024-01_protected.zip", "out/top_transaction_2024-01_decrypted.xlsx"},
		{"out/top_transaction_2024-01_protected.xlsx", "out/top_transaction_2024-01_decrypted.xlsx"},
	}
	for _, tt := range tests {
		if got := DecryptedName(tt.in); got != tt.want {
			t.Errorf("DecryptedName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
