package fileio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/mmap"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadContentModesAgree(t *testing.T) {
	data := bytes.Repeat([]byte("channelCfg 15 15 0\n"), 1000)
	path := writeTemp(t, "profile.cfg", data)
	for _, mode := range []string{"auto", "stream", "mmap"} {
		got, err := ReadContent(path, Options{Mode: mode, MmapMinSize: 1})
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("%s: content mismatch (%d bytes)", mode, len(got))
		}
	}
}

func TestReadContentTruncates(t *testing.T) {
	path := writeTemp(t, "big.cfg", bytes.Repeat([]byte("a"), 4096))
	for _, mode := range []string{"stream", "mmap"} {
		got, err := ReadContent(path, Options{Mode: mode, MaxSize: 100})
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if len(got) != 100 {
			t.Fatalf("%s: expected truncation to 100, got %d", mode, len(got))
		}
	}
}

func TestReadContentAutoFallsBackToStream(t *testing.T) {
	path := writeTemp(t, "x.cfg", []byte("sensorStart\n"))
	old := openMmapReader
	openMmapReader = func(string) (*mmap.ReaderAt, error) { return nil, errors.New("no mmap") }
	defer func() { openMmapReader = old }()

	got, err := ReadContent(path, Options{Mode: "auto", MmapMinSize: 1})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "sensorStart\n" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestReadContentMissingFile(t *testing.T) {
	if _, err := ReadContent(filepath.Join(t.TempDir(), "missing.cfg"), Options{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadHeader(t *testing.T) {
	path := writeTemp(t, "img.appimage", []byte{1, 2, 3})
	header, size, err := ReadHeader(path, 8)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if size != 3 || len(header) != 3 {
		t.Fatalf("unexpected header %v size %d", header, size)
	}
}
