package fileio

import (
	"io"
	"os"
	"strings"

	"golang.org/x/exp/mmap"
)

const (
	defaultMaxSize     int64 = 10 * 1024 * 1024
	defaultMmapMinSize int64 = 128 * 1024
	defaultChunkSize         = 64 * 1024
)

var openMmapReader = mmap.Open

// Options selects how file content is loaded.
type Options struct {
	MaxSize     int64
	Mode        string
	MmapMinSize int64
}

// ReadContent loads at most opts.MaxSize bytes from path. Mode "auto" uses
// mmap for files at least MmapMinSize long and streams smaller ones.
// Larger files are truncated to MaxSize rather than rejected.
func ReadContent(path string, opts Options) ([]byte, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	mmapMinSize := opts.MmapMinSize
	if mmapMinSize <= 0 {
		mmapMinSize = defaultMmapMinSize
	}
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))

	switch mode {
	case "mmap":
		return readMmap(path, maxSize)
	case "stream":
		return readStream(path, maxSize)
	default:
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() >= mmapMinSize {
			content, err := readMmap(path, maxSize)
			if err == nil {
				return content, nil
			}
		}
		return readStream(path, maxSize)
	}
}

// ReadHeader returns up to n leading bytes of path together with the full
// file size.
func ReadHeader(path string, n int) ([]byte, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, err
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, 0, err
	}
	return buf[:read], info.Size(), nil
}

func readMmap(path string, maxSize int64) ([]byte, error) {
	r, err := openMmapReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	readSize := int64(r.Len())
	if readSize > maxSize {
		readSize = maxSize
	}
	if readSize <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, readSize)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

func readStream(path string, maxSize int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var content []byte
	if stat, err := file.Stat(); err == nil && stat.Size() > 0 {
		capHint := stat.Size()
		if capHint > maxSize {
			capHint = maxSize
		}
		content = make([]byte, 0, capHint)
	}
	buffer := make([]byte, defaultChunkSize)
	var total int64
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			chunk := buffer[:n]
			if total+int64(n) > maxSize {
				chunk = chunk[:maxSize-total]
			}
			content = append(content, chunk...)
			total += int64(len(chunk))
			if total >= maxSize {
				break
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}
