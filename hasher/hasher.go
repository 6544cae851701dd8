// Package hasher computes the digests reported with a selected image so the
// flashing side can confirm it received the same bytes.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"sync"

	"sdkmatch/logger"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

const (
	SHA256 = "sha256"
	BLAKE3 = "blake3"
	XXHash = "xxhash"
)

const (
	hashBufferSmallSize      = 32 * 1024
	hashBufferLargeSize      = 128 * 1024
	hashLargeBufferThreshold = 256 * 1024
)

var hashBufferSmallPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferSmallSize)
		return &buf
	},
}

var hashBufferLargePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferLargeSize)
		return &buf
	},
}

func newHash(algo string) hash.Hash {
	switch algo {
	case SHA256:
		return sha256.New()
	case BLAKE3:
		return blake3.New(32, nil)
	case XXHash:
		return xxhash.New()
	}
	return nil
}

// Supported reports whether algo names a digest ComputeHashes knows.
func Supported(algo string) bool {
	return newHash(algo) != nil
}

// ComputeHashes streams path once through every requested algorithm.
// Unknown names are skipped with a warning; an unreadable file yields an
// empty map.
func ComputeHashes(path string, algorithms []string) map[string]string {
	hashes := make(map[string]string, len(algorithms))

	file, err := os.Open(path)
	if err != nil {
		logger.Warnf("Failed to open file for hashing %s: %v", path, err)
		return hashes
	}
	defer file.Close()

	type hasherEntry struct {
		name string
		h    hash.Hash
	}
	hashers := make([]hasherEntry, 0, len(algorithms))
	seen := make(map[string]struct{}, len(algorithms))
	for _, algo := range algorithms {
		if _, ok := seen[algo]; ok {
			continue
		}
		h := newHash(algo)
		if h == nil {
			logger.Warnf("Unsupported hash algorithm: %s", algo)
			continue
		}
		seen[algo] = struct{}{}
		hashers = append(hashers, hasherEntry{name: algo, h: h})
	}
	if len(hashers) == 0 {
		return hashes
	}

	bufferPool := &hashBufferSmallPool
	if info, statErr := file.Stat(); statErr == nil && info.Size() >= hashLargeBufferThreshold {
		bufferPool = &hashBufferLargePool
	}
	bufferPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufferPtr)
	buffer := *bufferPtr
	for {
		n, readErr := file.Read(buffer)
		if n > 0 {
			chunk := buffer[:n]
			for i := range hashers {
				_, _ = hashers[i].h.Write(chunk)
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				logger.Warnf("Failed to compute hashes for %s: %v", path, readErr)
				return make(map[string]string)
			}
			break
		}
	}

	for i := range hashers {
		hashes[hashers[i].name] = hex.EncodeToString(hashers[i].h.Sum(nil))
	}
	return hashes
}
