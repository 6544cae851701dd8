package hasher

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sdkmatch/logger"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func init() {
	logger.Init("error")
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.appimage")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestComputeHashes(t *testing.T) {
	path := writeFile(t, []byte("hello world"))

	hashes := ComputeHashes(path, []string{SHA256, BLAKE3, XXHash, "md5", SHA256})
	require.Len(t, hashes, 3)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", hashes[SHA256])

	sum := blake3.Sum256([]byte("hello world"))
	assert.Equal(t, sum[:], mustDecode(t, hashes[BLAKE3]))

	d := xxhash.New()
	_, _ = d.WriteString("hello world")
	assert.Len(t, hashes[XXHash], 16)
	assert.Equal(t, d.Sum(nil), mustDecode(t, hashes[XXHash]))
	_, ok := hashes["md5"]
	assert.False(t, ok)
}

func TestComputeHashesLargeFile(t *testing.T) {
	data := []byte(strings.Repeat("MSTR", hashLargeBufferThreshold/2))
	path := writeFile(t, data)

	hashes := ComputeHashes(path, []string{BLAKE3})
	sum := blake3.Sum256(data)
	assert.Equal(t, sum[:], mustDecode(t, hashes[BLAKE3]))
}

func TestComputeHashesMissingFile(t *testing.T) {
	hashes := ComputeHashes(filepath.Join(t.TempDir(), "missing"), []string{SHA256})
	assert.Empty(t, hashes)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(SHA256))
	assert.True(t, Supported(BLAKE3))
	assert.True(t, Supported(XXHash))
	assert.False(t, Supported("sha1"))
}
