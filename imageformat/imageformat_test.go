package imageformat

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImage(size int, sentinel uint32) []byte {
	data := make([]byte, size)
	copy(data, DefaultMagic[:])
	binary.LittleEndian.PutUint32(data[4:8], sentinel)
	return data
}

func writeImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.release.appimage")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestInspectMultiThenSingle(t *testing.T) {
	const size = 4096
	data := buildImage(size, size-16)
	path := writeImage(t, data)
	assert.Equal(t, MultiImage, Default.Inspect(path))

	binary.LittleEndian.PutUint32(data[4:8], 1)
	require.NoError(t, os.WriteFile(path, data, 0600))
	assert.Equal(t, SingleImage, Default.Inspect(path))
}

func TestClassifyToleranceBoundary(t *testing.T) {
	const size = 10000
	expected := uint32(size - 16)
	assert.Equal(t, MultiImage, Default.Classify(buildImage(8, expected+99), size))
	assert.Equal(t, MultiImage, Default.Classify(buildImage(8, expected-99), size))
	assert.Equal(t, Unknown, Default.Classify(buildImage(8, expected+100), size))
	assert.Equal(t, Unknown, Default.Classify(buildImage(8, expected-100), size))

	strict := New(1)
	assert.Equal(t, MultiImage, strict.Classify(buildImage(8, expected), size))
	assert.Equal(t, Unknown, strict.Classify(buildImage(8, expected+1), size))
}

func TestClassifyWrongMagic(t *testing.T) {
	data := buildImage(64, 48)
	data[0] = 'X'
	assert.Equal(t, Unknown, Default.Classify(data, 64))
}

func TestInspectIsTotal(t *testing.T) {
	assert.Equal(t, Unknown, Default.Inspect(filepath.Join(t.TempDir(), "missing.appimage")))
	assert.Equal(t, Unknown, Default.Inspect(t.TempDir()))
	assert.Equal(t, Unknown, Default.Inspect(writeImage(t, nil)))
	assert.Equal(t, Unknown, Default.Inspect(writeImage(t, []byte("MST"))))
	assert.Equal(t, Unknown, Default.Inspect(writeImage(t, []byte("MSTR\x01\x00"))))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		buf := make([]byte, rng.Intn(32))
		rng.Read(buf)
		layout := Default.Classify(buf, int64(rng.Intn(1<<20))-1000)
		assert.Contains(t, []Layout{MultiImage, SingleImage, Unknown}, layout)
	}
}

func TestDescribe(t *testing.T) {
	path := writeImage(t, buildImage(2048, 2032))
	d := Default.Describe(path)
	assert.Equal(t, MultiImage, d.Layout)
	assert.True(t, d.Flashable)
	assert.True(t, d.MagicOK)
	assert.Equal(t, "4d535452", d.Magic)
	assert.Equal(t, uint32(2032), d.Sentinel)
	assert.Equal(t, int64(2048), d.SizeBytes)
	assert.Equal(t, "unknown", d.Kind)

	zip := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 64)...)
	d = Default.Describe(writeImage(t, zip))
	assert.Equal(t, Unknown, d.Layout)
	assert.Equal(t, "application/zip", d.Kind)

	d = Default.Describe(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, d.ReadFailed)
	assert.Equal(t, Unknown, d.Layout)
}
