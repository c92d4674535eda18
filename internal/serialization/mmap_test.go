package serialization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, meta map[string]string) (string, []byte) {
	t.Helper()
	raw := encode(t, testNetwork(t), meta)
	path := filepath.Join(t.TempDir(), "model.dnet")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path, raw
}

func TestMmapReaderBasic(t *testing.T) {
	path, _ := writeModel(t, map[string]string{"dataset": "mnist"})

	r, err := NewMmapReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"layers.0.weights", "layers.0.bias", "layers.1.weights", "layers.1.bias"}, r.TensorNames())
	assert.Equal(t, FlagHasMetadata, r.Flags()&FlagHasMetadata)
	assert.Equal(t, "mnist", r.Header().Metadata["dataset"])
	assert.NoError(t, r.VerifyChecksum())

	info, err := r.TensorInfo(WeightsName(1))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, info.Shape)

	data, err := r.TensorData(WeightsName(1))
	require.NoError(t, err)
	assert.Len(t, data, 2*4*8)
}

func TestMmapReaderSnapshotMatchesStream(t *testing.T) {
	path, _ := writeModel(t, nil)
	net := testNetwork(t)

	r, err := NewMmapReader(path)
	require.NoError(t, err)
	defer r.Close()

	snap, err := r.Snapshot(ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, net.Save(), snap)
}

func TestMmapReaderCorruptData(t *testing.T) {
	path, raw := writeModel(t, nil)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	r, err := NewMmapReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Snapshot(ReaderOptions{})
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = r.Snapshot(ReaderOptions{SkipChecksumValidation: true})
	assert.NoError(t, err)

	_, _, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestMmapReaderNotFound(t *testing.T) {
	path, _ := writeModel(t, nil)

	r, err := NewMmapReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.TensorInfo("layers.9.weights")
	assert.ErrorIs(t, err, ErrMissingTensor)
	_, err = r.TensorData("layers.9.weights")
	assert.ErrorIs(t, err, ErrMissingTensor)
}

func TestMmapReaderClosed(t *testing.T) {
	path, _ := writeModel(t, nil)

	r, err := NewMmapReader(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "second close is a no-op")

	_, err = r.TensorData(WeightsName(0))
	assert.ErrorIs(t, err, errReaderClosed)
	_, err = r.Snapshot(ReaderOptions{})
	assert.ErrorIs(t, err, errReaderClosed)
	assert.ErrorIs(t, r.VerifyChecksum(), errReaderClosed)
}

func TestMmapReaderInvalidFile(t *testing.T) {
	dir := t.TempDir()

	_, err := NewMmapReader(filepath.Join(dir, "missing.dnet"))
	assert.Error(t, err)

	small := filepath.Join(dir, "small.dnet")
	require.NoError(t, os.WriteFile(small, []byte("DNET"), 0o600))
	_, err = NewMmapReader(small)
	assert.ErrorContains(t, err, "file too small")

	_, raw := writeModel(t, nil)
	copy(raw, "XXXX")
	bad := filepath.Join(dir, "bad.dnet")
	require.NoError(t, os.WriteFile(bad, raw, 0o600))
	_, err = NewMmapReader(bad)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, raw = writeModel(t, nil)
	truncated := filepath.Join(dir, "truncated.dnet")
	require.NoError(t, os.WriteFile(truncated, raw[:len(raw)-8], 0o600))
	_, err = NewMmapReader(truncated)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
