package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chunkserve/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRegistry(t *testing.T) *Registry {
	r, err := New(t.TempDir(), 1024*1024, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r
}

func writeInputFile(t *testing.T, r *Registry, name string, data []byte) string {
	path := filepath.Join(r.InputDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRegisterAndResolve(t *testing.T) {
	r := testRegistry(t)
	path := writeInputFile(t, r, "hello.bin", []byte("HelloWorld"))

	record, err := r.Register(path)
	require.NoError(t, err)

	assert.Len(t, string(record.ID), IDLength)
	assert.Equal(t, string(record.ID), record.Digest[:IDLength])
	assert.Equal(t, "hello.bin", record.Name)
	assert.EqualValues(t, 10, record.Size)
	// ceil(10 * 4/3) for the default base64 codec
	assert.EqualValues(t, 14, record.EncodedSize)
	assert.EqualValues(t, 1, record.DefaultChunks)

	resolved, err := r.Resolve(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record, resolved)
}

func TestRegisterSameContentTwice(t *testing.T) {
	r := testRegistry(t)
	pathA := writeInputFile(t, r, "a.bin", []byte("same content"))
	pathB := writeInputFile(t, r, "b.bin", []byte("same content"))

	recordA, err := r.Register(pathA)
	require.NoError(t, err)
	recordB, err := r.Register(pathB)
	require.NoError(t, err)

	// Identity is content, not path: the second registration is a no-op.
	assert.Equal(t, recordA.ID, recordB.ID)
	assert.Equal(t, "a.bin", recordB.Name)
	assert.Equal(t, 1, r.Count())
}

func TestResolveUnknown(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Resolve(types.FileID("deadbeefdeadbeef"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterBytes(t *testing.T) {
	r := testRegistry(t)

	record, err := r.RegisterBytes("../../evil.bin", []byte("uploaded"))
	require.NoError(t, err)

	// Path traversal in upload names is stripped.
	assert.Equal(t, "evil.bin", record.Name)
	assert.Equal(t, filepath.Join(r.InputDir(), "evil.bin"), record.Path)

	data, err := os.ReadFile(record.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("uploaded"), data)
}

func TestDelete(t *testing.T) {
	r := testRegistry(t)
	path := writeInputFile(t, r, "doomed.bin", []byte("doomed"))

	record, err := r.Register(path)
	require.NoError(t, err)

	deleted, err := r.Delete(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, deleted.ID)

	_, err = r.Resolve(record.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Delete(record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScanFolder(t *testing.T) {
	r := testRegistry(t)
	writeInputFile(t, r, "one.bin", []byte("one"))
	writeInputFile(t, r, "two.bin", []byte("two"))
	require.NoError(t, os.Mkdir(filepath.Join(r.InputDir(), "subdir"), 0755))

	added, err := r.ScanFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, r.Count())

	// A second scan discovers nothing new.
	added, err = r.ScanFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	writeInputFile(t, r, "three.bin", []byte("three"))
	added, err = r.ScanFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, r.Count())
}

func TestListOrdering(t *testing.T) {
	r := testRegistry(t)
	writeInputFile(t, r, "zebra.bin", []byte("z"))
	writeInputFile(t, r, "apple.bin", []byte("a"))

	_, err := r.ScanFolder(context.Background())
	require.NoError(t, err)

	records := r.List()
	require.Len(t, records, 2)
	assert.Equal(t, "apple.bin", records[0].Name)
	assert.Equal(t, "zebra.bin", records[1].Name)
}
