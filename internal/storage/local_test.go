package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) (*LocalDiskStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalDiskStore(dir, "/uploads")
	require.NoError(t, err)
	return store, dir
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestNewLocalDiskStoreCreatesDir(t *testing.T) {
	_, dir := newTestLocalStore(t)

	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	// idempotent
	_, err = NewLocalDiskStore(dir, "uploads/")
	assert.NoError(t, err)
}

func TestLocalDiskStoreSave(t *testing.T) {
	store, dir := newTestLocalStore(t)
	store.now = fixedClock(1700000000123)

	asset, err := store.Save(context.Background(), Object{
		Filename:    "Holiday.JPG",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1700000000123.JPG", asset.ID)
	assert.Equal(t, "/uploads/1700000000123.JPG", asset.URL)
	assert.Equal(t, int64(10), asset.Size)
	assert.Equal(t, filepath.Join(dir, "1700000000123.JPG"), asset.Location)

	data, err := os.ReadFile(asset.Location)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Equal(t, []string{"1700000000123.JPG"}, listDir(t, dir))
}

func TestLocalDiskStoreSaveFileMode(t *testing.T) {
	store, _ := newTestLocalStore(t)

	asset, err := store.Save(context.Background(), Object{Filename: "a.png", Body: strings.NewReader("png")})
	require.NoError(t, err)

	st, err := os.Stat(asset.Location)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), st.Mode().Perm())
}

func TestLocalDiskStoreDistinctNames(t *testing.T) {
	store, dir := newTestLocalStore(t)
	ms := int64(1700000000000)
	store.now = func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}

	a, err := store.Save(context.Background(), Object{Filename: "clip.mp4", Body: strings.NewReader("one")})
	require.NoError(t, err)
	b, err := store.Save(context.Background(), Object{Filename: "clip.mp4", Body: strings.NewReader("two")})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, listDir(t, dir), 2)
}

func TestLocalDiskStoreSameMillisecondOverwrites(t *testing.T) {
	store, dir := newTestLocalStore(t)
	store.now = fixedClock(1700000000000)

	_, err := store.Save(context.Background(), Object{Filename: "a.png", Body: strings.NewReader("first")})
	require.NoError(t, err)
	b, err := store.Save(context.Background(), Object{Filename: "b.png", Body: strings.NewReader("second")})
	require.NoError(t, err)

	assert.Equal(t, []string{"1700000000000.png"}, listDir(t, dir))
	data, err := os.ReadFile(b.Location)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalDiskStoreFailedReadLeavesNothing(t *testing.T) {
	store, dir := newTestLocalStore(t)
	boom := errors.New("stream aborted")

	asset, err := store.Save(context.Background(), Object{
		Filename: "big.mov",
		Body:     &failingReader{data: []byte("partial"), err: boom},
	})
	require.Error(t, err)
	assert.Nil(t, asset)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, listDir(t, dir))
}

func TestLocalDiskStoreCancelledContext(t *testing.T) {
	store, dir := newTestLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, Object{Filename: "a.gif", Body: strings.NewReader("gif")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, listDir(t, dir))
}

func TestLocalDiskStoreDelete(t *testing.T) {
	store, dir := newTestLocalStore(t)

	asset, err := store.Save(context.Background(), Object{Filename: "a.webm", Body: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), asset.ID))
	assert.Empty(t, listDir(t, dir))

	// deleting again is not an error
	assert.NoError(t, store.Delete(context.Background(), asset.ID))
}

func TestLocalDiskStoreFileServer(t *testing.T) {
	store, dir := newTestLocalStore(t)
	store.now = fixedClock(1700000000456)

	asset, err := store.Save(context.Background(), Object{Filename: "clip.mkv", Body: strings.NewReader("matroska")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial-123"), []byte("half"), 0o644))

	srv := httptest.NewServer(store.FileServer())
	defer srv.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
		wantType   string
	}{
		{name: "stored asset", path: asset.URL, wantStatus: http.StatusOK, wantBody: "matroska", wantType: "video/x-matroska"},
		{name: "missing asset", path: "/uploads/404.png", wantStatus: http.StatusNotFound},
		{name: "directory listing", path: "/uploads/", wantStatus: http.StatusNotFound},
		{name: "temp file", path: "/uploads/.partial-123", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(body))
			assert.Equal(t, tt.wantType, resp.Header.Get("Content-Type"))
		})
	}
}
