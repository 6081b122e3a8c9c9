package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const partialPrefix = ".partial-"

// mediaTypes fills gaps in the platform MIME table so served videos get a
// proper Content-Type instead of a sniffed one.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".flv":  "video/x-flv",
	".webm": "video/webm",
}

var registerMediaTypes = sync.OnceFunc(func() {
	for ext, typ := range mediaTypes {
		if err := mime.AddExtensionType(ext, typ); err != nil {
			log.Printf("storage: register %s: %v", ext, err)
		}
	}
})

// LocalDiskStore writes uploads into a flat directory named <epoch-millis><ext>.
//
// Two uploads with the same extension inside the same millisecond get the same
// name and the later one replaces the earlier.
type LocalDiskStore struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

// NewLocalDiskStore creates dir if needed and returns a store whose assets are
// addressed as urlPrefix + "/" + filename.
func NewLocalDiskStore(dir, urlPrefix string) (*LocalDiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	registerMediaTypes()

	return &LocalDiskStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Save streams obj.Body into a hidden temp file and renames it into place
// only once the whole body has been read.
func (s *LocalDiskStore) Save(ctx context.Context, obj Object) (*Asset, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + filepath.Ext(obj.Filename)

	tmp, err := os.CreateTemp(s.dir, partialPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, obj.Body)
	if err == nil {
		// CreateTemp opens files 0600; stored assets are world-readable.
		err = tmp.Chmod(0o644)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("move %s into place: %w", name, err)
	}

	return &Asset{
		ID:       name,
		URL:      s.urlPrefix + "/" + name,
		Size:     n,
		Location: dst,
	}, nil
}

// Delete removes the asset with the given filename.
func (s *LocalDiskStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(id))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// URLPrefix returns the path the upload directory is served under.
func (s *LocalDiskStore) URLPrefix() string {
	return s.urlPrefix
}

// FileServer serves stored assets read-only under URLPrefix.
// Directories and in-progress temp files answer 404.
func (s *LocalDiskStore) FileServer() http.Handler {
	return http.StripPrefix(s.urlPrefix+"/", http.FileServer(assetFS{http.Dir(s.dir)}))
}

type assetFS struct {
	fs http.FileSystem
}

func (a assetFS) Open(name string) (http.File, error) {
	if strings.HasPrefix(path.Base(name), ".") {
		return nil, os.ErrNotExist
	}
	f, err := a.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
