// Package storage defines where accepted uploads end up.
// Two backends implement AssetStore: LocalDiskStore writes into a directory
// served back over HTTP, RemoteObjectStore hands the bytes to an
// S3-compatible asset provider (MinIO, ArvanCloud, AWS S3).
// The backend is chosen once at startup from configuration.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mediadrop/uploader/internal/config"
)

// Object is a validated upload on its way into a store.
type Object struct {
	Filename    string // original client filename
	ContentType string // MIME type declared by the client
	Body        io.Reader
}

// Asset describes an object after it has been persisted.
type Asset struct {
	ID       string // generated filename or provider key
	URL      string // relative path for local assets, absolute URL for remote ones
	Size     int64
	Location string // filesystem path or s3://bucket/key
}

// AssetStore persists uploads. Save either returns the stored Asset or an
// error, never both; a failed Save leaves nothing retrievable behind.
type AssetStore interface {
	// Save streams obj.Body into the store until EOF.
	Save(ctx context.Context, obj Object) (*Asset, error)
	// Delete removes a previously saved asset by ID.
	Delete(ctx context.Context, id string) error
}

// StaticServer is implemented by stores whose assets are served by this process.
type StaticServer interface {
	URLPrefix() string
	FileServer() http.Handler
}

// New builds the AssetStore selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (AssetStore, error) {
	if !cfg.UsesRemoteStorage() {
		if cfg.StorageDriver != config.DriverLocal {
			return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
		}
		return NewLocalDiskStore(cfg.UploadDir, cfg.UploadURLPrefix)
	}

	store, err := NewRemoteObjectStore(RemoteOptions{
		Endpoint:   cfg.StorageEndpoint,
		Region:     cfg.StorageRegion,
		AccessKey:  cfg.StorageAccessKey,
		SecretKey:  cfg.StorageSecretKey,
		Bucket:     cfg.StorageAccount,
		PublicBase: cfg.StoragePublicBase,
		Folder:     cfg.StorageFolder,
		UseSSL:     cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, err
	}
	// The provider may be unreachable or the credentials missing at boot;
	// uploads then fail individually instead of the whole process.
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ensureCtx); err != nil {
		log.Printf("storage: bucket %q not ready: %v", cfg.StorageAccount, err)
	}
	return store, nil
}
