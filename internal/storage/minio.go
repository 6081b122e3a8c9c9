package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// remotePartSize bounds how much of an upload of unknown length minio-go
// buffers per multipart chunk.
const remotePartSize = 16 << 20

// RemoteOptions configures the connection to the asset provider.
type RemoteOptions struct {
	Endpoint   string
	Region     string // skips the bucket location lookup when set
	AccessKey  string
	SecretKey  string
	Bucket     string // provider account identifier
	PublicBase string // browser-accessible base URL for the bucket
	Folder     string // fixed logical folder every upload lands in
	UseSSL     bool
}

// RemoteObjectStore implements AssetStore on an S3-compatible provider.
// The provider hosts the bytes; the URL handed back is absolute.
type RemoteObjectStore struct {
	client     *minio.Client
	bucket     string
	folder     string
	publicBase string
}

// NewRemoteObjectStore creates the provider client. No network call is made.
func NewRemoteObjectStore(opts RemoteOptions) (*RemoteObjectStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &RemoteObjectStore{
		client:     client,
		bucket:     opts.Bucket,
		folder:     strings.Trim(opts.Folder, "/"),
		publicBase: strings.TrimRight(opts.PublicBase, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it is missing and makes its objects publicly readable.
func (s *RemoteObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
		log.Printf("storage: created bucket %q", s.bucket)
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// Save streams obj.Body to the provider under a freshly generated key.
// The length is unknown up front, so minio-go uploads in parts and aborts the
// multipart upload if reading the body fails.
func (s *RemoteObjectStore) Save(ctx context.Context, obj Object) (*Asset, error) {
	key := s.objectKey(obj.Filename)
	contentType := detectContentType(obj.Filename, obj.ContentType)

	info, err := s.client.PutObject(ctx, s.bucket, key, obj.Body, -1, minio.PutObjectOptions{
		ContentType:  contentType,
		PartSize:     remotePartSize,
		UserMetadata: map[string]string{"resource-type": resourceType(contentType)},
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	return &Asset{
		ID:       key,
		URL:      s.PublicURL(key),
		Size:     info.Size,
		Location: "s3://" + s.bucket + "/" + key,
	}, nil
}

// Delete removes the object at key from the bucket.
func (s *RemoteObjectStore) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *RemoteObjectStore) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func (s *RemoteObjectStore) objectKey(filename string) string {
	return path.Join(s.folder, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

func detectContentType(filename, declared string) string {
	if declared != "" {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// resourceType classifies an asset the way hosted media providers do.
func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "raw"
	}
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
