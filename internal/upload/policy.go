// Package upload accepts single-file multipart uploads, checks them against
// an acceptance policy and hands them to a storage.AssetStore.
package upload

import (
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mediadrop/uploader/internal/config"
)

// allowedTypes is matched anywhere inside the declared MIME type.
var allowedTypes = regexp.MustCompile(`mp4|mkv|avi|mov|flv|webm|jpg|jpeg|png|gif`)

var allowedExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".avi": {}, ".mov": {}, ".flv": {}, ".webm": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
}

// canonicalTypes are the registered media types for the allowed extensions.
var canonicalTypes = map[string]struct{}{
	"video/mp4":        {},
	"video/x-matroska": {},
	"video/x-msvideo":  {},
	"video/avi":        {},
	"video/quicktime":  {},
	"video/x-flv":      {},
	"video/webm":       {},
	"image/jpeg":       {},
	"image/jpg":        {},
	"image/png":        {},
	"image/gif":        {},
}

// Policy is the acceptance policy applied to every upload.
type Policy struct {
	// MaxBytes is the largest accepted file.
	MaxBytes int64
	// StrictMIME accepts only canonical media types. When false a declared
	// type is also accepted if it merely contains an allowed token, so
	// "image/png-whatever" passes.
	StrictMIME bool
}

// DefaultPolicy allows video and image files up to 100 MiB.
func DefaultPolicy() Policy {
	return Policy{MaxBytes: config.DefaultMaxUploadBytes}
}

// PolicyFromConfig builds the policy configured at startup.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{MaxBytes: cfg.MaxUploadBytes, StrictMIME: cfg.StrictMIME}
}

// Check accepts filename and mimeType only if both the lower-cased extension
// and the declared type are allowed.
func (p Policy) Check(filename, mimeType string) error {
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]; !ok {
		return errInvalidType
	}
	if !p.allowsType(mimeType) {
		return errInvalidType
	}
	return nil
}

func (p Policy) allowsType(mimeType string) bool {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		if _, ok := canonicalTypes[mediaType]; ok {
			return true
		}
	}
	return !p.StrictMIME && allowedTypes.MatchString(mimeType)
}
