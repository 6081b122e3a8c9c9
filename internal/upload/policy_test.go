package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyCheck(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		loose    bool
		strict   bool
	}{
		{name: "png", filename: "cat.png", mimeType: "image/png", loose: true, strict: true},
		{name: "upper-case extension", filename: "CAT.JPEG", mimeType: "image/jpeg", loose: true, strict: true},
		{name: "mp4", filename: "clip.mp4", mimeType: "video/mp4", loose: true, strict: true},
		{name: "quicktime", filename: "clip.mov", mimeType: "video/quicktime", loose: true, strict: true},
		{name: "matroska", filename: "clip.mkv", mimeType: "video/x-matroska", loose: true, strict: true},
		{name: "avi", filename: "clip.avi", mimeType: "video/x-msvideo", loose: true, strict: true},
		{name: "mime parameters", filename: "a.webm", mimeType: "video/webm; codecs=vp9", loose: true, strict: true},
		{name: "crafted mime", filename: "a.png", mimeType: "image/png-whatever", loose: true, strict: false},
		{name: "token in octet-stream lie", filename: "a.gif", mimeType: "application/gif", loose: true, strict: false},
		{name: "exe", filename: "malware.exe", mimeType: "application/octet-stream"},
		{name: "exe with media mime", filename: "malware.exe", mimeType: "image/png"},
		{name: "pdf", filename: "doc.pdf", mimeType: "application/pdf"},
		{name: "no extension", filename: "png", mimeType: "image/png"},
		{name: "extension containing token", filename: "a.png2", mimeType: "image/png"},
		{name: "missing mime", filename: "a.png", mimeType: ""},
		{name: "unrelated mime", filename: "a.png", mimeType: "text/plain"},
	}

	loose := DefaultPolicy()
	strict := DefaultPolicy()
	strict.StrictMIME = true

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAccepts(t, tt.loose, loose.Check(tt.filename, tt.mimeType))
			assertAccepts(t, tt.strict, strict.Check(tt.filename, tt.mimeType))
		})
	}
}

func assertAccepts(t *testing.T, want bool, err error) {
	t.Helper()
	if want {
		assert.NoError(t, err)
		return
	}
	var uploadErr *Error
	if assert.ErrorAs(t, err, &uploadErr) {
		assert.Equal(t, CodeInvalidFileType, uploadErr.Code)
	}
}

func TestDefaultPolicyLimit(t *testing.T) {
	assert.Equal(t, int64(100*1024*1024), DefaultPolicy().MaxBytes)
	assert.False(t, DefaultPolicy().StrictMIME)
}
