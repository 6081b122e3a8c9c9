package testutil

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeS3 answers the subset of the S3 API a streaming PutObject of unknown
// length uses: multipart initiate, part upload, complete and abort, plus
// plain object deletes. Signatures are not checked and part bodies are
// drained without being kept.
type FakeS3 struct {
	mu        sync.Mutex
	server    *httptest.Server
	next      int
	open      map[string]string // upload ID -> object key
	completed []string
	aborted   []string
	deleted   []string
	parts     int
}

// NewFakeS3 starts a FakeS3 that is shut down when the test ends.
func NewFakeS3(t *testing.T) *FakeS3 {
	t.Helper()
	f := &FakeS3{open: make(map[string]string)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.server.Close)
	return f
}

// Endpoint returns the host:port the fake listens on.
func (f *FakeS3) Endpoint() string {
	return strings.TrimPrefix(f.server.URL, "http://")
}

// Completed returns the keys of finished multipart uploads, in order.
func (f *FakeS3) Completed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.completed...)
}

// Aborted returns the keys whose multipart upload was aborted, in order.
func (f *FakeS3) Aborted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.aborted...)
}

// Deleted returns the keys removed with a plain DELETE, in order.
func (f *FakeS3) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Parts returns how many part uploads were received.
func (f *FakeS3) Parts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parts
}

type initiateResult struct {
	XMLName  xml.Name `xml:"InitiateMultipartUploadResult"`
	Bucket   string
	Key      string
	UploadID string `xml:"UploadId"`
}

type completeResult struct {
	XMLName  xml.Name `xml:"CompleteMultipartUploadResult"`
	Location string
	Bucket   string
	Key      string
	ETag     string
}

func (f *FakeS3) serveHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	q := r.URL.Query()
	_, _ = io.Copy(io.Discard, r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && key == "" && q.Has("location"):
		writeXML(w, http.StatusOK, struct {
			XMLName xml.Name `xml:"LocationConstraint"`
			Region  string   `xml:",chardata"`
		}{Region: "us-east-1"})

	case r.Method == http.MethodPost && q.Has("uploads"):
		f.next++
		id := fmt.Sprintf("upload-%d", f.next)
		f.open[id] = key
		writeXML(w, http.StatusOK, initiateResult{Bucket: bucket, Key: key, UploadID: id})

	case r.Method == http.MethodPut && q.Has("uploadId"):
		if _, ok := f.open[q.Get("uploadId")]; !ok {
			http.Error(w, "no such upload", http.StatusNotFound)
			return
		}
		f.parts++
		w.Header().Set("ETag", fmt.Sprintf(`"etag-%s-%s"`, q.Get("uploadId"), q.Get("partNumber")))
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPost && q.Has("uploadId"):
		id := q.Get("uploadId")
		if _, ok := f.open[id]; !ok {
			http.Error(w, "no such upload", http.StatusNotFound)
			return
		}
		delete(f.open, id)
		f.completed = append(f.completed, key)
		writeXML(w, http.StatusOK, completeResult{
			Location: "/" + bucket + "/" + key,
			Bucket:   bucket,
			Key:      key,
			ETag:     `"etag-` + id + `"`,
		})

	case r.Method == http.MethodDelete && q.Has("uploadId"):
		delete(f.open, q.Get("uploadId"))
		f.aborted = append(f.aborted, key)
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete && key != "":
		f.deleted = append(f.deleted, key)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "not implemented", http.StatusNotImplemented)
	}
}

func writeXML(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_ = xml.NewEncoder(w).Encode(v)
}
