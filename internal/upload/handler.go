package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/mediadrop/uploader/internal/response"
	"github.com/mediadrop/uploader/internal/storage"
)

// FileField is the multipart field the upload is read from.
const FileField = "file"

// formOverhead is the body allowance on top of Policy.MaxBytes for
// boundaries, part headers and ignored text fields. Text fields that use it
// up fail with LIMIT_FIELD_VALUE rather than LIMIT_FILE_SIZE.
const formOverhead = 1 << 20

// Handler serves the upload endpoint.
type Handler struct {
	store  storage.AssetStore
	policy Policy
}

// NewHandler creates an upload Handler writing accepted files to store.
func NewHandler(store storage.AssetStore, policy Policy) *Handler {
	return &Handler{store: store, policy: policy}
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Accepts one image or video (mp4, mkv, avi, mov, flv, webm, jpg, jpeg, png, gif) up to 100 MiB and returns its URL.
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"image or video file"
//	@Success		200		{object}	response.Body
//	@Failure		400		{object}	response.Body
//	@Failure		500		{object}	response.Body
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.policy.MaxBytes+formOverhead)

	asset, err := h.accept(r.Context(), r)

	var uploadErr *Error
	switch {
	case err == nil:
		log.Printf("upload: stored %s (%d bytes)", asset.Location, asset.Size)
		response.Uploaded(w, asset.URL)
	case errors.Is(err, ErrNoFile):
		response.BadRequest(w, response.MsgNoFile)
	case errors.As(err, &uploadErr):
		response.BadRequest(w, "Upload Error: "+uploadErr.Message)
	default:
		log.Printf("upload: %v", err)
		response.InternalError(w, err)
	}
}

// accept walks the multipart body, stores the single file part and rejects
// anything else that looks like a file.
func (h *Handler) accept(ctx context.Context, r *http.Request) (*storage.Asset, error) {
	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, ErrNoFile
	}
	if err != nil {
		return nil, readError(err)
	}

	var asset *storage.Asset
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, h.discard(ctx, asset, readError(err))
		}

		if part.FileName() == "" {
			// Plain form field; NextPart skips whatever is left of it.
			continue
		}
		if part.FormName() != FileField || asset != nil {
			return nil, h.discard(ctx, asset, errUnexpectedField)
		}

		asset, err = h.saveFile(ctx, part)
		if err != nil {
			return nil, err
		}
	}

	if asset == nil {
		return nil, ErrNoFile
	}
	return asset, nil
}

// saveFile validates one file part and streams it into the store.
func (h *Handler) saveFile(ctx context.Context, part *multipart.Part) (*storage.Asset, error) {
	contentType := part.Header.Get("Content-Type")
	if err := h.policy.Check(part.FileName(), contentType); err != nil {
		return nil, err
	}

	body := newLimitReader(part, h.policy.MaxBytes)
	asset, err := h.store.Save(ctx, storage.Object{
		Filename:    part.FileName(),
		ContentType: contentType,
		Body:        body,
	})
	switch {
	case body.exceeded, bodyExhausted(body.err):
		return nil, h.discard(ctx, asset, errTooLarge)
	case body.err != nil:
		return nil, h.discard(ctx, asset, readError(body.err))
	case err != nil:
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return asset, nil
}

// discard removes an asset already stored for a request that is being
// rejected, then returns err.
func (h *Handler) discard(ctx context.Context, asset *storage.Asset, err error) error {
	if asset == nil {
		return err
	}
	if delErr := h.store.Delete(ctx, asset.ID); delErr != nil {
		log.Printf("upload: remove rejected asset %s: %v", asset.ID, delErr)
	}
	return err
}
