package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler stores post images. Uploads run ahead of the createPost and
// updatePost operations: the client uploads first, then passes the returned
// path into the mutation.
type UploadHandler struct {
	images *storage.ImageStore
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(images *storage.ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// Upload accepts a single multipart image plus an optional oldPath field.
// When a new file arrives alongside an oldPath, the prior file is removed.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !auth.ResultFromContext(r.Context()).Authenticated {
		writeError(w, apperr.Unauthorized("Not authorized."))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, &apperr.Error{Status: http.StatusBadRequest, Message: "Invalid upload body"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// Editing without attaching a new file is a normal flow; the
		// client keeps the stored path it already has.
		writeJSON(w, http.StatusOK, map[string]string{"message": "Unable to get image file."})
		return
	}
	defer file.Close()

	reader, ok := sniffImage(file)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Unable to get image file."})
		return
	}

	filePath, err := h.images.Save(reader, header.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to store uploaded image")
		writeError(w, err)
		return
	}

	// oldPath arrives only when the user replaced the image of an existing post.
	if oldPath := r.FormValue("oldPath"); oldPath != "" {
		h.images.Remove(oldPath)
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "File stored",
		"filePath": filePath,
	})
}

// sniffImage checks the stream's magic bytes and returns a reader positioned
// at the start. Only PNG and JPEG content is accepted.
func sniffImage(file io.Reader) (io.Reader, bool) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, false
	}
	head = head[:n]

	switch http.DetectContentType(head) {
	case "image/png", "image/jpeg":
		return io.MultiReader(bytes.NewReader(head), file), true
	default:
		return nil, false
	}
}
