package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/foliocms/folio/internal/service"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 1 << 20

var errUploadTooLarge = errors.New("upload too large")

// parseForm parses a multipart or urlencoded body. The body may exceed the
// image limit by multipartMemory to leave room for the other fields.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errUploadTooLarge
	}
	return &service.ValidationError{Field: "form", Err: fmt.Errorf("%w: %v", service.ErrInvalidField, err)}
}

// formFile reads the optional file posted under field. An absent or empty
// part yields nil, a file over maxUploadBytes yields errUploadTooLarge.
func (h *Handler) formFile(r *http.Request, field string) (*service.Upload, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer f.Close()

	if h.maxUploadBytes > 0 && hdr.Size > h.maxUploadBytes {
		return nil, errUploadTooLarge
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		return nil, errUploadTooLarge
	}
	return &service.Upload{Field: field, Filename: hdr.Filename, Data: data}, nil
}
