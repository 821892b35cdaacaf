/*
Package req provides helpers for parsing and binding HTTP request data.

It covers strict JSON body binding (unknown fields and trailing content
rejected) and multipart form setup with an enforced body size cap.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Woeter69/algo/internal/pkg/errs"
)

const (
	// MaxFormMemory is the in-memory budget for non-file multipart
	// fields; larger file parts spill to temporary files.
	MaxFormMemory int64 = 32 << 20 // 32 MB

	// MaxRequestFileSize caps the entire request body, files included,
	// enforced through http.MaxBytesReader.
	MaxRequestFileSize int64 = 20 << 20 // 20 MB
)

// BindJSON decodes the JSON request body into dst, rejecting unknown
// fields and trailing content.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart wraps the body in a size-capped reader and parses the
// multipart form, mapping failures to request-handling error codes.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestFileSize)

	err := r.ParseMultipartForm(MaxFormMemory)

	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
