package handlers

import (
	stderrors "errors"
	"mime/multipart"
	"net/http"

	"travel-blog-server/models"
	"travel-blog-server/utils/errors"
)

// multipartOverhead is allowed on top of the file cap for form fields and
// part headers.
const multipartOverhead = 1 << 20

// parseMultipart reads a multipart form, keeping at most maxFileBytes in memory.
// The caller must call cleanup.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxFileBytes int64) (cleanup func(), err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.ErrPayloadTooLarge
		}
		return nil, errors.NewAPIError(errors.ErrInvalidInput.Code, "Expected a multipart form", http.StatusBadRequest, err.Error())
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// formAttachment returns the "image" part, or nil when none was sent.
func formAttachment(r *http.Request) (*models.Attachment, func(), error) {
	file, header, err := r.FormFile("image")
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, errors.Invalid("INVALID_FILE", "Could not read uploaded file")
	}
	return attachment(file, header), func() { _ = file.Close() }, nil
}

func attachment(file multipart.File, header *multipart.FileHeader) *models.Attachment {
	return &models.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

// formValue returns a pointer to a submitted field, or nil when the field is absent.
func formValue(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
