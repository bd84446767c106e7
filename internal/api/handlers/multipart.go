package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/isdelr/inkpost-be/internal/services"
)

const maxFieldBytes = 1 << 20

// postForm is a parsed create/update request. A cover file, if present, has
// been spooled to a temp file that Close removes.
type postForm struct {
	Input       services.PostInput
	file        *os.File
	contentType string
}

// Upload returns the spooled cover, or nil when none was sent.
func (f *postForm) Upload() *services.Upload {
	if f.file == nil {
		return nil
	}
	return &services.Upload{Body: f.file, ContentType: f.contentType}
}

// Close releases and deletes the temp file. It is safe to call more than once.
func (f *postForm) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	name := f.file.Name()
	f.file.Close()
	f.file = nil
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readPostForm parses multipart/form-data (fields plus an optional "file"
// part) or a plain JSON body without a file.
func readPostForm(w http.ResponseWriter, r *http.Request, tempDir string, maxBytes int64) (*postForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var payload struct {
			Title   string `json:"title"`
			Summary string `json:"summary"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, bodyError(err)
		}
		return &postForm{Input: services.PostInput(payload)}, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: expected multipart/form-data", services.ErrValidation)
	}

	form := &postForm{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			form.Close()
			return nil, bodyError(err)
		}

		switch name := part.FormName(); {
		case name == "file" || name == "cover":
			if part.FileName() != "" && form.file == nil {
				err = form.spool(part, tempDir)
			}
		case name == "title" || name == "summary" || name == "content":
			var value string
			value, err = readField(part)
			switch name {
			case "title":
				form.Input.Title = value
			case "summary":
				form.Input.Summary = value
			default:
				form.Input.Content = value
			}
		}
		part.Close()
		if err != nil {
			form.Close()
			return nil, err
		}
	}
	return form, nil
}

func (f *postForm) spool(part *multipart.Part, tempDir string) error {
	tmp, err := os.CreateTemp(tempDir, "upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	f.file = tmp

	n, err := io.Copy(tmp, part)
	if err != nil {
		return bodyError(err)
	}
	if n == 0 {
		// An empty file input means "no new cover".
		return f.Close()
	}

	f.contentType = sniffContentType(tmp, part.Header.Get("Content-Type"))
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind temp file: %w", err)
	}
	return nil
}

func readField(part io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", bodyError(err)
	}
	if len(b) > maxFieldBytes {
		return "", fmt.Errorf("%w: form field too large", services.ErrValidation)
	}
	return string(b), nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", errPayloadTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: malformed request body", services.ErrValidation)
}

// sniffContentType keeps a declared content type unless it is missing or
// generic.
func sniffContentType(f *os.File, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	buf := make([]byte, 512)
	n, _ := f.ReadAt(buf, 0)
	return http.DetectContentType(buf[:n])
}
