package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
)

const maxFieldBytes = 1 << 20

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxFieldBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apierrors.Invalid("invalid request body")
}

// actorID returns the id of the authenticated caller, or "" on public routes.
func actorID(r *http.Request) string {
	identity, _ := auth.IdentityFromContext(r.Context())
	return identity.UserID
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return value
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// multipartForm holds text fields and the local paths of staged file parts.
type multipartForm struct {
	values map[string]string
	files  map[string]string
}

func (f multipartForm) value(key string) string {
	return strings.TrimSpace(f.values[key])
}

func (f multipartForm) file(key string) string {
	return f.files[key]
}

// discard removes every staged file. Used when the request fails before a
// service takes ownership of the files.
func (f multipartForm) discard() {
	for _, path := range f.files {
		_ = os.Remove(path)
	}
}

// stageMultipart streams a multipart body, writing the parts named in fileFields
// to temporary files under the upload directory. Other file parts are skipped.
func stageMultipart(w http.ResponseWriter, r *http.Request, uploads config.UploadConfig, fileFields ...string) (multipartForm, error) {
	form := multipartForm{values: map[string]string{}, files: map[string]string{}}

	if uploads.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxBytes)
	}
	reader, err := r.MultipartReader()
	if err != nil {
		return form, apierrors.Invalid("expected multipart form data")
	}

	allowed := make(map[string]bool, len(fileFields))
	for _, field := range fileFields {
		allowed[field] = true
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			form.discard()
			return multipartForm{}, uploadError(err)
		}

		name := part.FormName()
		if part.FileName() == "" {
			data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			_ = part.Close()
			if err != nil {
				form.discard()
				return multipartForm{}, uploadError(err)
			}
			form.values[name] = string(data)
			continue
		}

		if !allowed[name] || form.files[name] != "" {
			_ = part.Close()
			continue
		}

		path, err := stageFile(uploads.Dir, part.FileName(), part)
		_ = part.Close()
		if err != nil {
			form.discard()
			return multipartForm{}, uploadError(err)
		}
		form.files[name] = path
	}
}

func stageFile(dir, filename string, src io.Reader) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	file, err := os.CreateTemp(dir, "upload-*"+safeExt(filename))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(file, src); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// safeExt keeps a short alphanumeric extension so content types survive staging.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierrors.Invalid("upload exceeds the maximum allowed size")
	}
	return apierrors.Internal("failed to read upload", err)
}
