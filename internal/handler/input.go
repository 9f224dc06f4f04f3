package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/templui/catalog/internal/httpx"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/validation"
)

const maxJSONBody = 1 << 20 // 1MB

// requestInput is the parsed body of a form, multipart or JSON request
type requestInput struct {
	Values url.Values
	Image  *service.ImageUpload

	form *multipart.Form
	file multipart.File
}

// Close releases the uploaded file and any temp files of the multipart form
func (in *requestInput) Close() {
	if in.file != nil {
		_ = in.file.Close()
	}
	if in.form != nil {
		_ = in.form.RemoveAll()
	}
}

// parseInput reads the request body by content type. With maxUpload > 0 an
// optional "image" file field is accepted and validated.
func parseInput(w http.ResponseWriter, r *http.Request, maxUpload int64) (*requestInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var body map[string]any
		err := httpx.DecodeJSON(w, r, &body, maxJSONBody)
		if err != nil {
			return nil, validation.FieldError("body", "The request body must be a valid JSON object.")
		}
		return &requestInput{Values: jsonValues(body)}, nil

	case "multipart/form-data":
		return parseMultipart(w, r, maxUpload)

	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		err := r.ParseForm()
		if err != nil {
			return nil, validation.FieldError("body", "The request body could not be parsed.")
		}
		return &requestInput{Values: r.PostForm}, nil
	}
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxUpload int64) (*requestInput, error) {
	limit := maxUpload
	if limit <= 0 {
		limit = validation.ImageConstraints.MaxSize
	}
	// Leave headroom for the other form fields and multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBody)

	err := r.ParseMultipartForm(limit)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, validation.FieldError("image", fmt.Sprintf("file too large: maximum size is %s", humanize.IBytes(uint64(limit))))
		}
		return nil, validation.FieldError("body", "The request body could not be parsed.")
	}

	in := &requestInput{
		Values: url.Values(r.MultipartForm.Value),
		form:   r.MultipartForm,
	}
	if maxUpload <= 0 {
		return in, nil
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		in.Close()
		return nil, validation.FieldError("image", "The image failed to upload.")
	}
	in.file = file

	mimeType, err := validation.ValidateFile(header, validation.ImageConstraints.WithMaxSize(maxUpload))
	if err != nil {
		in.Close()
		return nil, validation.FieldError("image", err.Error())
	}
	_, err = validation.SanitizeFilename(header.Filename)
	if err != nil {
		in.Close()
		return nil, validation.FieldError("image", "The image has an invalid filename.")
	}

	in.Image = &service.ImageUpload{
		Filename: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Content:  file,
	}
	return in, nil
}

// jsonValues flattens a JSON object into form values. null means "not supplied".
func jsonValues(body map[string]any) url.Values {
	values := url.Values{}
	for key, v := range body {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			values.Set(key, strconv.FormatBool(v))
		default:
			raw, _ := json.Marshal(v)
			values.Set(key, string(raw))
		}
	}
	return values
}
