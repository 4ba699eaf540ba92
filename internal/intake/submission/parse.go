package submission

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"bitable-intake/internal/common/errors"
	"bitable-intake/internal/intake/fieldmap"
)

const multipartMemory = 8 << 20

// ParseRequest reads the request body into a Field Map. JSON must be an
// object to contribute fields; forms collapse repeated keys into a list;
// any other content type is kept whole under "raw".
func ParseRequest(r *http.Request) (fieldmap.FieldMap, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		return parseJSON(r.Body)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errors.NewInvalidPayloadError(err)
		}
		out := fieldmap.FieldMap{}
		for key, values := range r.PostForm {
			for _, v := range values {
				appendValue(out, key, v)
			}
		}
		return out, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, errors.NewInvalidPayloadError(err)
		}
		return parseMultipart(r.MultipartForm)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.NewInvalidPayloadError(err)
	}
	if len(body) == 0 {
		return fieldmap.FieldMap{}, nil
	}
	return fieldmap.FieldMap{"raw": string(body)}, nil
}

func parseJSON(body io.Reader) (fieldmap.FieldMap, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.NewInvalidPayloadError(err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fieldmap.FieldMap{}, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.NewInvalidPayloadError(err)
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return fieldmap.FieldMap{}, nil
	}
	return fieldmap.FieldMap(obj), nil
}

func parseMultipart(form *multipart.Form) (fieldmap.FieldMap, error) {
	out := fieldmap.FieldMap{}
	if form == nil {
		return out, nil
	}

	for key, values := range form.Value {
		for _, v := range values {
			appendValue(out, key, v)
		}
	}

	for key, headers := range form.File {
		for _, fh := range headers {
			file, err := readFile(fh)
			if err != nil {
				return nil, errors.NewInvalidPayloadError(err)
			}
			appendValue(out, key, file)
		}
	}

	return out, nil
}

func readFile(fh *multipart.FileHeader) (*fieldmap.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %q: %w", fh.Filename, err)
	}

	return &fieldmap.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// appendValue sets key on first sight and turns it into a list on repeats.
func appendValue(out fieldmap.FieldMap, key string, v interface{}) {
	existing, ok := out[key]
	if !ok {
		out[key] = v
		return
	}
	if list, ok := existing.([]interface{}); ok {
		out[key] = append(list, v)
		return
	}
	out[key] = []interface{}{existing, v}
}
