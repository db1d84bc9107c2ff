package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/spf13/cast"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/media"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/payload"
)

const multipartMemory = 8 << 20

// productForm is a product mutation request as received, either multipart form
// data or a JSON object. Both are flattened into the shape multipart uses:
// repeated or `key[]` values for lists and `specifications[key]` for the
// specifications mapping.
type productForm struct {
	values map[string][]string
	files  map[string][]*multipart.FileHeader
	specs  map[string]string

	closers []io.Closer
}

func parseProductForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*productForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, bodyError(err)
		}
		return newMultipartForm(r.MultipartForm), nil
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, bodyError(err)
		}
		return newJSONForm(body)
	default:
		return nil, apperr.ValidationErr.WithMsg("content type must be multipart/form-data or application/json")
	}
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.ValidationErr.WithMsg(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)).WrapParent(err)
	}
	return apperr.ValidationErr.WithMsg("malformed request body").WrapParent(err)
}

func newMultipartForm(mf *multipart.Form) *productForm {
	f := &productForm{
		values: map[string][]string{},
		files:  map[string][]*multipart.FileHeader{},
	}

	for key, vals := range mf.Value {
		if name, ok := specKey(key); ok {
			if f.specs == nil {
				f.specs = map[string]string{}
			}
			if len(vals) > 0 {
				f.specs[name] = vals[len(vals)-1]
			}
			continue
		}
		f.values[key] = append(f.values[key], vals...)
	}
	for key, fhs := range mf.File {
		key = strings.TrimSuffix(key, "[]")
		f.files[key] = append(f.files[key], fhs...)
	}

	return f
}

func newJSONForm(body map[string]any) (*productForm, error) {
	f := &productForm{
		values: map[string][]string{},
		files:  map[string][]*multipart.FileHeader{},
	}

	for key, v := range body {
		switch val := v.(type) {
		case nil:
			f.values[key] = []string{""}
		case []any:
			items, err := cast.ToStringSliceE(val)
			if err != nil {
				return nil, apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid %s", key)).WrapParent(err)
			}
			f.values[key+"[]"] = items
		case map[string]any:
			if key != "specifications" {
				return nil, apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid %s", key))
			}
			f.specs = make(map[string]string, len(val))
			for k, sv := range val {
				s, err := cast.ToStringE(sv)
				if err != nil {
					return nil, apperr.ValidationErr.WithMsg("invalid specifications").WrapParent(err)
				}
				f.specs[k] = s
			}
		default:
			s, err := cast.ToStringE(val)
			if err != nil {
				return nil, apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid %s", key)).WrapParent(err)
			}
			f.values[key] = []string{s}
		}
	}

	return f, nil
}

func specKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, "specifications[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return "", false
	}
	return strings.TrimSuffix(rest, "]"), true
}

// str returns the last value sent for key.
func (f *productForm) str(key string) (string, bool) {
	vals, ok := f.values[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[len(vals)-1], true
}

func (f *productForm) strPtr(key string) *string {
	s, ok := f.str(key)
	if !ok {
		return nil
	}
	return &s
}

// list classifies a list field: `key[]` or a repeated key arrives structured,
// a single value arrives as a delimited string.
func (f *productForm) list(key string) payload.RawList {
	if vals, ok := f.values[key+"[]"]; ok {
		return payload.StructuredList(vals)
	}

	vals, ok := f.values[key]
	switch {
	case !ok:
		return payload.RawList{}
	case len(vals) > 1:
		return payload.StructuredList(vals)
	default:
		return payload.DelimitedString(vals[0])
	}
}

func (f *productForm) specifications() payload.RawSpecifications {
	if f.specs != nil {
		return payload.StructuredSpecifications(f.specs)
	}
	if s, ok := f.str("specifications"); ok {
		return payload.EncodedSpecifications(s)
	}
	return payload.RawSpecifications{}
}

// float coerces key to a number. Absent and empty values yield nil.
func (f *productForm) float(key string) (*float64, error) {
	s, ok := f.str(key)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, nil
	}

	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return nil, apperr.ValidationErr.WithMsg(fmt.Sprintf("%s must be a number", key)).WrapParent(err)
	}
	return &v, nil
}

func (f *productForm) bool(key string) (*bool, error) {
	s, ok := f.str(key)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, nil
	}

	v, err := cast.ToBoolE(strings.TrimSpace(s))
	if err != nil {
		return nil, apperr.ValidationErr.WithMsg(fmt.Sprintf("%s must be a boolean", key)).WrapParent(err)
	}
	return &v, nil
}

// file opens the single file sent under key. More than one is rejected.
func (f *productForm) file(key string) (*media.File, error) {
	fhs := f.files[key]
	switch len(fhs) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, apperr.ValidationErr.WithMsg(fmt.Sprintf("only one %s is allowed", key))
	}

	mf, err := f.open(fhs[0])
	if err != nil {
		return nil, err
	}
	return &mf, nil
}

func (f *productForm) fileList(key string) ([]media.File, error) {
	fhs := f.files[key]
	out := make([]media.File, 0, len(fhs))
	for _, fh := range fhs {
		mf, err := f.open(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, nil
}

func (f *productForm) open(fh *multipart.FileHeader) (media.File, error) {
	if !isImage(fh) {
		return media.File{}, apperr.ValidationErr.WithMsg(fmt.Sprintf("%s is not an image", fh.Filename))
	}

	file, err := fh.Open()
	if err != nil {
		return media.File{}, fmt.Errorf("open uploaded file %s: %w", fh.Filename, err)
	}
	f.closers = append(f.closers, file)

	return media.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     file,
	}, nil
}

func isImage(fh *multipart.FileHeader) bool {
	ct := fh.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "image/")
}

// close releases opened files and the temporary files backing the form.
func (f *productForm) close(r *http.Request) {
	for _, c := range f.closers {
		//nolint:errcheck
		c.Close()
	}
	if r.MultipartForm != nil {
		//nolint:errcheck
		r.MultipartForm.RemoveAll()
	}
}
