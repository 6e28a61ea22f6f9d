// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/validate"
)

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES (default 4 MB).
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
// An empty body decodes as {} so validation reports the missing fields.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}

// Multipart parses a multipart/form-data body of at most maxBytes and copies
// its text fields into dest using the `form` tag (falling back to the json
// name). Alternate spellings may be listed: `form:"is_veg,isVeg"`.
// Field types: string, bool, ints, uints, floats, pointers to those, and
// anything implementing encoding.TextUnmarshaler (decimal.Decimal).
func Multipart(r *http.Request, dest interface{}, maxBytes int64) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("upload too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	if err := fill(dest, r.MultipartForm); err != nil {
		return nil, err
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// File returns the uploaded file under field, or ok=false when absent.
// Multipart must have been called first.
func File(r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	if r.MultipartForm == nil {
		return nil, nil, false
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil, false
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, nil, false
	}
	return f, headers[0], true
}

func fill(dest interface{}, form *multipart.Form) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.New("bind: dest must be a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		raw, ok := lookup(form.Value, formNames(f))
		if !ok {
			continue
		}
		if err := setField(rv.Field(i), raw); err != nil {
			return fmt.Errorf("invalid value for %s: %w", formNames(f)[0], err)
		}
	}
	return nil
}

func formNames(f reflect.StructField) []string {
	tag := f.Tag.Get("form")
	if tag == "" {
		tag, _, _ = strings.Cut(f.Tag.Get("json"), ",")
	}
	if tag == "" || tag == "-" {
		return []string{strings.ToLower(f.Name)}
	}
	return strings.Split(tag, ",")
}

func lookup(values map[string][]string, names []string) (string, bool) {
	for _, n := range names {
		if vs, ok := values[n]; ok && len(vs) > 0 {
			return strings.TrimSpace(vs[0]), true
		}
	}
	return "", false
}

func setField(v reflect.Value, raw string) error {
	if v.Kind() == reflect.Ptr {
		if raw == "" {
			return nil
		}
		ptr := reflect.New(v.Type().Elem())
		if err := setField(ptr.Elem(), raw); err != nil {
			return err
		}
		v.Set(ptr)
		return nil
	}

	if tu, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
		if raw == "" {
			return nil
		}
		return tu.UnmarshalText([]byte(raw))
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.SetFloat(n)
	default:
		return fmt.Errorf("unsupported field kind %s", v.Kind())
	}
	return nil
}
