package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Param returns the named path parameter from the request.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// QueryParam returns the named query parameter from the request.
func QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// Decoder represents data that can decode itself.
type Decoder interface {
	Decode(data []byte) error
}

// validator is implemented by request models that validate themselves.
type validator interface {
	Validate() error
}

// Decode reads the body of an HTTP request and decodes it into the specified
// data model. If the model implements the validator interface, Validate is
// called after decoding.
func Decode(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("unable to read request body: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("request body is empty")
	}

	if decoder, ok := v.(Decoder); ok {
		if err := decoder.Decode(data); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("json decode: %w", err)
		}
	}

	if validator, ok := v.(validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation: %w", err)
		}
	}

	return nil
}
