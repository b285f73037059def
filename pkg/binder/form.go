package binder

import (
	"fmt"
	"mime"
	"net/http"
)

// Form binds application/x-www-form-urlencoded bodies into `form` tagged
// fields. Fields without a tag use the lowercased field name.
//
//	type LoginForm struct {
//		Email    string `form:"email"`
//		Password string `form:"password"`
//		ReturnTo string `form:"to"`
//	}
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/x-www-form-urlencoded", ErrMissingContentType)
		}

		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/x-www-form-urlencoded" {
			return fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded", ErrUnsupportedMediaType, contentType)
		}

		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
		return bindToStruct(v, "form", r.PostForm, ErrFailedToParseForm)
	}
}

// Query binds URL query parameters into `query` tagged fields.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}

// Path binds route parameters into `path` tagged fields using extractor,
// typically chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}
		values := make(map[string][]string)
		for _, name := range tagNames(v, "path") {
			if value := extractor(r, name); value != "" {
				values[name] = []string{value}
			}
		}
		return bindToStruct(v, "path", values, ErrFailedToParsePath)
	}
}
