package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Path binds string fields tagged `path:"name"` from route parameters using
// extractor, typically chi.URLParam:
//
//	type ProfileRequest struct {
//		Username string `path:"username"`
//	}
//
//	r.Get("/users/{username}", handler.Wrap(profile,
//		handler.WithBinder[handler.Context, ProfileRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a non-nil pointer to struct", ErrFailedToParsePath)
		}

		rv = rv.Elem()
		rt := rv.Type()
		for i := range rv.NumField() {
			field := rv.Field(i)
			tag, ok := rt.Field(i).Tag.Lookup("path")
			if !ok || tag == "-" || !field.CanSet() {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			if field.Kind() != reflect.String {
				return fmt.Errorf("%w: field %s must be a string", ErrFailedToParsePath, rt.Field(i).Name)
			}
			field.SetString(extractor(r, name))
		}

		return nil
	}
}
