package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - emailok (basic address shape, max 150 chars)
// - nameok (letters, numbers, space, hyphen, apostrophe, 1-100 chars)
// - pwdmin (min length 8)
// - eqfield=OtherField (field equals another field)

var (
	reEmailOK = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	reNameOK  = regexp.MustCompile(`^[A-Za-z0-9 \-']{1,100}$`)
)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "required" {
				if isZeroValue(fv) {
					return errors.New(field.Name + " is required")
				}
			} else if p == "emailok" {
				if sval != "" && (len(sval) > 150 || !reEmailOK.MatchString(sval)) {
					return errors.New(field.Name + " must be a valid email address")
				}
			} else if p == "nameok" {
				if sval != "" && !reNameOK.MatchString(sval) {
					return errors.New(field.Name + " contains invalid characters")
				}
			} else if p == "pwdmin" {
				if len(sval) < 8 {
					return errors.New(field.Name + " must be at least 8 characters")
				}
			} else if strings.HasPrefix(p, "eqfield=") {
				other := strings.TrimPrefix(p, "eqfield=")
				of := v.FieldByName(other)
				if of.IsValid() && of.Kind() == reflect.String {
					if sval != of.String() {
						return errors.New(field.Name + " must equal " + other)
					}
				}
			}
		}
	}
	return nil
}

// isZeroValue reports whether a field fails "required": empty string, zero
// number, or nil pointer/slice/map.
func isZeroValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}
