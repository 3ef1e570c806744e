package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate
)

func init() {
	validate = validator.New()
	// Report fields by their JSON names so locations match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// FieldError describes one invalid input. Loc is the path to the value,
// starting with "body".
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// ValidationError wraps field errors for a rejected request body
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", locString(fe.Loc), fe.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func locString(loc []interface{}) string {
	parts := make([]string, len(loc))
	for i, p := range loc {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		fields = append(fields, fieldError(err))
	}
	return &ValidationError{Errors: fields}
}

func fieldError(err validator.FieldError) FieldError {
	fe := FieldError{Loc: bodyLoc(err.Namespace())}
	param := err.Param()

	switch err.Tag() {
	case "required":
		fe.Msg, fe.Type = "Field required", "missing"
	case "min":
		if err.Kind() == reflect.String {
			fe.Msg = fmt.Sprintf("String should have at least %s %s", param, plural(param, "character"))
			fe.Type = "string_too_short"
		} else {
			fe.Msg, fe.Type = "Input should be greater than or equal to "+param, "greater_than_equal"
		}
	case "max":
		if err.Kind() == reflect.String {
			fe.Msg = fmt.Sprintf("String should have at most %s %s", param, plural(param, "character"))
			fe.Type = "string_too_long"
		} else {
			fe.Msg, fe.Type = "Input should be less than or equal to "+param, "less_than_equal"
		}
	case "gt":
		fe.Msg, fe.Type = "Input should be greater than "+param, "greater_than"
	case "gte":
		fe.Msg, fe.Type = "Input should be greater than or equal to "+param, "greater_than_equal"
	case "lt":
		fe.Msg, fe.Type = "Input should be less than "+param, "less_than"
	case "lte":
		fe.Msg, fe.Type = "Input should be less than or equal to "+param, "less_than_equal"
	default:
		fe.Msg = fmt.Sprintf("Value error, failed on '%s' rule", err.Tag())
		fe.Type = "value_error"
	}
	return fe
}

// bodyLoc turns "GenerateRequest.prompt" into ["body", "prompt"]
func bodyLoc(namespace string) []interface{} {
	parts := strings.Split(namespace, ".")
	loc := []interface{}{"body"}
	for _, p := range parts[1:] {
		loc = append(loc, p)
	}
	return loc
}

func plural(n, word string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}

// DecodeJSON decodes a single JSON object from r into dst. Object keys must
// match a field's json name exactly; other keys are ignored. A null value is
// rejected unless the field is tagged nullable:"true". Failures are returned
// as a *ValidationError so they can be reported like field errors.
func DecodeJSON(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return &ValidationError{Errors: []FieldError{decodeFieldError(err)}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &ValidationError{Errors: []FieldError{{
			Loc:  []interface{}{"body", dec.InputOffset()},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}}
	}

	fields, ok := jsonFields(dst)
	if doc := gjson.ParseBytes(raw); ok && doc.IsObject() {
		selected, nullErrs := selectFields(doc, fields)
		if len(nullErrs) > 0 {
			return &ValidationError{Errors: nullErrs}
		}
		exact, err := json.Marshal(selected)
		if err != nil {
			return &ValidationError{Errors: []FieldError{decodeFieldError(err)}}
		}
		raw = exact
	}
	return unmarshal(raw, dst)
}

func unmarshal(raw []byte, dst interface{}) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Errors: []FieldError{decodeFieldError(err)}}
	}
	return nil
}

// jsonField is a struct field as seen by the request decoder
type jsonField struct {
	typ      reflect.Type
	nullable bool
}

// selectFields keeps the top-level keys of doc that name a field of dst
// exactly and reports nulls sent for non-nullable fields.
func selectFields(doc gjson.Result, fields map[string]jsonField) (map[string]json.RawMessage, []FieldError) {
	out := make(map[string]json.RawMessage)
	var nullErrs []FieldError

	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		f, ok := fields[name]
		if !ok {
			return true
		}
		if value.Type == gjson.Null {
			if !f.nullable {
				msg, typ := typeMismatch(f.typ)
				nullErrs = append(nullErrs, FieldError{Loc: []interface{}{"body", name}, Msg: msg, Type: typ})
			}
			delete(out, name)
			return true
		}
		out[name] = json.RawMessage(value.Raw)
		return true
	})
	return out, nullErrs
}

// jsonFields indexes the exported fields of the struct dst points to by
// their json names. ok is false when dst is not a struct.
func jsonFields(dst interface{}) (fields map[string]jsonField, ok bool) {
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	fields = make(map[string]jsonField)
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = fld.Name
		}
		fields[name] = jsonField{typ: fld.Type, nullable: fld.Tag.Get("nullable") == "true"}
	}
	return fields, true
}

func decodeFieldError(err error) FieldError {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, io.EOF):
		return FieldError{Loc: []interface{}{"body"}, Msg: "Field required", Type: "missing"}
	case errors.As(err, &syntaxErr):
		return FieldError{Loc: []interface{}{"body", syntaxErr.Offset}, Msg: "JSON decode error", Type: "json_invalid"}
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return FieldError{
				Loc:  []interface{}{"body"},
				Msg:  "Input should be a valid dictionary or object to extract fields from",
				Type: "model_attributes_type",
			}
		}
		loc := []interface{}{"body"}
		for _, p := range strings.Split(typeErr.Field, ".") {
			loc = append(loc, p)
		}
		msg, typ := typeMismatch(typeErr.Type)
		return FieldError{Loc: loc, Msg: msg, Type: typ}
	default:
		return FieldError{Loc: []interface{}{"body"}, Msg: "JSON decode error", Type: "json_invalid"}
	}
}

func typeMismatch(t reflect.Type) (string, string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "Input should be a valid string", "string_type"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Input should be a valid integer", "int_type"
	case reflect.Float32, reflect.Float64:
		return "Input should be a valid number", "float_type"
	case reflect.Bool:
		return "Input should be a valid boolean", "bool_type"
	default:
		return "Input should be a valid " + t.Kind().String(), t.Kind().String() + "_type"
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationErrors extracts field errors from a ValidationError
func GetValidationErrors(err error) []FieldError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Errors
	}
	return nil
}
