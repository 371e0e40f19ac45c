// Package validation decodes JSON request bodies into typed structs and
// validates them with go-playground/validator, reporting field-level errors.
//
//	type createGroupRequest struct {
//	    OwnerProfileID string `json:"ownerProfileId" validate:"required,objectid"`
//	    Name           string `json:"name" validate:"required,max=120"`
//	}
//
//	var req createGroupRequest
//	if err := validation.Bind(r, &req); err != nil {
//	    respond.Error(w, h.Log, err)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the shared validator, registering custom tags on first use:
//   - objectid: 24-char hex Mongo ObjectID
//   - timezone_name: loadable IANA zone name
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		_ = validate.RegisterValidation("timezone_name", func(fl validator.FieldLevel) bool {
			_, err := time.LoadLocation(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// FieldError is one failed rule, reported to the client.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Struct validates v and returns a 400 *apierr.Error listing every failed field.
func Struct(v any) error {
	err := Get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.BadRequest("invalid request")
	}

	fields := make([]FieldError, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		m := message(fe)
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Message: m})
		msgs = append(msgs, m)
	}
	return apierr.BadRequest(strings.Join(msgs, "; ")).With("details", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "objectid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "timezone_name":
		return fmt.Sprintf("%s must be an IANA time zone", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// Decode reads a single JSON object into dst. Unknown fields, trailing data
// and oversized bodies are rejected with a 400.
func Decode(r *http.Request, dst any) error {
	empty, err := decode(r, dst)
	if err != nil {
		return err
	}
	if empty {
		return apierr.BadRequest("request body is required")
	}
	return nil
}

func decode(r *http.Request, dst any) (empty bool, err error) {
	if r.Body == nil || r.Body == http.NoBody {
		return true, nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, apierr.BadRequest("malformed JSON body: " + err.Error())
	}
	if dec.More() {
		return false, apierr.BadRequest("request body must contain a single JSON object")
	}
	return false, nil
}

// Bind decodes then validates.
func Bind(r *http.Request, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	return Struct(dst)
}

// BindOptional is Bind for endpoints whose body may be absent. An empty body,
// whatever its Content-Length or transfer encoding, leaves dst untouched.
func BindOptional(r *http.Request, dst any) error {
	empty, err := decode(r, dst)
	if err != nil || empty {
		return err
	}
	return Struct(dst)
}

// ObjectID parses a hex id that already passed the objectid rule.
func ObjectID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}
