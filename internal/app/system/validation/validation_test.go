package validation_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
)

type sample struct {
	ID       string `json:"id" validate:"required,objectid"`
	Email    string `json:"email" validate:"omitempty,email"`
	Timezone string `json:"timezone" validate:"omitempty,timezone_name"`
	Count    int    `json:"count" validate:"min=0,max=10"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestBind(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantFields []string
	}{
		{"valid", `{"id":"64b7f0c2a1b2c3d4e5f60718","email":"a@b.co","timezone":"Europe/Madrid","count":3}`, false, nil},
		{"empty body", ``, true, nil},
		{"malformed", `{"id":`, true, nil},
		{"unknown field", `{"id":"64b7f0c2a1b2c3d4e5f60718","nope":1}`, true, nil},
		{"trailing data", `{"id":"64b7f0c2a1b2c3d4e5f60718"} {}`, true, nil},
		{"bad id", `{"id":"xyz"}`, true, []string{"id"}},
		{"several bad fields", `{"id":"","email":"x","timezone":"Moon/Base","count":11}`, true, []string{"id", "email", "timezone", "count"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst sample
			err := validation.Bind(post(tt.body), &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if apierr.StatusOf(err) != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", apierr.StatusOf(err))
			}
			if tt.wantFields == nil {
				return
			}
			var ae *apierr.Error
			if !errors.As(err, &ae) {
				t.Fatalf("not an apierr.Error: %v", err)
			}
			fields, _ := ae.Details["details"].([]validation.FieldError)
			got := map[string]bool{}
			for _, f := range fields {
				got[f.Field] = true
			}
			for _, f := range tt.wantFields {
				if !got[f] {
					t.Errorf("missing field error for %q in %+v", f, fields)
				}
			}
		})
	}
}

func TestObjectID(t *testing.T) {
	if id := validation.ObjectID("64b7f0c2a1b2c3d4e5f60718"); id.Hex() != "64b7f0c2a1b2c3d4e5f60718" {
		t.Errorf("ObjectID = %s", id.Hex())
	}
	if id := validation.ObjectID("bad"); !id.IsZero() {
		t.Errorf("ObjectID(bad) = %s, want zero", id.Hex())
	}
}

func TestBindOptional(t *testing.T) {
	chunked := func(body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader(body)))
		r.ContentLength = -1
		return r
	}
	tests := []struct {
		name    string
		req     *http.Request
		wantErr bool
		wantID  string
	}{
		{"no body", httptest.NewRequest(http.MethodPost, "/", nil), false, ""},
		{"empty chunked body", chunked(""), false, ""},
		{"chunked body", chunked(`{"id":"64b7f0c2a1b2c3d4e5f60718"}`), false, "64b7f0c2a1b2c3d4e5f60718"},
		{"malformed", chunked(`{"id":`), true, ""},
		{"invalid", post(`{"id":"xyz"}`), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst sample
			err := validation.BindOptional(tt.req, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if apierr.StatusOf(err) != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", apierr.StatusOf(err))
				}
				return
			}
			if dst.ID != tt.wantID {
				t.Errorf("id = %q, want %q", dst.ID, tt.wantID)
			}
		})
	}
}
