package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","name":"Alice"}`))

	var dst samplePayload
	if err := DecodeJSONBody(r, &dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dst.Email != "a@b.com" || dst.Name != "Alice" {
		t.Fatalf("unexpected payload: %+v", dst)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","name":"Alice","extra":1}`))

	var dst samplePayload
	err := DecodeJSONBody(r, &dst)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyEmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))

	var dst samplePayload
	err := DecodeJSONBody(r, &dst)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyFieldMessagesUseJSONNames(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","name":""}`))

	var dst samplePayload
	err := DecodeJSONBody(r, &dst)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["email"] == "" {
		t.Fatalf("expected email detail, got %v", details)
	}
	if details["name"] != "is required" {
		t.Fatalf("expected name detail, got %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25", nil)
	got, err := ParseQueryInt(r, "limit", 10)
	if err != nil || got != 25 {
		t.Fatalf("got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 10)
	if err != nil || got != 10 {
		t.Fatalf("default: got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err = ParseQueryInt(r, "limit", 10); err == nil {
		t.Fatal("expected error for non-integer limit")
	}
}
