package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/seqkit/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "John")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("name", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorPositive(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{1, false},
		{64, false},
		{0, true},
		{-3, true},
	}
	for _, tc := range tests {
		v := New().Positive("size", tc.value)
		if v.HasErrors() != tc.wantErr {
			t.Errorf("Positive(%d): errors = %v, want %v", tc.value, v.Errors(), tc.wantErr)
		}
	}
}

func TestValidatorNonNegative(t *testing.T) {
	if New().NonNegative("count", 0).HasErrors() {
		t.Error("expected 0 to be accepted")
	}
	if !New().NonNegative("count", -1).HasErrors() {
		t.Error("expected -1 to be rejected")
	}
}

func TestValidatorRange(t *testing.T) {
	v := New()
	v.Range("queue", 5, 1, 10)
	if v.HasErrors() {
		t.Error("expected no errors for value in range")
	}

	v2 := New()
	v2.Range("queue", 0, 1, 10)
	if !v2.HasErrors() {
		t.Error("expected error for value below range")
	}

	v3 := New()
	v3.Range("queue", 11, 1, 10)
	if !v3.HasErrors() {
		t.Error("expected error for value above range")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"json", "console"}

	v := New()
	v.OneOf("format", "json", allowed)
	if v.HasErrors() {
		t.Error("expected no errors for allowed value")
	}

	v2 := New()
	v2.OneOf("format", "xml", allowed)
	if !v2.HasErrors() {
		t.Error("expected error for disallowed value")
	}

	v3 := New()
	v3.OneOf("format", "", allowed)
	if v3.HasErrors() {
		t.Error("expected no errors for empty optional value")
	}
}

func TestValidatorFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(file, []byte("a\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if New().FileExists("input", file).HasErrors() {
		t.Error("expected existing file to pass")
	}
	if New().FileExists("input", "-").HasErrors() {
		t.Error("expected stdin marker to pass")
	}
	if !New().FileExists("input", filepath.Join(dir, "missing.txt")).HasErrors() {
		t.Error("expected missing file to fail")
	}
	if !New().FileExists("input", dir).HasErrors() {
		t.Error("expected directory to fail")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "field", "should not appear")
	if v.HasErrors() {
		t.Error("expected no errors when condition is true")
	}

	v2 := New()
	v2.Custom(false, "field", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error when condition is false")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if appErr := New().Required("name", "John").Validate(); appErr != nil {
		t.Error("expected nil for valid input")
	}

	appErr := New().Required("name", "").Positive("size", 0).Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidArgument {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeInvalidArgument)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected two field errors in details, got %#v", appErr.Details)
	}
	if !strings.Contains(appErr.Message, "name") || !strings.Contains(appErr.Message, "size") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "John").Positive("size", 3).Range("queue", 4, 1, 8)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

type settings struct {
	Name       string `mapstructure:"name" validate:"required"`
	BufferSize int    `mapstructure:"buffer_size" validate:"gte=0,lte=1024"`
	Inner      struct {
		Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	} `mapstructure:"inner"`
}

func TestStructValidateValid(t *testing.T) {
	s := settings{Name: "seqkit", BufferSize: 16}
	s.Inner.Format = "json"
	if err := Validate(s); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	s := settings{BufferSize: -1}
	s.Inner.Format = "xml"

	err := Validate(s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *errors.AppError
	if !errors.As(err, &appErr) || appErr.Code != errors.ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument AppError, got %v", err)
	}
	for _, want := range []string{"name: is required", "buffer_size: must be at least 0", "inner.format: must be one of"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
}

func TestStructValidateStringLength(t *testing.T) {
	type input struct {
		Code string `mapstructure:"code" validate:"required,min=3,max=10"`
	}

	if err := Validate(input{Code: "abc"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	err := Validate(input{Code: "ab"})
	if err == nil || !strings.Contains(err.Error(), "at least 3 characters") {
		t.Errorf("expected length error, got %v", err)
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MergeReadyQueue"); got != "merge_ready_queue" {
		t.Errorf("got %q", got)
	}
}
