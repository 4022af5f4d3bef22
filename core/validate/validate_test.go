package validate

import (
	"errors"
	"testing"

	"warehouse.GO/core/apperror"
)

type itemInput struct {
	ProductID uint  `json:"productId" validate:"required"`
	Quantity  int64 `json:"quantity" validate:"gt=0"`
}

type docInput struct {
	Code  string      `json:"code" validate:"required,max=5"`
	Phone string      `json:"phone" validate:"omitempty,phone"`
	Items []itemInput `json:"items" validate:"required,min=1,dive"`
}

func TestValidate_OK(t *testing.T) {
	v := New("VN")
	in := docInput{Code: "A1", Phone: "+84 912 345 678", Items: []itemInput{{ProductID: 1, Quantity: 2}}}
	if err := v.Validate(&in); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New("VN")
	in := docInput{Code: "TOOLONG", Phone: "12", Items: []itemInput{{ProductID: 0, Quantity: 0}}}
	err := v.Validate(&in)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
	fields := apperror.As(err).Fields
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	for _, want := range []string{"code", "phone", "items[0].productId", "items[0].quantity"} {
		if _, ok := got[want]; !ok {
			t.Errorf("missing field error %q in %v", want, got)
		}
	}
	if got["items[0].quantity"] != "quantity must be greater than 0" {
		t.Errorf("quantity message = %q", got["items[0].quantity"])
	}
}

func TestIsPhone(t *testing.T) {
	if !IsPhone("", "VN") {
		t.Error("empty phone should be accepted (optional)")
	}
	if IsPhone("abc", "VN") {
		t.Error("abc should not be a phone")
	}
	if !IsPhone("+1 650-253-0000", "US") {
		t.Error("+1 650-253-0000 should be valid")
	}
}

type embeddedBase struct {
	Code string `json:"code" validate:"required"`
}

type embeddingRequest struct {
	embeddedBase
	Kind string `json:"kind" validate:"oneof=a b"`
}

func TestValidate_EmbeddedFieldPath(t *testing.T) {
	err := New("VN").Validate(&embeddingRequest{Kind: "c"})
	got := map[string]bool{}
	for _, f := range apperror.As(err).Fields {
		got[f.Field] = true
	}
	if !got["code"] || !got["kind"] || len(got) != 2 {
		t.Errorf("fields = %v, want code and kind", got)
	}
}
