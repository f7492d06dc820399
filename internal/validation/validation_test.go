package validation

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		body      string
		wantField string
		wantErr   bool
	}{
		{name: "item minimal", kind: Item, body: `{"name":"Panadol"}`},
		{name: "item numeric quantity", kind: Item, body: `{"name":"Panadol","quantity":4,"expiry":"12/25"}`},
		{name: "item string quantity", kind: Item, body: `{"name":"Panadol","quantity":"4"}`},
		{name: "item null quantity", kind: Item, body: `{"name":"Panadol","quantity":null}`},
		{name: "item fractional quantity", kind: Item, body: `{"name":"Panadol","quantity":1.5}`, wantErr: true, wantField: "quantity"},
		{name: "item missing name", kind: Item, body: `{"quantity":1}`, wantErr: true},
		{name: "item unknown field", kind: Item, body: `{"name":"x","price":3}`, wantErr: true},
		{name: "item name wrong type", kind: Item, body: `{"name":7}`, wantErr: true, wantField: "name"},
		{name: "category", kind: Category, body: `{"name":"Antibiotics","responsible_person":"بسام","password":"964"}`},
		{name: "quantity delta", kind: Quantity, body: `{"delta":-1}`},
		{name: "quantity delta string", kind: Quantity, body: `{"delta":"-1"}`, wantErr: true, wantField: "delta"},
		{name: "shortage remote image", kind: Shortage, body: `{"image":"http://x/a.jpg"}`, wantErr: true, wantField: "image"},
		{name: "shortage", kind: Shortage, body: `{"image":"data:image/png;base64,AAAA","note":"miswak"}`},
		{name: "session", kind: Session, body: `{"employee":"سارة"}`},
		{name: "not json", kind: Session, body: `{`, wantErr: true},
		{name: "not an object", kind: Session, body: `[]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.kind, []byte(tt.body))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *Error
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if tt.wantField != "" && ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q (%v)", ve.Field, tt.wantField, ve)
			}
		})
	}
}

func TestValidateUnknownKind(t *testing.T) {
	err := Validate("receipt", []byte(`{}`))
	var ve *Error
	if err == nil || errors.As(err, &ve) {
		t.Fatalf("err = %v, want a plain error", err)
	}
}
