// Package validation checks request payloads against JSON schemas before they are
// decoded into service inputs.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const itemSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "maxLength": 200},
    "quantity": {"type": ["integer", "string", "null"]},
    "expiry": {"type": "string", "maxLength": 32},
    "notes": {"type": "string", "maxLength": 2000},
    "image": {"type": "string"},
    "smart_crop": {"type": "boolean"},
    "drug_category": {"type": "string"},
    "production_date": {"type": "string"},
    "sku": {"type": "string"}
  }
}`

const categorySchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "maxLength": 200},
    "responsible_person": {"type": "string", "maxLength": 200},
    "password": {"type": "string"}
  }
}`

const quantitySchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["delta"],
  "properties": {
    "delta": {"type": "integer"}
  }
}`

const shortageSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["image"],
  "properties": {
    "image": {"type": "string", "pattern": "^data:"},
    "note": {"type": "string", "maxLength": 2000},
    "smart_crop": {"type": "boolean"}
  }
}`

const sessionSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "employee": {"type": "string", "minLength": 1},
    "password": {"type": "string"}
  }
}`

// Payload kinds.
const (
	Item     = "item"
	Category = "category"
	Quantity = "quantity"
	Shortage = "shortage"
	Session  = "session"
)

var schemas = map[string]*jsonschema.Schema{}

func init() {
	for name, src := range map[string]string{
		Item:     itemSchema,
		Category: categorySchema,
		Quantity: quantitySchema,
		Shortage: shortageSchema,
		Session:  sessionSchema,
	} {
		schemas[name] = mustCompile(name, src)
	}
}

func mustCompile(name, src string) *jsonschema.Schema {
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader([]byte(src))); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// Error describes the first schema violation found in a payload.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validate checks data against the named schema. Every failure is an *Error.
func Validate(kind string, data []byte) error {
	schema, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("unknown payload kind %q", kind)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &Error{Message: "invalid JSON body"}
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return &Error{Message: err.Error()}
		}
		for len(ve.Causes) > 0 {
			ve = ve.Causes[0]
		}
		return &Error{Field: strings.TrimLeft(ve.InstanceLocation, "#/"), Message: ve.Message}
	}
	return nil
}
