package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsv "github.com/santhosh-tekuri/jsonschema/v5"
)

const checkURL = "mem://specgen/schema.json"

// Compile compiles doc with a draft 2020-12 compiler.
func Compile(doc Schema) (*jsv.Schema, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsv.NewCompiler()
	compiler.Draft = jsv.Draft2020
	if err := compiler.AddResource(checkURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(checkURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Check reports whether doc is a well-formed schema.
func Check(doc Schema) error {
	_, err := Compile(doc)
	return err
}

// Validate checks a JSON instance against doc. instance is any value produced
// by encoding/json decoding, or a Go value that marshals to one.
func Validate(doc Schema, instance any) error {
	compiled, err := Compile(doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("decode instance: %w", err)
	}
	return compiled.Validate(decoded)
}
