// Package openapi loads and validates OpenAPI documents, including the 3.1
// documents written by the openapi target.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/specgen/pkg/generator/jsonschema"
)

// LoadDocument loads an OpenAPI 3.0 document from a local file path or an HTTP(S) URL
func LoadDocument(input string) (*openapi3.T, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	return LoadDocumentWithLoader(loader, input)
}

// LoadDocumentWithLoader loads an OpenAPI 3.0 document using a custom loader
func LoadDocumentWithLoader(loader *openapi3.Loader, input string) (*openapi3.T, error) {
	if u, ok := httpURL(input); ok {
		return loader.LoadFromURI(u)
	}
	return loader.LoadFromFile(input)
}

// ValidateDocument validates an OpenAPI document file or URL.
//
// 3.0 documents are validated by kin-openapi. kin-openapi applies 3.0 schema
// rules, which reject 3.1 constructs such as {"type": "null"}, so a 3.1
// document is checked structurally with kin-openapi types and its schemas are
// compiled as JSON Schema draft 2020-12.
func ValidateDocument(input string) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	raw, err := decode(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	version, _ := raw["openapi"].(string)
	if strings.HasPrefix(version, "3.1") {
		return validate31(context.Background(), raw)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	doc, err := LoadDocumentWithLoader(loader, input)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

type document31 struct {
	OpenAPI    string                    `json:"openapi"`
	Info       *openapi3.Info            `json:"info"`
	Servers    openapi3.Servers          `json:"servers"`
	Tags       openapi3.Tags             `json:"tags"`
	Paths      map[string]map[string]any `json:"paths"`
	Components components31              `json:"components"`
}

type components31 struct {
	Schemas         map[string]map[string]any           `json:"schemas"`
	SecuritySchemes map[string]*openapi3.SecurityScheme `json:"securitySchemes"`
}

var methods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

func validate31(ctx context.Context, raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var doc document31
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	if doc.Info == nil {
		return errors.New("invalid info: must be an object")
	}
	if err := doc.Info.Validate(ctx); err != nil {
		return fmt.Errorf("invalid info: %w", err)
	}
	if err := doc.Servers.Validate(ctx); err != nil {
		return fmt.Errorf("invalid servers: %w", err)
	}
	if err := doc.Tags.Validate(ctx); err != nil {
		return fmt.Errorf("invalid tags: %w", err)
	}
	for _, name := range sortedKeys(doc.Components.SecuritySchemes) {
		s := doc.Components.SecuritySchemes[name]
		if s == nil {
			return fmt.Errorf("invalid components: security scheme %q is empty", name)
		}
		if err := s.Validate(ctx); err != nil {
			return fmt.Errorf("invalid components: security scheme %q: %w", name, err)
		}
	}

	defs := jsonschema.Schema{}
	for name, s := range doc.Components.Schemas {
		defs[name] = rewriteRefs(s)
	}
	for _, name := range sortedKeys(doc.Components.Schemas) {
		if err := checkSchema(defs, jsonschema.Schema{"$ref": "#/$defs/" + pointerEscape(name)}); err != nil {
			return fmt.Errorf("invalid components: schema %q: %w", name, err)
		}
	}

	for _, p := range sortedKeys(doc.Paths) {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid paths: path %q must begin with /", p)
		}
		item := doc.Paths[p]
		for _, method := range sortedKeys(item) {
			if !methods[method] {
				continue
			}
			where := strings.ToUpper(method) + " " + p
			op, ok := item[method].(map[string]any)
			if !ok {
				return fmt.Errorf("invalid paths: %s must be an object", where)
			}
			if _, ok := op["responses"].(map[string]any); !ok {
				return fmt.Errorf("invalid paths: %s has no responses", where)
			}
			for _, s := range operationSchemas(op) {
				if err := checkSchema(defs, rewriteRefs(s.schema)); err != nil {
					return fmt.Errorf("invalid paths: %s %s: %w", where, s.at, err)
				}
			}
		}
	}
	return nil
}

type located struct {
	at     string
	schema map[string]any
}

// operationSchemas lists the inline schemas of parameters, request body,
// response headers and response content.
func operationSchemas(op map[string]any) []located {
	var out []located
	if params, ok := op["parameters"].([]any); ok {
		for i, p := range params {
			if pm, ok := p.(map[string]any); ok {
				if s, ok := pm["schema"].(map[string]any); ok {
					out = append(out, located{fmt.Sprintf("parameter %v", nameOr(pm, i)), s})
				}
			}
		}
	}
	if body, ok := op["requestBody"].(map[string]any); ok {
		out = append(out, contentSchemas("requestBody", body)...)
	}
	if responses, ok := op["responses"].(map[string]any); ok {
		for _, status := range sortedKeys(responses) {
			resp, ok := responses[status].(map[string]any)
			if !ok {
				continue
			}
			out = append(out, contentSchemas("response "+status, resp)...)
			if headers, ok := resp["headers"].(map[string]any); ok {
				for _, h := range sortedKeys(headers) {
					if hm, ok := headers[h].(map[string]any); ok {
						if s, ok := hm["schema"].(map[string]any); ok {
							out = append(out, located{"response " + status + " header " + h, s})
						}
					}
				}
			}
		}
	}
	return out
}

func contentSchemas(at string, holder map[string]any) []located {
	content, ok := holder["content"].(map[string]any)
	if !ok {
		return nil
	}
	var out []located
	for _, mt := range sortedKeys(content) {
		if m, ok := content[mt].(map[string]any); ok {
			if s, ok := m["schema"].(map[string]any); ok {
				out = append(out, located{at + " " + mt, s})
			}
		}
	}
	return out
}

func nameOr(m map[string]any, i int) any {
	if n, ok := m["name"].(string); ok {
		return n
	}
	return i
}

func checkSchema(defs jsonschema.Schema, s map[string]any) error {
	doc := jsonschema.Schema{}
	for k, v := range s {
		doc[k] = v
	}
	if len(defs) > 0 {
		doc["$defs"] = defs
	}
	return jsonschema.Check(doc)
}

// rewriteRefs points component references at $defs so a schema can be
// compiled on its own.
func rewriteRefs(v map[string]any) map[string]any {
	return rewrite(v).(map[string]any)
}

func rewrite(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			if ref, ok := e.(string); ok && k == "$ref" && strings.HasPrefix(ref, jsonschema.ComponentsPrefix) {
				out[k] = jsonschema.DefsPrefix + strings.TrimPrefix(ref, jsonschema.ComponentsPrefix)
				continue
			}
			out[k] = rewrite(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = rewrite(e)
		}
		return out
	}
	return v
}

func pointerEscape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func httpURL(input string) (*url.URL, bool) {
	u, err := url.Parse(input)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, false
	}
	return u, true
}

func readInput(input string) ([]byte, error) {
	if input == "" {
		return nil, errors.New("no document given")
	}
	if u, ok := httpURL(input); ok {
		return openapi3.ReadFromHTTP(http.DefaultClient)(openapi3.NewLoader(), u)
	}
	return os.ReadFile(input)
}

// decode parses a JSON or YAML document into JSON-compatible values.
func decode(data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	m, ok := normalize(v).(map[string]any)
	if !ok {
		return nil, errors.New("document is not an object")
	}
	return m, nil
}

// normalize turns the map[any]any values yaml.v3 produces for non-string keys
// such as unquoted status codes into map[string]any.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	}
	return v
}
