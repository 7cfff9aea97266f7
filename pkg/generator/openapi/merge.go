package openapi

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/copystructure"

	"github.com/blimu-dev/specgen/pkg/generator/jsonschema"
	"github.com/blimu-dev/specgen/pkg/model"
)

// mergeOperations folds every operation bound to one path and method into one.
func mergeOperations(ops []pending) (Operation, error) {
	bodies := 0
	for _, op := range ops {
		if op.hasBody {
			bodies++
		}
	}
	if bodies > 1 {
		names := make([]string, 0, len(ops))
		for _, op := range ops {
			names = append(names, op.name)
		}
		return nil, fmt.Errorf("%w: operations %v", model.ErrMultipleRequestBodies, names)
	}

	copied, err := copystructure.Copy(map[string]any(ops[0].operation))
	if err != nil {
		return nil, fmt.Errorf("copy operation %s: %w", ops[0].name, err)
	}
	merged := copied.(map[string]any)
	for _, op := range ops[1:] {
		out, err := deepMerge(merged, map[string]any(op.operation), "")
		if err != nil {
			return nil, fmt.Errorf("merge operation %s: %w", op.name, err)
		}
		merged = out.(map[string]any)
	}
	return Operation(merged), nil
}

// deepMerge merges b into a. Objects merge key by key, arrays are unioned
// without duplicates and schemas are leaves. Equal leaves merge; different
// ones fail with model.ErrMergeConflict naming the JSON path.
func deepMerge(a, b any, at string) (any, error) {
	switch av := a.(type) {
	case jsonschema.Schema:
		if reflect.DeepEqual(a, b) {
			return a, nil
		}
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			break
		}
		out := make(map[string]any, len(av)+len(bv))
		for k, v := range av {
			out[k] = v
		}
		for k, v := range bv {
			existing, ok := out[k]
			if !ok {
				out[k] = v
				continue
			}
			m, err := deepMerge(existing, v, at+"/"+k)
			if err != nil {
				return nil, err
			}
			out[k] = m
		}
		return out, nil
	case []any:
		bv, ok := b.([]any)
		if !ok {
			break
		}
		out := append([]any(nil), av...)
		for _, item := range bv {
			if !containsDeep(out, item) {
				out = append(out, item)
			}
		}
		return out, nil
	default:
		if reflect.DeepEqual(a, b) {
			return a, nil
		}
	}
	if at == "" {
		at = "/"
	}
	return nil, fmt.Errorf("%w at %s: %v != %v", model.ErrMergeConflict, at, a, b)
}

func containsDeep(list []any, item any) bool {
	for _, v := range list {
		if reflect.DeepEqual(v, item) {
			return true
		}
	}
	return false
}
