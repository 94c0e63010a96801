// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import "fmt"

// ParamExtractor helps extract typed values from manifest parameter maps.
//
// Parameter maps cross a serialization boundary (they may have round-tripped
// through JSON), so numeric values can arrive as float64 and string slices
// as []any. The extractor handles these conversions and produces consistent
// error messages when parameters are missing or mistyped.
type ParamExtractor struct {
	params map[string]any
}

// NewParamExtractor creates a new parameter extractor.
func NewParamExtractor(params map[string]any) *ParamExtractor {
	return &ParamExtractor{params: params}
}

// GetString extracts a required string parameter.
func (e *ParamExtractor) GetString(key string) (string, error) {
	value, exists := e.params[key]
	if !exists {
		return "", fmt.Errorf("parameter %q not found", key)
	}

	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q is not a string (got %T)", key, value)
	}

	return str, nil
}

// GetBool extracts a required boolean parameter.
func (e *ParamExtractor) GetBool(key string) (bool, error) {
	value, exists := e.params[key]
	if !exists {
		return false, fmt.Errorf("parameter %q not found", key)
	}

	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q is not a bool (got %T)", key, value)
	}

	return b, nil
}

// GetInt64 extracts a required integer parameter, accepting int, int64, and
// float64 representations.
func (e *ParamExtractor) GetInt64(key string) (int64, error) {
	value, exists := e.params[key]
	if !exists {
		return 0, fmt.Errorf("parameter %q not found", key)
	}

	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("parameter %q is not numeric (got %T)", key, value)
	}
}

// GetStringSlice extracts an optional string slice parameter, accepting both
// []string and []any of strings. A missing key yields a nil slice.
func (e *ParamExtractor) GetStringSlice(key string) ([]string, error) {
	value, exists := e.params[key]
	if !exists {
		return nil, nil
	}

	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %q contains a non-string element (got %T)", key, elem)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("parameter %q is not a string slice (got %T)", key, value)
	}
}

// Has reports whether the key is present.
func (e *ParamExtractor) Has(key string) bool {
	_, exists := e.params[key]
	return exists
}
