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

package serialization

import (
	"errors"
	"fmt"
)

// ErrorType categorizes serialization failures.
type ErrorType int

const (
	// ErrTypeUnknown indicates an unclassified error.
	ErrTypeUnknown ErrorType = iota

	// ErrTypeInvalidPath indicates a path that cannot be serialized: a
	// symlink when symlinks are not allowed, or something that is neither a
	// regular file nor a directory (missing path, special file, or a
	// permission problem preventing classification).
	ErrTypeInvalidPath

	// ErrTypeHashComputation indicates a failure while hashing a file's
	// contents, e.g. an I/O error mid-read.
	ErrTypeHashComputation
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeInvalidPath:
		return "InvalidPathKind"
	case ErrTypeHashComputation:
		return "HashComputationFailure"
	default:
		return "UnknownError"
	}
}

// SerializationError is a structured error for serialization failures.
//
// Both error kinds are fatal to the enclosing Serialize call: a model is
// either fully and validly serialized or the operation fails outright, never
// yielding a partial manifest.
//
//nolint:revive
type SerializationError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType

	// Path is the offending file path (optional).
	Path string

	// Message is a human-readable description of what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("%s: %s (path: %s): %v", e.Type, e.Message, e.Path, e.Cause)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Type, e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for error chain unwrapping.
func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a serialization error for the given path.
func NewSerializationError(errType ErrorType, path, message string, cause error) *SerializationError {
	return &SerializationError{
		Type:    errType,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err is a SerializationError of the given type.
func IsType(err error, errType ErrorType) bool {
	var serErr *SerializationError
	if errors.As(err, &serErr) {
		return serErr.Type == errType
	}
	return false
}
