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
	"os"
	"path/filepath"
	"strings"
)

// CheckFileOrDirectory checks that the given path is either a regular file
// or a directory. There is no support for sockets, pipes, or any other
// operating system concept abstracted as a file: such objects can reference
// content outside the model or have non-deterministic semantics, so they
// must never be hashed into a manifest.
//
// If allowSymlinks is false (the default), symlinks are rejected even if
// they ultimately point to a regular file or directory. Broken symlinks,
// missing paths, and permission errors are rejected in all cases.
//
// All failures are *SerializationError values of type ErrTypeInvalidPath.
func CheckFileOrDirectory(path string, allowSymlinks bool) error {
	// Lstat so symlinks are detected without following them.
	info, err := os.Lstat(path)
	if err != nil {
		return NewSerializationError(ErrTypeInvalidPath, path,
			"cannot use path as file or directory", err)
	}

	mode := info.Mode()
	isSymlink := mode&os.ModeSymlink != 0

	if isSymlink && !allowSymlinks {
		return NewSerializationError(ErrTypeInvalidPath, path,
			"path is a symlink; this behavior can be changed with allowSymlinks", nil)
	}

	// Symlinks are allowed: follow them to ensure the target is usable.
	if isSymlink {
		info, err = os.Stat(path)
		if err != nil {
			return NewSerializationError(ErrTypeInvalidPath, path,
				"path might be a broken symlink, missing, or permission denied", err)
		}
		mode = info.Mode()
	}

	if !mode.IsRegular() && !mode.IsDir() {
		return NewSerializationError(ErrTypeInvalidPath, path,
			"path might be a special file, missing, or there might be a permission issue", nil)
	}

	return nil
}

// ShouldIgnore determines if the provided path should be ignored during
// serialization.
//
// A path is ignored if it equals, or is a descendant of, any entry in
// ignorePaths. The check is done by path containment, never by string
// prefix: "data-old" is not a descendant of "data".
func ShouldIgnore(path string, ignorePaths []string) bool {
	if len(ignorePaths) == 0 {
		return false
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		// If the path cannot be resolved, err on the side of not ignoring it.
		return false
	}

	for _, base := range ignorePaths {
		if base == "" {
			continue
		}

		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}

		rel, err := filepath.Rel(absBase, absPath)
		if err != nil {
			continue
		}

		if rel == "." {
			return true
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}

	return false
}
