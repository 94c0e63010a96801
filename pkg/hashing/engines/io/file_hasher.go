//
// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package io provides hash engines that read their input from files. They
// implement the per-file hashing capability consumed by the serializers:
// each hashing task instantiates its own hasher through a factory so that
// no hash state is shared between concurrent tasks.
package io

import (
	hashengines "github.com/sigstore/model-serialization/pkg/hashing/engines"
)

// FileHasher is a marker interface for hash engines whose input is a file
// rather than arbitrary in-memory content. APIs that specifically expect
// file-based hashing take this type instead of the generic HashEngine.
type FileHasher interface {
	hashengines.HashEngine
}

// FileHasherFactory builds a FileHasher for the given path. Serializers call
// the factory once per hashing task.
type FileHasherFactory func(path string) (FileHasher, error)

// ShardedFileHasherFactory builds a FileHasher for the byte range
// [start, end) of the file at path.
type ShardedFileHasherFactory func(path string, start, end int64) (FileHasher, error)
