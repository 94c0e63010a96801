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

import (
	"fmt"

	"github.com/sigstore/model-serialization/pkg/hashing/digests"
)

// SerializationType describes the serialization process that generated a
// file-level manifest.
//
// It records sufficient parameters to deterministically recreate the
// manifest from a model. Parameters returns a map that can be serialized
// (e.g. into JSON) and later fed to SerializationTypeFromArgs to reconstruct
// the same SerializationType.
type SerializationType interface {
	// Method returns the serialization method identifier ("files" or "shards").
	Method() string

	// Parameters returns the serialization method arguments as a map.
	// Callers should treat the result as read-only.
	Parameters() map[string]any

	// NewItem builds a ManifestItem of the appropriate type, parsing the
	// given name according to the serialization method.
	NewItem(name string, digest digests.Digest) (ManifestItem, error)
}

const (
	fileMethod  = "files"
	shardMethod = "shards"
)

// SerializationTypeFromArgs reconstructs a SerializationType from a map.
//
// This is the inverse of SerializationType.Parameters(). The args map must
// contain a "method" field indicating the serialization type.
func SerializationTypeFromArgs(args map[string]any) (SerializationType, error) {
	extractor := NewParamExtractor(args)

	method, err := extractor.GetString("method")
	if err != nil {
		return nil, fmt.Errorf("invalid serialization args: %w", err)
	}

	switch method {
	case fileMethod:
		return fileSerializationFromArgs(extractor)
	case shardMethod:
		return shardSerializationFromArgs(extractor)
	default:
		return nil, fmt.Errorf("unknown serialization type %q", method)
	}
}

// FileSerialization records the parameters of whole-file hashing: each file
// of the model is hashed as a single unit.
type FileSerialization struct {
	hashType      string
	allowSymlinks bool
	ignorePaths   []string
}

// NewFileSerialization constructs a FileSerialization instance.
//
// hashType names the hash algorithm, allowSymlinks records whether symbolic
// links were followed, and ignorePaths lists the paths excluded from
// hashing. The ignorePaths slice is copied.
func NewFileSerialization(hashType string, allowSymlinks bool, ignorePaths []string) *FileSerialization {
	pathsCopy := make([]string, len(ignorePaths))
	copy(pathsCopy, ignorePaths)

	return &FileSerialization{
		hashType:      hashType,
		allowSymlinks: allowSymlinks,
		ignorePaths:   pathsCopy,
	}
}

// Method returns "files".
func (s *FileSerialization) Method() string {
	return fileMethod
}

// Parameters returns the serialization method arguments as a map containing
// method, hash_type, allow_symlinks, and optionally ignore_paths.
func (s *FileSerialization) Parameters() map[string]any {
	params := map[string]any{
		"method":         s.Method(),
		"hash_type":      s.hashType,
		"allow_symlinks": s.allowSymlinks,
	}
	if len(s.ignorePaths) > 0 {
		pathsCopy := make([]string, len(s.ignorePaths))
		copy(pathsCopy, s.ignorePaths)
		params["ignore_paths"] = pathsCopy
	}
	return params
}

// NewItem creates a FileManifestItem, treating the name as a POSIX path.
func (s *FileSerialization) NewItem(name string, digest digests.Digest) (ManifestItem, error) {
	return NewFileManifestItem(name, digest), nil
}

func fileSerializationFromArgs(extractor *ParamExtractor) (*FileSerialization, error) {
	hashType, err := extractor.GetString("hash_type")
	if err != nil {
		return nil, fmt.Errorf("invalid file serialization args: %w", err)
	}

	allowSymlinks, err := extractor.GetBool("allow_symlinks")
	if err != nil {
		return nil, fmt.Errorf("invalid file serialization args: %w", err)
	}

	ignorePaths, err := extractor.GetStringSlice("ignore_paths")
	if err != nil {
		return nil, fmt.Errorf("invalid file serialization args: %w", err)
	}

	return NewFileSerialization(hashType, allowSymlinks, ignorePaths), nil
}

// ShardSerialization records the parameters of shard-based hashing: files
// are split into fixed-size shards and each shard is hashed independently.
type ShardSerialization struct {
	hashType      string
	shardSize     int64
	allowSymlinks bool
	ignorePaths   []string
}

// NewShardSerialization constructs a ShardSerialization instance.
//
// Arguments mirror NewFileSerialization, with shardSize setting the size of
// each shard in bytes. The ignorePaths slice is copied.
func NewShardSerialization(hashType string, shardSize int64, allowSymlinks bool, ignorePaths []string) *ShardSerialization {
	pathsCopy := make([]string, len(ignorePaths))
	copy(pathsCopy, ignorePaths)

	return &ShardSerialization{
		hashType:      hashType,
		shardSize:     shardSize,
		allowSymlinks: allowSymlinks,
		ignorePaths:   pathsCopy,
	}
}

// Method returns "shards".
func (s *ShardSerialization) Method() string {
	return shardMethod
}

// Parameters returns the serialization method arguments as a map containing
// method, hash_type, shard_size, allow_symlinks, and optionally ignore_paths.
func (s *ShardSerialization) Parameters() map[string]any {
	params := map[string]any{
		"method":         s.Method(),
		"hash_type":      s.hashType,
		"shard_size":     s.shardSize,
		"allow_symlinks": s.allowSymlinks,
	}
	if len(s.ignorePaths) > 0 {
		pathsCopy := make([]string, len(s.ignorePaths))
		copy(pathsCopy, s.ignorePaths)
		params["ignore_paths"] = pathsCopy
	}
	return params
}

// NewItem creates a ShardedFileManifestItem from a "path:start:end" name.
func (s *ShardSerialization) NewItem(name string, digest digests.Digest) (ManifestItem, error) {
	path, start, end, err := parseShardName(name)
	if err != nil {
		return nil, err
	}
	return NewShardedFileManifestItem(path, start, end, digest), nil
}

func shardSerializationFromArgs(extractor *ParamExtractor) (*ShardSerialization, error) {
	hashType, err := extractor.GetString("hash_type")
	if err != nil {
		return nil, fmt.Errorf("invalid shard serialization args: %w", err)
	}

	shardSize, err := extractor.GetInt64("shard_size")
	if err != nil {
		return nil, fmt.Errorf("invalid shard serialization args: %w", err)
	}

	allowSymlinks, err := extractor.GetBool("allow_symlinks")
	if err != nil {
		return nil, fmt.Errorf("invalid shard serialization args: %w", err)
	}

	ignorePaths, err := extractor.GetStringSlice("ignore_paths")
	if err != nil {
		return nil, fmt.Errorf("invalid shard serialization args: %w", err)
	}

	return NewShardSerialization(hashType, shardSize, allowSymlinks, ignorePaths), nil
}
