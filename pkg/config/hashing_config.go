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

// Package config provides the high-level configuration API for hashing ML
// models. A HashingConfig is customized via method chaining and then wires
// together hash engines, file hashers, a serializer, and a manifest builder.
package config

import (
	"context"
	"fmt"
	"path/filepath"

	hashengines "github.com/sigstore/model-serialization/pkg/hashing/engines"
	hashio "github.com/sigstore/model-serialization/pkg/hashing/engines/io"
	// Register the built-in hash engines (sha256, blake2b).
	_ "github.com/sigstore/model-serialization/pkg/hashing/engines/memory"
	"github.com/sigstore/model-serialization/pkg/logging"
	"github.com/sigstore/model-serialization/pkg/manifest"
	"github.com/sigstore/model-serialization/pkg/serialization"
	"github.com/sigstore/model-serialization/pkg/tracing"
)

// Serialization methods supported by HashingConfig.
const (
	MethodFiles  = "files"
	MethodShards = "shards"
)

// Manifest kinds supported by HashingConfig.
const (
	ManifestItemized = "itemized"
	ManifestDigest   = "digest"
)

// gitRelatedPaths defines common git-related paths to ignore during hashing.
var gitRelatedPaths = []string{
	".git",
	".gitignore",
	".gitattributes",
	".github",
	".gitmodules",
}

// HashingConfig holds configuration for hashing models.
//
// It determines which files to hash, how to hash them, which files to
// ignore, and which manifest variant to produce.
type HashingConfig struct {
	// Serialization method (MethodFiles or MethodShards)
	serializationMethod string

	// Hash algorithm (e.g., "sha256", "blake2b")
	hashAlgorithm string

	// Manifest kind (ManifestItemized or ManifestDigest)
	manifestKind string

	// Whether to allow symlinks
	allowSymlinks bool

	// Paths to ignore during hashing
	ignoredPaths []string

	// Whether to ignore git-related paths
	ignoreGitPaths bool

	// Shard size (only for shard serialization)
	shardSize int64

	// Chunk size for file reading (0 = read all at once)
	chunkSize int

	// Maximum number of parallel hashing tasks (<=0 = number of CPUs)
	maxWorkers int

	// Logger used for progress and debug output
	logger logging.Logger
}

// NewHashingConfig creates a new hashing configuration with defaults.
//
// Defaults: file serialization, sha256 hash, itemized manifest, symlinks
// disabled, no ignored paths, 8KB chunk size.
//
// Returns a HashingConfig ready for customization via method chaining.
func NewHashingConfig() *HashingConfig {
	return &HashingConfig{
		serializationMethod: MethodFiles,
		hashAlgorithm:       "sha256",
		manifestKind:        ManifestItemized,
		allowSymlinks:       false,
		ignoredPaths:        []string{},
		ignoreGitPaths:      false,
		shardSize:           0,
		chunkSize:           8192,
		maxWorkers:          0,
		logger:              logging.Default(),
	}
}

// UseFileSerialization configures the hasher to use file-based serialization.
//
// In this mode, each file is hashed entirely as a single unit.
//
// Parameters:
//   - hashAlgorithm: Hash algorithm name (e.g., "sha256", "blake2b")
//   - allowSymlinks: Whether to follow and hash symbolic links
//   - ignorePaths: Paths to ignore during hashing
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) UseFileSerialization(hashAlgorithm string, allowSymlinks bool, ignorePaths []string) *HashingConfig {
	c.serializationMethod = MethodFiles
	c.hashAlgorithm = hashAlgorithm
	c.allowSymlinks = allowSymlinks
	if ignorePaths != nil {
		c.ignoredPaths = append(c.ignoredPaths, ignorePaths...)
	}
	return c
}

// UseShardSerialization configures the hasher to use shard-based serialization.
//
// In this mode, large files are split into fixed-size shards, and each shard
// is hashed separately.
//
// Parameters:
//   - hashAlgorithm: Hash algorithm name (e.g., "sha256", "blake2b")
//   - shardSize: Size of each shard in bytes
//   - allowSymlinks: Whether to follow and hash symbolic links
//   - ignorePaths: Paths to ignore during hashing
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) UseShardSerialization(hashAlgorithm string, shardSize int64, allowSymlinks bool, ignorePaths []string) *HashingConfig {
	c.serializationMethod = MethodShards
	c.hashAlgorithm = hashAlgorithm
	c.shardSize = shardSize
	c.allowSymlinks = allowSymlinks
	if ignorePaths != nil {
		c.ignoredPaths = append(c.ignoredPaths, ignorePaths...)
	}
	return c
}

// UseItemizedManifest configures hashing to produce a manifest that lists
// every file (or shard) individually.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) UseItemizedManifest() *HashingConfig {
	c.manifestKind = ManifestItemized
	return c
}

// UseDigestManifest configures hashing to merge all per-file digests into a
// single digest covering the whole model. Only supported with file-based
// serialization.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) UseDigestManifest() *HashingConfig {
	c.manifestKind = ManifestDigest
	return c
}

// SetIgnoredPaths sets the paths to ignore during hashing.
//
// If ignoreGitPaths is true, common git-related paths are also ignored and
// stored in the manifest so later runs can automatically apply them.
//
// Parameters:
//   - paths: List of paths to ignore (relative to model root)
//   - ignoreGitPaths: Whether to automatically ignore .git and related paths
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetIgnoredPaths(paths []string, ignoreGitPaths bool) *HashingConfig {
	c.ignoredPaths = paths
	c.ignoreGitPaths = ignoreGitPaths

	if ignoreGitPaths {
		c.ignoredPaths = append(c.ignoredPaths, gitRelatedPaths...)
	}

	return c
}

// AddIgnoredPaths adds additional paths to the ignore list.
//
// The paths are interpreted relative to modelPath.
//
// Parameters:
//   - modelPath: Base path for resolving relative paths
//   - paths: Paths to add to the ignore list (can be absolute or relative)
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) AddIgnoredPaths(modelPath string, paths []string) *HashingConfig {
	for _, p := range paths {
		var absPath string
		if filepath.IsAbs(p) {
			absPath = p
		} else {
			absPath = filepath.Join(modelPath, p)
		}
		c.ignoredPaths = append(c.ignoredPaths, absPath)
	}
	return c
}

// SetAllowSymlinks sets whether to follow symbolic links.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetAllowSymlinks(allow bool) *HashingConfig {
	c.allowSymlinks = allow
	return c
}

// SetChunkSize sets the chunk size for file reading.
//
// A size of 0 means files are read all at once. Non-zero values enable
// chunked reading for memory efficiency with large files.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetChunkSize(size int) *HashingConfig {
	c.chunkSize = size
	return c
}

// SetMaxWorkers sets the maximum number of parallel hashing tasks.
// Values <= 0 use the number of CPUs.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetMaxWorkers(n int) *HashingConfig {
	c.maxWorkers = n
	return c
}

// SetLogger sets the logger used for progress and debug output.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetLogger(l logging.Logger) *HashingConfig {
	c.logger = logging.EnsureLogger(l)
	return c
}

// Hash hashes the model at modelPath and returns a manifest.
//
// The configured serializer walks the model (a file or a directory tree),
// validates every visited path, hashes eligible files in parallel, and hands
// the digests to the configured manifest builder. Hashing is all-or-nothing:
// on any error no manifest is returned.
func (c *HashingConfig) Hash(ctx context.Context, modelPath string) (manifest.Manifest, error) {
	absModelPath, err := filepath.Abs(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for model: %w", err)
	}

	serializer, err := c.createSerializer()
	if err != nil {
		return nil, err
	}

	log := logging.EnsureLogger(c.logger)
	log.Debug("hashing model %s (method=%s, algorithm=%s, manifest=%s)",
		absModelPath, c.serializationMethod, c.hashAlgorithm, c.manifestKind)

	ignorePaths := resolveIgnorePaths(absModelPath, c.ignoredPaths)

	var m manifest.Manifest
	err = tracing.Run(ctx, "model.hash", map[string]interface{}{
		"model.path":           absModelPath,
		"serialization.method": c.serializationMethod,
		"hash.algorithm":       c.hashAlgorithm,
		"manifest.kind":        c.manifestKind,
	}, func(context.Context) error {
		var serErr error
		m, serErr = serializer.Serialize(absModelPath, ignorePaths)
		return serErr
	})
	if err != nil {
		log.Error("hashing %s failed: %v", absModelPath, err)
		return nil, err
	}

	if fm, ok := m.(*manifest.FileLevelManifest); ok {
		log.Info("hashed model %s (%d items)", fm.ModelName(), fm.Len())
	} else {
		log.Info("hashed model %s into a single digest", filepath.Base(absModelPath))
	}

	return m, nil
}

// resolveIgnorePaths resolves relative ignore entries against the model
// root. Serializers expect absolute ignore paths.
func resolveIgnorePaths(modelPath string, paths []string) []string {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			resolved = append(resolved, p)
			continue
		}
		resolved = append(resolved, filepath.Join(modelPath, p))
	}
	return resolved
}

// createSerializer wires engines, file hashers, and a manifest builder into
// the serializer described by the configuration.
func (c *HashingConfig) createSerializer() (serialization.Serializer, error) {
	// Fail early on unknown algorithms instead of failing per file.
	if !hashengines.IsSupported(c.hashAlgorithm) {
		return nil, fmt.Errorf("unsupported hash algorithm %q (supported: %v)",
			c.hashAlgorithm, hashengines.SupportedAlgorithms())
	}

	switch c.serializationMethod {
	case MethodFiles:
		builder, err := c.createManifestBuilder()
		if err != nil {
			return nil, err
		}
		factory := func(path string) (hashio.FileHasher, error) {
			contentHasher, err := hashengines.Create(c.hashAlgorithm)
			if err != nil {
				return nil, err
			}
			return hashio.NewSimpleFileHasher(path, contentHasher, c.chunkSize, "")
		}
		return serialization.NewFileSerializer(factory, builder, c.maxWorkers, c.allowSymlinks, nil)

	case MethodShards:
		if c.manifestKind == ManifestDigest {
			return nil, fmt.Errorf("digest manifests require file serialization, not %q", MethodShards)
		}
		if c.shardSize <= 0 {
			return nil, fmt.Errorf("shard serialization requires a positive shard size, got %d", c.shardSize)
		}
		factory := func(path string, start, end int64) (hashio.FileHasher, error) {
			contentHasher, err := hashengines.Create(c.hashAlgorithm)
			if err != nil {
				return nil, err
			}
			return hashio.NewShardedFileHasher(path, contentHasher, start, end, c.chunkSize, c.shardSize, "")
		}
		return serialization.NewShardedFileSerializer(factory, c.maxWorkers, c.allowSymlinks, nil)

	default:
		return nil, fmt.Errorf("unknown serialization method: %s", c.serializationMethod)
	}
}

// createManifestBuilder selects the ManifestBuilder strategy for the
// configured manifest kind.
func (c *HashingConfig) createManifestBuilder() (serialization.ManifestBuilder, error) {
	switch c.manifestKind {
	case ManifestItemized:
		return serialization.NewItemizedManifestBuilder(), nil
	case ManifestDigest:
		mergeHasher, err := hashengines.Create(c.hashAlgorithm)
		if err != nil {
			return nil, err
		}
		return serialization.NewDigestManifestBuilder(mergeHasher)
	default:
		return nil, fmt.Errorf("unknown manifest kind: %s", c.manifestKind)
	}
}
