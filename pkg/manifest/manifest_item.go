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
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sigstore/model-serialization/pkg/hashing/digests"
)

// ManifestItem represents an individual object of a model stored as an item
// in a manifest. It pairs a canonical name with its digest.
//
//nolint:revive
type ManifestItem interface {
	Name() string
	Digest() digests.Digest
}

// FileManifestItem records a file path together with the digest of the
// file's contents.
//
// The path is stored in canonical POSIX form, relative to the model root.
// An empty path is the root marker: it occurs only when the model being
// serialized is itself a single file.
type FileManifestItem struct {
	path   string
	digest digests.Digest
}

// NewFileManifestItem builds a manifest item for the file at the given
// path relative to the model root. The path is canonicalized to POSIX form;
// "." (the model root itself) is normalized to the empty root marker.
func NewFileManifestItem(relPath string, digest digests.Digest) *FileManifestItem {
	key := filepath.ToSlash(relPath)
	if key == "." {
		key = ""
	}
	return &FileManifestItem{
		path:   key,
		digest: digest,
	}
}

// Name returns the canonical identifier for the file (its POSIX path).
func (item *FileManifestItem) Name() string {
	return item.path
}

// Path returns the POSIX path of the file relative to the model root.
// It is empty when the item is the root marker.
func (item *FileManifestItem) Path() string {
	return item.path
}

// BaseName returns the final component of the item's path, or the empty
// string for the root marker.
func (item *FileManifestItem) BaseName() string {
	if item.path == "" {
		return ""
	}
	return path.Base(item.path)
}

// Digest returns the digest of the file.
func (item *FileManifestItem) Digest() digests.Digest {
	return item.digest
}

// ShardedFileManifestItem records a file shard together with its digest.
//
// The shard represents the byte range [start, end) of the file.
type ShardedFileManifestItem struct {
	path   string
	start  int64
	end    int64
	digest digests.Digest
}

// NewShardedFileManifestItem builds a manifest item pairing a file shard
// with its digest. The path is canonicalized to POSIX form.
func NewShardedFileManifestItem(relPath string, start, end int64, digest digests.Digest) *ShardedFileManifestItem {
	return &ShardedFileManifestItem{
		path:   filepath.ToSlash(relPath),
		start:  start,
		end:    end,
		digest: digest,
	}
}

// Name returns the canonical identifier for the shard: "path:start:end".
func (item *ShardedFileManifestItem) Name() string {
	return fmt.Sprintf("%s:%d:%d", item.path, item.start, item.end)
}

// Digest returns the digest of the file shard.
func (item *ShardedFileManifestItem) Digest() digests.Digest {
	return item.digest
}

// parseShardName parses a shard identifier of the form "path:start:end".
func parseShardName(name string) (path string, start, end int64, err error) {
	parts := strings.Split(name, ":")
	if len(parts) != 3 {
		err = fmt.Errorf("invalid resource name: expected 3 components separated by `:`, got %q", name)
		return
	}

	path = parts[0]

	start, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		err = fmt.Errorf("invalid shard start %q: %w", parts[1], err)
		return
	}

	end, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		err = fmt.Errorf("invalid shard end %q: %w", parts[2], err)
		return
	}

	return
}
