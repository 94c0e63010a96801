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
	"encoding/base64"
	"fmt"
	"sort"

	hashengines "github.com/sigstore/model-serialization/pkg/hashing/engines"
	"github.com/sigstore/model-serialization/pkg/manifest"
)

// ItemizedManifestBuilder produces a FileLevelManifest that lists every
// collected file individually. Keeping items listed one by one enables
// future incremental updates.
type ItemizedManifestBuilder struct{}

// NewItemizedManifestBuilder constructs an ItemizedManifestBuilder.
func NewItemizedManifestBuilder() *ItemizedManifestBuilder {
	return &ItemizedManifestBuilder{}
}

// Build wraps every collected item into a FileLevelManifest. The stored
// form keeps no particular order; manifest equality is order-independent.
func (b *ItemizedManifestBuilder) Build(
	modelName string,
	items []*manifest.FileManifestItem,
	serializationType manifest.SerializationType,
) (manifest.Manifest, error) {
	manifestItems := make([]manifest.ManifestItem, 0, len(items))
	for _, item := range items {
		manifestItems = append(manifestItems, item)
	}
	return manifest.NewFileLevelManifest(modelName, manifestItems, serializationType), nil
}

// DigestManifestBuilder merges all collected per-file digests into a single
// DigestManifest covering the entire model.
//
// The merge commits to the complete set of (filename, content digest)
// pairs: adding, removing, renaming, or changing any file changes the
// aggregate digest, while the result is invariant to traversal and task
// completion order.
type DigestManifestBuilder struct {
	mergeHasher hashengines.StreamingHashEngine
}

// NewDigestManifestBuilder constructs a DigestManifestBuilder around the
// streaming hash engine used to merge the individual file digests.
func NewDigestManifestBuilder(mergeHasher hashengines.StreamingHashEngine) (*DigestManifestBuilder, error) {
	if mergeHasher == nil {
		return nil, fmt.Errorf("mergeHasher must not be nil")
	}
	return &DigestManifestBuilder{mergeHasher: mergeHasher}, nil
}

// Build merges the items into a single digest.
//
// If the model is a single file (exactly one item carrying the empty root
// marker), that file's digest is returned verbatim with no framing applied.
// Otherwise the items are sorted by path and fed to the merge hasher as
// header/digest pairs; see BuildEntryHeader for the framing. This byte
// stream must be preserved exactly for compatibility with manifests
// produced by peer implementations.
func (b *DigestManifestBuilder) Build(
	_ string,
	items []*manifest.FileManifestItem,
	_ manifest.SerializationType,
) (manifest.Manifest, error) {
	if len(items) == 1 && items[0].BaseName() == "" {
		return manifest.NewDigestManifest(items[0].Digest()), nil
	}

	b.mergeHasher.Reset(nil)

	sorted := make([]*manifest.FileManifestItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path() < sorted[j].Path()
	})

	for _, item := range sorted {
		b.mergeHasher.Update(BuildEntryHeader(item.BaseName()))
		b.mergeHasher.Update(item.Digest().Value())
	}

	digest, err := b.mergeHasher.Compute()
	if err != nil {
		return nil, fmt.Errorf("compute merged digest: %w", err)
	}

	return manifest.NewDigestManifest(digest), nil
}

// BuildEntryHeader encodes an entry name for the digest merge stream.
//
// The name is base64-encoded over its UTF-8 bytes and terminated with a
// single "." separator, so the header stays unambiguous even if the name
// itself contains a dot, and the digest bytes that follow cannot be
// confused with header bytes.
func BuildEntryHeader(entryName string) []byte {
	encoded := base64.StdEncoding.EncodeToString([]byte(entryName))
	return append([]byte(encoded), '.')
}
