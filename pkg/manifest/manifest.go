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

// Package manifest provides the types that represent a serialized model:
// manifest items pairing resource identifiers with digests, and the two
// manifest variants a serialization can produce.
package manifest

import (
	"sort"

	"github.com/sigstore/model-serialization/pkg/hashing/digests"
)

// Manifest is the result of serializing a model. It is a closed sum over
// two variants:
//
//   - FileLevelManifest: one digest per file (or file shard) of the model
//   - DigestManifest: a single digest covering the whole model
//
// Downstream consumers type-switch on the variant instead of relying on
// dynamic casts:
//
//	switch m := m.(type) {
//	case *manifest.FileLevelManifest:
//	    ...
//	case manifest.DigestManifest:
//	    ...
//	}
type Manifest interface {
	isManifest()
}

// ResourceDescriptor describes one resource of a manifest: an identifier and
// its digest.
//
// This type is similar to in-toto's ResourceDescriptor but requires all
// fields to be present. It can be mapped to the in-toto format when needed
// for interoperability.
//
// See github.com/in-toto/attestation/blob/main/spec/v1/resource_descriptor.md
// for the in-toto specification.
type ResourceDescriptor struct {
	// Identifier uniquely identifies this object within the manifest.
	// Corresponds to name, uri, or content in the in-toto specification.
	Identifier string

	// Digest is the cryptographic hash of the resource.
	Digest digests.Digest
}

// FileLevelManifest records an individual digest for every file of a model.
//
// Keeping per-file granularity enables future incremental re-serialization:
// only files whose digests changed need to be rehashed.
type FileLevelManifest struct {
	name              string
	items             map[string]digests.Digest
	serializationType SerializationType
}

func (*FileLevelManifest) isManifest() {}

// NewFileLevelManifest builds a manifest from a collection of already hashed
// objects.
//
// modelName is an informative name for the model and does not affect
// equality. The items are stored keyed by their canonical Name(), so the
// order of the slice is irrelevant. serializationType records the method and
// parameters used to generate the identifiers.
func NewFileLevelManifest(modelName string, items []ManifestItem, serializationType SerializationType) *FileLevelManifest {
	itemMap := make(map[string]digests.Digest, len(items))
	for _, it := range items {
		itemMap[it.Name()] = it.Digest()
	}
	return &FileLevelManifest{
		name:              modelName,
		items:             itemMap,
		serializationType: serializationType,
	}
}

// ModelName returns the informative name of the model.
func (m *FileLevelManifest) ModelName() string {
	return m.name
}

// Len returns the number of items in the manifest.
func (m *FileLevelManifest) Len() int {
	return len(m.items)
}

// SerializationParameters returns the serialization method and arguments
// used to build the manifest.
//
// The returned map is a shallow copy, so callers can mutate it without
// affecting the manifest.
func (m *FileLevelManifest) SerializationParameters() map[string]any {
	params := m.serializationType.Parameters()
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// Equal reports whether two manifests contain the same identifier-to-digest
// mappings.
//
// The comparison is order-independent and ignores the model name and the
// serialization type.
func (m *FileLevelManifest) Equal(other *FileLevelManifest) bool {
	if m == other {
		return true
	}
	if other == nil {
		return false
	}

	if len(m.items) != len(other.items) {
		return false
	}

	for name, digest := range m.items {
		otherDigest, ok := other.items[name]
		if !ok {
			return false
		}
		if !digest.Equal(otherDigest) {
			return false
		}
	}

	return true
}

// DigestFor returns the digest recorded for the given identifier, and
// whether the identifier is present in the manifest.
func (m *FileLevelManifest) DigestFor(identifier string) (digests.Digest, bool) {
	d, ok := m.items[identifier]
	return d, ok
}

// ResourceDescriptors returns each resource from the manifest, sorted by
// identifier for a stable, deterministic order.
func (m *FileLevelManifest) ResourceDescriptors() []ResourceDescriptor {
	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	descs := make([]ResourceDescriptor, 0, len(ids))
	for _, id := range ids {
		descs = append(descs, ResourceDescriptor{
			Identifier: id,
			Digest:     m.items[id],
		})
	}
	return descs
}

// DigestManifest represents an entire model by a single digest.
//
// For directory models this digest is the deterministic merge of all
// per-file digests; for single-file models it is the digest of the file
// itself.
type DigestManifest struct {
	digest digests.Digest
}

func (DigestManifest) isManifest() {}

// NewDigestManifest wraps a merged model digest as a manifest.
func NewDigestManifest(digest digests.Digest) DigestManifest {
	return DigestManifest{digest: digest}
}

// Digest returns the digest representing the whole model.
func (m DigestManifest) Digest() digests.Digest {
	return m.digest
}

// Equal reports whether two digest manifests carry the same digest.
func (m DigestManifest) Equal(other DigestManifest) bool {
	return m.digest.Equal(other.digest)
}
