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

// Package serialization turns a machine-learning model (a file or a
// directory tree) into a manifest.Manifest.
//
// Serializers walk the model path, validate every visited filesystem object,
// apply ignore rules, and hash eligible files in parallel. How the collected
// per-file digests become a manifest is decided by a ManifestBuilder
// strategy: itemized (one entry per file) or merged into a single aggregate
// digest.
package serialization

import (
	"github.com/sigstore/model-serialization/pkg/manifest"
)

// Serializer is the generic ML model format serializer.
//
// Implementations are responsible for walking the model path (file or
// directory), applying ignore rules, and producing a manifest.Manifest.
type Serializer interface {
	// Serialize serializes the model located at modelPath.
	//
	//   - modelPath: the path to the model (file or directory).
	//   - ignorePaths: paths to ignore during serialization. If an entry is
	//     a directory, all of its children are ignored.
	//
	// Implementations must call CheckFileOrDirectory on every visited path
	// before any hashing work, and respect ShouldIgnore for each candidate.
	// Serialization is all-or-nothing: on any error no manifest is returned.
	Serialize(
		modelPath string,
		ignorePaths []string,
	) (manifest.Manifest, error)
}

// ManifestBuilder decides how the per-file digests collected by a traversal
// become a manifest.
//
// The items arrive in completion order, which is unspecified; builders that
// need a canonical order must impose it themselves. Implementations are not
// called concurrently.
type ManifestBuilder interface {
	// Build consumes the collected items and yields a manifest variant.
	//
	// modelName is the informative model name and serializationType records
	// how the item identifiers were generated; builders that discard
	// per-item granularity may ignore both.
	Build(
		modelName string,
		items []*manifest.FileManifestItem,
		serializationType manifest.SerializationType,
	) (manifest.Manifest, error)
}
