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

// Package hashengines defines the hashing capabilities consumed by the
// serialization layer: one-shot engines, streaming engines, and a registry
// of engine factories keyed by algorithm name.
package hashengines

import (
	"github.com/sigstore/model-serialization/pkg/hashing/digests"
)

// HashEngine is the core interface for computing cryptographic hashes.
//
// The algorithm name reported by DigestName must include every parameter
// that affects the hash output. For example, if a file is split into shards
// which are hashed separately and the final digest aggregates these hashes,
// the shard size must be part of the name (e.g. "sha256-sharded-1048576").
type HashEngine interface {
	// Compute finalizes the hash computation and returns the resulting digest.
	Compute() (digests.Digest, error)

	// DigestName returns the canonical name of the hash algorithm. This name
	// becomes the algorithm field of the Digest returned by Compute.
	DigestName() string

	// DigestSize returns the size in bytes of digests produced by this
	// engine. It must match the Size() of the Digest returned by Compute.
	DigestSize() int
}

// Streaming allows feeding data to a hash engine incrementally.
//
// Kept separate from HashEngine so that implementations supporting only
// one-shot hashing do not have to fake streaming semantics.
type Streaming interface {
	// Update appends data to the bytes being hashed.
	Update(data []byte)

	// Reset clears the hash state and optionally seeds it with data.
	Reset(data []byte)
}

// StreamingHashEngine combines HashEngine and Streaming. The digest-merging
// step of serialization requires this interface, since it feeds the engine
// one (header, digest) pair at a time.
type StreamingHashEngine interface {
	HashEngine
	Streaming
}
