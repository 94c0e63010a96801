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

// Package digests provides the Digest type pairing a hash algorithm name
// with the computed hash value.
//
// Digest values are effectively immutable: fields are unexported and both
// constructors and accessors copy the underlying bytes defensively.
package digests

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Digest is a computed cryptographic hash together with the name of the
// algorithm that produced it.
//
// The algorithm name must include every parameter that influences the hash
// output. For example, a digest obtained by hashing fixed-size file shards
// carries a name like "sha256-sharded-1048576" rather than plain "sha256",
// so that verification can recreate a compatible computation.
type Digest struct {
	algorithm string
	value     []byte
}

// NewDigest builds a Digest for the given algorithm name and raw hash value.
// The value slice is copied, so later mutation of the argument does not
// affect the returned Digest.
func NewDigest(algorithm string, value []byte) Digest {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	return Digest{
		algorithm: algorithm,
		value:     valueCopy,
	}
}

// Algorithm returns the name of the hash algorithm used to compute this digest.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns a copy of the raw digest bytes.
func (d Digest) Value() []byte {
	valueCopy := make([]byte, len(d.value))
	copy(valueCopy, d.value)
	return valueCopy
}

// Hex returns the lowercase hexadecimal encoding of the digest bytes.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.value)
}

// Size returns the length in bytes of the digest value.
func (d Digest) Size() int {
	return len(d.value)
}

// String renders the digest as "algorithm:hexvalue".
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.algorithm, d.Hex())
}

// Equal reports whether two digests have the same algorithm name and the
// same value bytes.
func (d Digest) Equal(other Digest) bool {
	return d.algorithm == other.algorithm && bytes.Equal(d.value, other.value)
}
