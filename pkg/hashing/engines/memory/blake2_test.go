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

package memory

import (
	"bytes"
	"testing"

	hashengines "github.com/sigstore/model-serialization/pkg/hashing/engines"
	"golang.org/x/crypto/blake2b"
)

func TestBLAKE2_ImplementsStreamingHashEngine(t *testing.T) {
	var _ hashengines.StreamingHashEngine = (*BLAKE2)(nil)
}

func TestBLAKE2_MatchesReferenceSum(t *testing.T) {
	want := blake2b.Sum512([]byte("abcd"))

	h, err := NewBLAKE2(nil)
	if err != nil {
		t.Fatalf("NewBLAKE2() error = %v", err)
	}
	h.Update([]byte("abcd"))

	d, err := h.Compute()
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !bytes.Equal(d.Value(), want[:]) {
		t.Errorf("Compute() = %x, want %x", d.Value(), want)
	}
	if d.Algorithm() != "blake2b" {
		t.Errorf("Algorithm() = %q, want %q", d.Algorithm(), "blake2b")
	}
}

func TestBLAKE2_ResetClearsState(t *testing.T) {
	want := blake2b.Sum512([]byte("abcd"))

	h, err := NewBLAKE2([]byte("junk"))
	if err != nil {
		t.Fatalf("NewBLAKE2() error = %v", err)
	}
	h.Reset(nil)
	h.Update([]byte("abcd"))

	d, err := h.Compute()
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !bytes.Equal(d.Value(), want[:]) {
		t.Errorf("Compute() after Reset() = %x, want %x", d.Value(), want)
	}
}

func TestBLAKE2_DigestSize(t *testing.T) {
	h, err := NewBLAKE2(nil)
	if err != nil {
		t.Fatalf("NewBLAKE2() error = %v", err)
	}
	if h.DigestSize() != blake2b.Size {
		t.Errorf("DigestSize() = %d, want %d", h.DigestSize(), blake2b.Size)
	}
}
