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

import "sort"

// ManifestDiff represents the differences between two file-level manifests.
// It contains structured information about files that differ between an
// actual manifest (computed from the model on disk) and an expected one
// (e.g. extracted from a signature by a downstream verifier).
//
//nolint:revive
type ManifestDiff struct {
	// ExtraFiles contains identifiers present in actual but not in expected.
	ExtraFiles []string

	// MissingFiles contains identifiers present in expected but not in actual.
	MissingFiles []string

	// Mismatches contains files that exist in both manifests but with
	// different digests.
	Mismatches []HashMismatch
}

// HashMismatch is a single file whose digests differ between two manifests.
type HashMismatch struct {
	// Identifier is the file path or name.
	Identifier string

	// ExpectedHash is the digest hex from the expected manifest.
	ExpectedHash string

	// ActualHash is the digest hex from the actual manifest.
	ActualHash string
}

// IsEmpty returns true if the two manifests had no differences.
func (d *ManifestDiff) IsEmpty() bool {
	return len(d.ExtraFiles) == 0 && len(d.MissingFiles) == 0 && len(d.Mismatches) == 0
}

// ComputeDiff computes the differences between two file-level manifests.
//
// actual is the manifest computed from the model being checked; expected is
// the manifest it is compared against. All slices in the result are sorted
// by identifier.
func ComputeDiff(actual, expected *FileLevelManifest) *ManifestDiff {
	diff := &ManifestDiff{}

	for id, actualDigest := range actual.items {
		expectedDigest, ok := expected.items[id]
		if !ok {
			diff.ExtraFiles = append(diff.ExtraFiles, id)
			continue
		}
		if !actualDigest.Equal(expectedDigest) {
			diff.Mismatches = append(diff.Mismatches, HashMismatch{
				Identifier:   id,
				ExpectedHash: expectedDigest.Hex(),
				ActualHash:   actualDigest.Hex(),
			})
		}
	}

	for id := range expected.items {
		if _, ok := actual.items[id]; !ok {
			diff.MissingFiles = append(diff.MissingFiles, id)
		}
	}

	sort.Strings(diff.ExtraFiles)
	sort.Strings(diff.MissingFiles)
	sort.Slice(diff.Mismatches, func(i, j int) bool {
		return diff.Mismatches[i].Identifier < diff.Mismatches[j].Identifier
	})

	return diff
}
