// Copyright 2025 The Sigstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serialization

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/sigstore/model-serialization/pkg/hashing/digests"
	fileio "github.com/sigstore/model-serialization/pkg/hashing/engines/io"
	"github.com/sigstore/model-serialization/pkg/hashing/engines/memory"
	"github.com/sigstore/model-serialization/pkg/manifest"
)

func sha256FileHasherFactory(path string) (fileio.FileHasher, error) {
	return fileio.NewSimpleFileHasher(path, memory.NewSHA256Engine(nil), 8192, "")
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

func newTestFileSerializer(t *testing.T, builder ManifestBuilder, maxWorkers int, allowSymlinks bool) *FileSerializer {
	t.Helper()
	s, err := NewFileSerializer(sha256FileHasherFactory, builder, maxWorkers, allowSymlinks, nil)
	if err != nil {
		t.Fatalf("NewFileSerializer failed: %v", err)
	}
	return s
}

func newTestDigestBuilder(t *testing.T) *DigestManifestBuilder {
	t.Helper()
	b, err := NewDigestManifestBuilder(memory.NewSHA256Engine(nil))
	if err != nil {
		t.Fatalf("NewDigestManifestBuilder failed: %v", err)
	}
	return b
}

func TestNewFileSerializer_NilFactory(t *testing.T) {
	if _, err := NewFileSerializer(nil, nil, 1, false, nil); err == nil {
		t.Error("Expected error for nil hasher factory")
	}
}

func TestFileSerializer_Directory_Itemized(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.txt":     "hi",
		"sub/b.txt": "yo",
	})

	s := newTestFileSerializer(t, nil, 2, false)
	m, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	fm, ok := m.(*manifest.FileLevelManifest)
	if !ok {
		t.Fatalf("Expected *FileLevelManifest, got %T", m)
	}
	if fm.Len() != 2 {
		t.Fatalf("Expected 2 items, got %d", fm.Len())
	}

	for rel, content := range map[string]string{"a.txt": "hi", "sub/b.txt": "yo"} {
		d, ok := fm.DigestFor(rel)
		if !ok {
			t.Fatalf("Missing digest for %s", rel)
		}
		if !d.Equal(sha256Digest(content)) {
			t.Errorf("Digest mismatch for %s", rel)
		}
	}
}

func TestFileSerializer_SingleFile_Itemized(t *testing.T) {
	tmpDir := t.TempDir()
	modelFile := filepath.Join(tmpDir, "model.bin")
	if err := os.WriteFile(modelFile, []byte("weights"), 0644); err != nil {
		t.Fatalf("Failed to write model file: %v", err)
	}

	s := newTestFileSerializer(t, nil, 1, false)
	m, err := s.Serialize(modelFile, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	fm := m.(*manifest.FileLevelManifest)
	if fm.Len() != 1 {
		t.Fatalf("Expected 1 item, got %d", fm.Len())
	}

	// A single-file model is recorded under the empty root marker.
	d, ok := fm.DigestFor("")
	if !ok {
		t.Fatal("Expected the root marker entry")
	}
	if !d.Equal(sha256Digest("weights")) {
		t.Error("Digest mismatch for single-file model")
	}
}

func TestFileSerializer_SingleFile_DigestIdentity(t *testing.T) {
	tmpDir := t.TempDir()
	modelFile := filepath.Join(tmpDir, "model.bin")
	if err := os.WriteFile(modelFile, []byte("weights"), 0644); err != nil {
		t.Fatalf("Failed to write model file: %v", err)
	}

	s := newTestFileSerializer(t, newTestDigestBuilder(t), 1, false)
	m, err := s.Serialize(modelFile, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	dm, ok := m.(manifest.DigestManifest)
	if !ok {
		t.Fatalf("Expected DigestManifest, got %T", m)
	}
	if !dm.Digest().Equal(sha256Digest("weights")) {
		t.Error("Single-file model digest must equal the file content digest")
	}
}

func TestFileSerializer_DeterministicAcrossWorkerCounts(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 25; i++ {
		files[fmt.Sprintf("layer%02d/weights.bin", i)] = fmt.Sprintf("weights %d", i)
	}
	writeTree(t, tmpDir, files)

	serialize := func(workers int) digests.Digest {
		s := newTestFileSerializer(t, newTestDigestBuilder(t), workers, false)
		m, err := s.Serialize(tmpDir, nil)
		if err != nil {
			t.Fatalf("Serialize with %d workers failed: %v", workers, err)
		}
		return m.(manifest.DigestManifest).Digest()
	}

	sequential := serialize(1)
	parallel := serialize(8)
	if !sequential.Equal(parallel) {
		t.Error("Digest must not depend on worker count")
	}
}

func TestFileSerializer_ContentChangeChangesDigest(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"a.txt": "hi", "b.txt": "yo"})

	s := newTestFileSerializer(t, newTestDigestBuilder(t), 2, false)

	before, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("HI"), 0644); err != nil {
		t.Fatalf("Failed to rewrite a.txt: %v", err)
	}

	after, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if before.(manifest.DigestManifest).Digest().Equal(after.(manifest.DigestManifest).Digest()) {
		t.Error("Changing file contents must change the digest")
	}
}

func TestFileSerializer_AddAndRenameChangeDigest(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"a.txt": "hi", "b.txt": "yo"})

	s := newTestFileSerializer(t, newTestDigestBuilder(t), 2, false)

	base, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	writeTree(t, tmpDir, map[string]string{"c.txt": "new"})
	added, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if base.(manifest.DigestManifest).Digest().Equal(added.(manifest.DigestManifest).Digest()) {
		t.Error("Adding a file must change the digest")
	}

	if err := os.Rename(filepath.Join(tmpDir, "c.txt"), filepath.Join(tmpDir, "d.txt")); err != nil {
		t.Fatalf("Failed to rename: %v", err)
	}
	renamed, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if added.(manifest.DigestManifest).Digest().Equal(renamed.(manifest.DigestManifest).Digest()) {
		t.Error("Renaming a file must change the digest")
	}
}

func TestFileSerializer_SymlinkRejected(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"target.txt": "content"})
	if err := os.Symlink(filepath.Join(tmpDir, "target.txt"), filepath.Join(tmpDir, "link")); err != nil {
		t.Skipf("Cannot create symlink: %v", err)
	}

	s := newTestFileSerializer(t, nil, 1, false)
	m, err := s.Serialize(tmpDir, nil)
	if err == nil {
		t.Fatal("Expected error for symlink when allowSymlinks=false")
	}
	if m != nil {
		t.Error("No manifest must be returned on error")
	}
	if !IsType(err, ErrTypeInvalidPath) {
		t.Errorf("Expected InvalidPathKind error, got: %v", err)
	}
}

func TestFileSerializer_SymlinkAllowed(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"target.txt": "content"})
	if err := os.Symlink(filepath.Join(tmpDir, "target.txt"), filepath.Join(tmpDir, "link")); err != nil {
		t.Skipf("Cannot create symlink: %v", err)
	}

	s := newTestFileSerializer(t, nil, 1, true)
	m, err := s.Serialize(tmpDir, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	fm := m.(*manifest.FileLevelManifest)
	if fm.Len() != 2 {
		t.Fatalf("Expected 2 items (target and link), got %d", fm.Len())
	}

	// The link is hashed through its target, so both entries carry the
	// same content digest.
	linkDigest, ok := fm.DigestFor("link")
	if !ok {
		t.Fatal("Missing digest for symlink entry")
	}
	if !linkDigest.Equal(sha256Digest("content")) {
		t.Error("Symlink entry must hash the resolved target contents")
	}
}

func TestFileSerializer_IgnoredDirectoryPruned(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.txt":             "hi",
		"data/big.bin":      "ignored",
		"data-old/keep.bin": "kept",
	})
	// Make the pruned directory's child invalid so traversal into it would
	// fail the serialization. Pruning must skip it before validation.
	sockPath := filepath.Join(tmpDir, "data", "skip.sock")
	listener, err := net.Listen("unix", sockPath)
	if err == nil {
		defer listener.Close()
	}

	s := newTestFileSerializer(t, nil, 1, false)
	m, err := s.Serialize(tmpDir, []string{filepath.Join(tmpDir, "data")})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	fm := m.(*manifest.FileLevelManifest)
	if _, ok := fm.DigestFor("data/big.bin"); ok {
		t.Error("Ignored directory contents must not appear in the manifest")
	}
	if _, ok := fm.DigestFor("data-old/keep.bin"); !ok {
		t.Error("Sibling directory sharing a name prefix must not be ignored")
	}
	if fm.Len() != 2 {
		t.Errorf("Expected 2 items, got %d", fm.Len())
	}
}

func TestFileSerializer_FailFastOnSocket(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"a.txt": "hi"})

	listener, err := net.Listen("unix", filepath.Join(tmpDir, "test.sock"))
	if err != nil {
		t.Skipf("Cannot create unix socket: %v", err)
	}
	defer listener.Close()

	s := newTestFileSerializer(t, nil, 1, false)
	m, err := s.Serialize(tmpDir, nil)
	if err == nil {
		t.Fatal("Expected error for socket in model tree")
	}
	if m != nil {
		t.Error("No manifest must be returned on error")
	}
	if !IsType(err, ErrTypeInvalidPath) {
		t.Errorf("Expected InvalidPathKind error, got: %v", err)
	}
}

func TestFileSerializer_MissingModelPath(t *testing.T) {
	s := newTestFileSerializer(t, nil, 1, false)
	_, err := s.Serialize(filepath.Join(t.TempDir(), "missing"), nil)
	if err == nil {
		t.Fatal("Expected error for missing model path")
	}
	if !IsType(err, ErrTypeInvalidPath) {
		t.Errorf("Expected InvalidPathKind error, got: %v", err)
	}
}

func TestFileSerializer_EmptyDirectory(t *testing.T) {
	s := newTestFileSerializer(t, nil, 1, false)
	m, err := s.Serialize(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if m.(*manifest.FileLevelManifest).Len() != 0 {
		t.Error("Expected empty manifest for empty directory")
	}
}
