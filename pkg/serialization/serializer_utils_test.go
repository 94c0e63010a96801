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
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFileOrDirectory_RegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "file.txt")

	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if err := CheckFileOrDirectory(testFile, false); err != nil {
		t.Errorf("Expected no error for regular file, got: %v", err)
	}
}

func TestCheckFileOrDirectory_Directory(t *testing.T) {
	tmpDir := t.TempDir()

	if err := CheckFileOrDirectory(tmpDir, false); err != nil {
		t.Errorf("Expected no error for directory, got: %v", err)
	}
}

func TestCheckFileOrDirectory_NonExistent(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "does_not_exist")

	err := CheckFileOrDirectory(missing, false)
	if err == nil {
		t.Fatal("Expected error for non-existent path")
	}
	if !IsType(err, ErrTypeInvalidPath) {
		t.Errorf("Expected InvalidPathKind error, got: %v", err)
	}
}

func TestCheckFileOrDirectory_Symlink_NotAllowed(t *testing.T) {
	tmpDir := t.TempDir()
	targetFile := filepath.Join(tmpDir, "target.txt")
	symlinkPath := filepath.Join(tmpDir, "symlink")

	if err := os.WriteFile(targetFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create target file: %v", err)
	}
	if err := os.Symlink(targetFile, symlinkPath); err != nil {
		t.Skipf("Cannot create symlink: %v", err)
	}

	err := CheckFileOrDirectory(symlinkPath, false)
	if err == nil {
		t.Fatal("Expected error for symlink when allowSymlinks=false")
	}
	if !IsType(err, ErrTypeInvalidPath) {
		t.Errorf("Expected InvalidPathKind error, got: %v", err)
	}
}

func TestCheckFileOrDirectory_Symlink_Allowed(t *testing.T) {
	tmpDir := t.TempDir()
	targetFile := filepath.Join(tmpDir, "target.txt")
	symlinkPath := filepath.Join(tmpDir, "symlink")

	if err := os.WriteFile(targetFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create target file: %v", err)
	}
	if err := os.Symlink(targetFile, symlinkPath); err != nil {
		t.Skipf("Cannot create symlink: %v", err)
	}

	if err := CheckFileOrDirectory(symlinkPath, true); err != nil {
		t.Errorf("Expected no error for symlink when allowSymlinks=true, got: %v", err)
	}
}

func TestCheckFileOrDirectory_BrokenSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	symlinkPath := filepath.Join(tmpDir, "broken_symlink")

	if err := os.Symlink("/nonexistent/target", symlinkPath); err != nil {
		t.Skipf("Cannot create symlink: %v", err)
	}

	if err := CheckFileOrDirectory(symlinkPath, true); err == nil {
		t.Error("Expected error for broken symlink even when allowSymlinks=true")
	}
}

func TestCheckFileOrDirectory_Socket(t *testing.T) {
	tmpDir := t.TempDir()
	sockPath := filepath.Join(tmpDir, "test.sock")

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Skipf("Cannot create unix socket: %v", err)
	}
	defer listener.Close()

	err = CheckFileOrDirectory(sockPath, false)
	if err == nil {
		t.Fatal("Expected error for socket")
	}
	if !IsType(err, ErrTypeInvalidPath) {
		t.Errorf("Expected InvalidPathKind error, got: %v", err)
	}
}

func TestShouldIgnore_EmptyIgnoreList(t *testing.T) {
	if ShouldIgnore("/some/path", []string{}) {
		t.Error("Expected false when ignore list is empty")
	}
}

func TestShouldIgnore_ExactMatch(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "file.txt")

	if err := os.WriteFile(testPath, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !ShouldIgnore(testPath, []string{testPath}) {
		t.Error("Expected true for exact path match")
	}
}

func TestShouldIgnore_ParentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	testFile := filepath.Join(subDir, "file.txt")

	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !ShouldIgnore(testFile, []string{subDir}) {
		t.Error("Expected true when parent directory is in ignore list")
	}
}

// A path that merely shares a prefix with an ignored directory is not
// inside it.
func TestShouldIgnore_PrefixIsNotContainment(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	siblingDir := filepath.Join(tmpDir, "data-old")
	siblingFile := filepath.Join(siblingDir, "file.txt")

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	if err := os.MkdirAll(siblingDir, 0755); err != nil {
		t.Fatalf("Failed to create sibling dir: %v", err)
	}
	if err := os.WriteFile(siblingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create sibling file: %v", err)
	}

	if ShouldIgnore(siblingFile, []string{dataDir}) {
		t.Error("Expected false for sibling directory sharing a name prefix")
	}
	if ShouldIgnore(siblingDir, []string{dataDir}) {
		t.Error("Expected false for sibling directory itself")
	}
}

func TestShouldIgnore_NotInIgnoreList(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "file.txt")
	otherFile := filepath.Join(tmpDir, "other.txt")

	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(otherFile, []byte("other"), 0644); err != nil {
		t.Fatalf("Failed to create other file: %v", err)
	}

	if ShouldIgnore(testFile, []string{otherFile}) {
		t.Error("Expected false when path is not in ignore list")
	}
}

func TestShouldIgnore_EmptyStringInIgnoreList(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "file.txt")

	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if ShouldIgnore(testFile, []string{""}) {
		t.Error("Expected false when ignore list only contains empty string")
	}
}

func TestShouldIgnore_MultipleIgnorePaths(t *testing.T) {
	tmpDir := t.TempDir()

	dir1 := filepath.Join(tmpDir, "dir1")
	dir2 := filepath.Join(tmpDir, "dir2")
	file1 := filepath.Join(dir1, "file.txt")
	file2 := filepath.Join(dir2, "file.txt")

	for _, d := range []string{dir1, dir2} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	for _, f := range []string{file1, file2} {
		if err := os.WriteFile(f, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", f, err)
		}
	}

	ignorePaths := []string{dir1, dir2}
	if !ShouldIgnore(file1, ignorePaths) {
		t.Error("Expected file1 to be ignored")
	}
	if !ShouldIgnore(file2, ignorePaths) {
		t.Error("Expected file2 to be ignored")
	}
}

func TestShouldIgnore_DifferentBranch(t *testing.T) {
	tmpDir := t.TempDir()

	dirA := filepath.Join(tmpDir, "dirA")
	dirB := filepath.Join(tmpDir, "dirB")
	fileB := filepath.Join(dirB, "file.txt")

	for _, d := range []string{dirA, dirB} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	if err := os.WriteFile(fileB, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create fileB: %v", err)
	}

	if ShouldIgnore(fileB, []string{dirA}) {
		t.Error("Expected false for file in different directory branch")
	}
}
