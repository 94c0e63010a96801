package serialization

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	fileio "github.com/sigstore/model-serialization/pkg/hashing/engines/io"
	"github.com/sigstore/model-serialization/pkg/manifest"
)

// FileSerializer walks a model path, hashes every eligible file in parallel,
// and hands the collected digests to a ManifestBuilder strategy.
type FileSerializer struct {
	hasherFactory   fileio.FileHasherFactory
	builder         ManifestBuilder
	maxWorkers      int
	allowSymlinks   bool
	baseIgnorePaths []string
	hashType        string
}

// NewFileSerializer constructs a FileSerializer.
//
//   - hasherFactory: builds the hash engine used to hash individual files;
//     called once per hashing task so no hash state is shared across tasks
//   - builder: decides the manifest variant; nil selects the itemized builder
//   - maxWorkers: maximum number of parallel hashing tasks; <=0 means
//     runtime.NumCPU()
//   - allowSymlinks: whether symlinks are permitted in the model tree
//   - baseIgnorePaths: ignore paths recorded in the serialization metadata
func NewFileSerializer(
	hasherFactory fileio.FileHasherFactory,
	builder ManifestBuilder,
	maxWorkers int,
	allowSymlinks bool,
	baseIgnorePaths []string,
) (*FileSerializer, error) {
	if hasherFactory == nil {
		return nil, fmt.Errorf("hasherFactory must not be nil")
	}

	if builder == nil {
		builder = NewItemizedManifestBuilder()
	}

	// Probe the factory once to learn the digest name recorded in the
	// serialization metadata.
	mockHasher, err := hasherFactory(".")
	if err != nil {
		return nil, fmt.Errorf("create mock file hasher: %w", err)
	}

	baseCopy := make([]string, len(baseIgnorePaths))
	copy(baseCopy, baseIgnorePaths)

	return &FileSerializer{
		hasherFactory:   hasherFactory,
		builder:         builder,
		maxWorkers:      maxWorkers,
		allowSymlinks:   allowSymlinks,
		baseIgnorePaths: baseCopy,
		hashType:        mockHasher.DigestName(),
	}, nil
}

// SetAllowSymlinks updates whether following symlinks is allowed.
func (s *FileSerializer) SetAllowSymlinks(allow bool) {
	s.allowSymlinks = allow
}

// Serialize implements Serializer.
//
// The model root itself is the first candidate, which covers single-file
// models. Every visited path is validated before any hashing is attempted,
// so an invalid path anywhere in the tree fails the whole call. The call is
// all-or-nothing: on any error, no manifest is returned.
func (s *FileSerializer) Serialize(
	modelPath string,
	ignorePaths []string,
) (manifest.Manifest, error) {
	if err := CheckFileOrDirectory(modelPath, s.allowSymlinks); err != nil {
		return nil, err
	}

	filePaths, err := s.collectFiles(modelPath, ignorePaths)
	if err != nil {
		return nil, err
	}

	items, err := s.hashFiles(modelPath, filePaths)
	if err != nil {
		return nil, err
	}

	serializationType := manifest.NewFileSerialization(
		s.hashType,
		s.allowSymlinks,
		s.buildSerializationIgnorePaths(modelPath, ignorePaths),
	)

	return s.builder.Build(deriveModelName(modelPath), items, serializationType)
}

// collectFiles walks the model path and returns every file that should be
// hashed. Ignored directories are pruned from the walk, so their children
// are never visited, let alone hashed.
func (s *FileSerializer) collectFiles(
	modelPath string,
	ignorePaths []string,
) ([]string, error) {
	var files []string

	walkFn := func(path string, dir fs.DirEntry, err error) error {
		if err != nil {
			return NewSerializationError(ErrTypeInvalidPath, path,
				"cannot traverse path", err)
		}

		if ShouldIgnore(path, ignorePaths) {
			if dir.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Validate every candidate before any hashing work starts.
		if err := CheckFileOrDirectory(path, s.allowSymlinks); err != nil {
			return err
		}

		regular, err := isRegularFile(path, dir, s.allowSymlinks)
		if err != nil {
			return err
		}
		if regular {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(modelPath, walkFn); err != nil {
		return nil, err
	}
	return files, nil
}

// isRegularFile reports whether the walked entry should be hashed as a file.
// An allowed symlink is classified by what it resolves to.
func isRegularFile(path string, dir fs.DirEntry, allowSymlinks bool) (bool, error) {
	mode := dir.Type()
	if mode&fs.ModeSymlink != 0 && allowSymlinks {
		info, err := os.Stat(path)
		if err != nil {
			return false, NewSerializationError(ErrTypeInvalidPath, path,
				"cannot resolve symlink", err)
		}
		mode = info.Mode()
	}
	return mode.IsRegular(), nil
}

// hashFiles hashes the given files using a worker pool limited to
// maxWorkers. Results arrive in completion order; only the builder may
// impose a canonical order.
func (s *FileSerializer) hashFiles(
	modelPath string,
	filePaths []string,
) ([]*manifest.FileManifestItem, error) {
	if len(filePaths) == 0 {
		return nil, nil
	}

	workerCount := s.maxWorkers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > len(filePaths) {
		workerCount = len(filePaths)
	}

	type result struct {
		item *manifest.FileManifestItem
		err  error
	}

	jobs := make(chan string)
	results := make(chan result, len(filePaths))

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				it, err := s.computeHash(modelPath, path)
				results <- result{item: it, err: err}
			}
		}()
	}

	// Feed jobs.
	go func() {
		for _, fp := range filePaths {
			jobs <- fp
		}
		close(jobs)
	}()

	// Close results after the workers finish so the range below terminates.
	go func() {
		wg.Wait()
		close(results)
	}()

	items := make([]*manifest.FileManifestItem, 0, len(filePaths))
	var firstErr error

	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		items = append(items, res.item)
	}

	// All digests or an error, never a partial set.
	if firstErr != nil {
		return nil, firstErr
	}

	return items, nil
}

// computeHash digests a single file and returns the manifest item whose
// name is the path relative to modelPath.
func (s *FileSerializer) computeHash(
	modelPath, path string,
) (*manifest.FileManifestItem, error) {
	hasher, err := s.hasherFactory(path)
	if err != nil {
		return nil, NewSerializationError(ErrTypeHashComputation, path,
			"create file hasher", err)
	}

	digest, err := hasher.Compute()
	if err != nil {
		return nil, NewSerializationError(ErrTypeHashComputation, path,
			"compute digest", err)
	}

	rel, err := filepath.Rel(modelPath, path)
	if err != nil {
		return nil, NewSerializationError(ErrTypeHashComputation, path,
			"compute relative path", err)
	}

	return manifest.NewFileManifestItem(rel, digest), nil
}

// buildSerializationIgnorePaths computes the ignore paths recorded in the
// serialization metadata: base ignore paths as-is, per-call ignorePaths
// converted to paths relative to modelPath. Entries outside the model root
// are not recorded.
func (s *FileSerializer) buildSerializationIgnorePaths(
	modelPath string,
	ignorePaths []string,
) []string {
	recorded := make([]string, len(s.baseIgnorePaths))
	copy(recorded, s.baseIgnorePaths)

	for _, p := range ignorePaths {
		if p == "" {
			continue
		}
		rel, err := filepath.Rel(modelPath, p)
		if err != nil {
			continue
		}
		if rel == "." || rel == ".." || rel == "" {
			continue
		}
		if hasParent(rel) {
			// rel starts with "../": the entry is outside the model root.
			continue
		}
		recorded = append(recorded, rel)
	}
	return recorded
}

// hasParent reports whether rel starts with "../" (or its OS equivalent).
func hasParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// deriveModelName obtains the informative model name from the model path.
func deriveModelName(modelPath string) string {
	base := filepath.Base(modelPath)
	if base == "" || base == "." || base == ".." {
		if abs, err := filepath.Abs(modelPath); err == nil {
			base = filepath.Base(abs)
		}
	}
	return base
}
