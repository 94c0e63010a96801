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

// ShardedFileSerializer produces a manifest recording every file shard.
// It walks the model directory, splits each file into fixed-size shards,
// and computes digests for each shard in parallel.
type ShardedFileSerializer struct {
	hasherFactory   fileio.ShardedFileHasherFactory
	maxWorkers      int
	allowSymlinks   bool
	baseIgnorePaths []string
	shardSize       int64
	hashType        string
}

// NewShardedFileSerializer initializes a serializer that works at shard
// level.
//
//   - hasherFactory: builds the hash engine used to hash each file shard
//   - maxWorkers: maximum number of parallel hashing tasks; <=0 means
//     runtime.NumCPU()
//   - baseIgnorePaths: ignore paths recorded in the serialization metadata
func NewShardedFileSerializer(
	hasherFactory fileio.ShardedFileHasherFactory,
	maxWorkers int,
	allowSymlinks bool,
	baseIgnorePaths []string,
) (*ShardedFileSerializer, error) {
	if hasherFactory == nil {
		return nil, fmt.Errorf("hasherFactory must not be nil")
	}

	// Probe the factory once to learn the shard size and digest name
	// recorded in the serialization metadata.
	mockHasher, err := hasherFactory(".", 0, 1)
	if err != nil {
		return nil, fmt.Errorf("create mock sharded file hasher: %w", err)
	}

	mock, ok := mockHasher.(*fileio.ShardedFileHasher)
	if !ok {
		return nil, fmt.Errorf("sharded hasher factory must return *io.ShardedFileHasher, got %T", mockHasher)
	}

	shardSize := mock.ShardSize()
	if shardSize <= 0 {
		return nil, fmt.Errorf("invalid shard size %d from mock hasher", shardSize)
	}

	baseCopy := make([]string, len(baseIgnorePaths))
	copy(baseCopy, baseIgnorePaths)

	return &ShardedFileSerializer{
		hasherFactory:   hasherFactory,
		maxWorkers:      maxWorkers,
		allowSymlinks:   allowSymlinks,
		baseIgnorePaths: baseCopy,
		shardSize:       shardSize,
		hashType:        mockHasher.DigestName(),
	}, nil
}

// SetAllowSymlinks updates whether following symlinks is allowed.
func (s *ShardedFileSerializer) SetAllowSymlinks(allow bool) {
	s.allowSymlinks = allow
}

// Serialize implements Serializer.
//
// It walks modelPath, generates shard descriptors for each file, hashes
// them in parallel, and returns a file-level manifest where each item
// corresponds to one file shard.
func (s *ShardedFileSerializer) Serialize(
	modelPath string,
	ignorePaths []string,
) (manifest.Manifest, error) {
	if err := CheckFileOrDirectory(modelPath, s.allowSymlinks); err != nil {
		return nil, err
	}

	shards, err := s.collectShards(modelPath, ignorePaths)
	if err != nil {
		return nil, err
	}

	items, err := s.hashShards(modelPath, shards)
	if err != nil {
		return nil, err
	}

	serializationType := manifest.NewShardSerialization(
		s.hashType,
		s.shardSize,
		s.allowSymlinks,
		s.buildSerializationIgnorePaths(modelPath, ignorePaths),
	)

	return manifest.NewFileLevelManifest(deriveModelName(modelPath), items, serializationType), nil
}

// shardDescriptor describes a single file shard [start, end) for hashing.
type shardDescriptor struct {
	path       string
	start, end int64
}

// collectShards walks modelPath and computes shard descriptors for every
// file that is not ignored. Ignored directories are pruned like in the
// file-level walk.
func (s *ShardedFileSerializer) collectShards(
	modelPath string,
	ignorePaths []string,
) ([]shardDescriptor, error) {
	var shards []shardDescriptor

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

		if err := CheckFileOrDirectory(path, s.allowSymlinks); err != nil {
			return err
		}

		regular, err := isRegularFile(path, dir, s.allowSymlinks)
		if err != nil {
			return err
		}
		if !regular {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return NewSerializationError(ErrTypeInvalidPath, path,
				"cannot stat file", err)
		}

		start := int64(0)
		for _, end := range endpoints(s.shardSize, info.Size()) {
			shards = append(shards, shardDescriptor{
				path:  path,
				start: start,
				end:   end,
			})
			start = end
		}
		return nil
	}

	if err := filepath.WalkDir(modelPath, walkFn); err != nil {
		return nil, err
	}
	return shards, nil
}

// hashShards hashes all shard descriptors using a worker pool bounded by
// maxWorkers.
func (s *ShardedFileSerializer) hashShards(
	modelPath string,
	shards []shardDescriptor,
) ([]manifest.ManifestItem, error) {
	if len(shards) == 0 {
		return nil, nil
	}

	workerCount := s.maxWorkers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > len(shards) {
		workerCount = len(shards)
	}

	type result struct {
		item manifest.ManifestItem
		err  error
	}

	jobs := make(chan shardDescriptor)
	results := make(chan result, len(shards))

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			for shard := range jobs {
				it, err := s.computeShard(modelPath, shard.path, shard.start, shard.end)
				results <- result{item: it, err: err}
			}
		}()
	}

	// Feed jobs.
	go func() {
		for _, sh := range shards {
			jobs <- sh
		}
		close(jobs)
	}()

	// Close results after the workers finish.
	go func() {
		wg.Wait()
		close(results)
	}()

	items := make([]manifest.ManifestItem, 0, len(shards))
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

	if firstErr != nil {
		return nil, firstErr
	}

	return items, nil
}

// computeShard digests a single file shard and returns the manifest item
// recording the shard's relative path and byte range.
func (s *ShardedFileSerializer) computeShard(
	modelPath, path string,
	start, end int64,
) (manifest.ManifestItem, error) {
	hasher, err := s.hasherFactory(path, start, end)
	if err != nil {
		return nil, NewSerializationError(ErrTypeHashComputation, path,
			fmt.Sprintf("create sharded file hasher for [%d,%d)", start, end), err)
	}

	digest, err := hasher.Compute()
	if err != nil {
		return nil, NewSerializationError(ErrTypeHashComputation, path,
			fmt.Sprintf("compute shard digest for [%d,%d)", start, end), err)
	}

	rel, err := filepath.Rel(modelPath, path)
	if err != nil {
		return nil, NewSerializationError(ErrTypeHashComputation, path,
			"compute relative path", err)
	}

	return manifest.NewShardedFileManifestItem(rel, start, end, digest), nil
}

// endpoints returns the shard end offsets for a file of the given size.
// The last value is always exactly end, even if end is not a multiple of
// step. There is at least one value if step > 0 and end > 0.
func endpoints(step, end int64) []int64 {
	if step <= 0 || end <= 0 {
		return nil
	}
	out := make([]int64, 0, end/step+1)
	for v := step; v < end; v += step {
		out = append(out, v)
	}
	out = append(out, end)
	return out
}

// buildSerializationIgnorePaths mirrors FileSerializer: base ignore paths
// as-is, per-call paths converted to model-relative form, entries outside
// the model root dropped.
func (s *ShardedFileSerializer) buildSerializationIgnorePaths(
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
			continue
		}
		recorded = append(recorded, rel)
	}
	return recorded
}
