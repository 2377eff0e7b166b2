package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/protoutil"
	lru "github.com/hashicorp/golang-lru/v2"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/protodetect/pkg/observability"
)

// defaultCacheSize bounds the number of compiled descriptor sets kept in memory.
const defaultCacheSize = 32

// Loader compiles .proto sources into FileDescriptorSets. Compiled sets are
// cached by source fingerprint so repeated comparisons of the same tree do
// not pay for recompilation.
type Loader struct {
	cache  *lru.Cache[string, *descriptorpb.FileDescriptorSet]
	logger *observability.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for compilation progress.
func WithLogger(logger *observability.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithCacheSize overrides the descriptor cache capacity.
func WithCacheSize(size int) Option {
	return func(l *Loader) {
		if size > 0 {
			cache, err := lru.New[string, *descriptorpb.FileDescriptorSet](size)
			if err == nil {
				l.cache = cache
			}
		}
	}
}

// NewLoader creates a Loader with the default cache size.
func NewLoader(opts ...Option) *Loader {
	cache, _ := lru.New[string, *descriptorpb.FileDescriptorSet](defaultCacheSize)
	l := &Loader{
		cache:  cache,
		logger: observability.NewLogger(observability.InfoLevel, os.Stderr),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDirectory compiles every .proto file found under dir. The directory
// itself is always an import path; extra import paths may be supplied for
// dependencies that live outside the tree. It returns the compiled descriptor
// set, including transitive imports, plus the relative names of the files
// that were discovered in dir.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, importPaths ...string) (*descriptorpb.FileDescriptorSet, []string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("proto directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("proto directory %q: not a directory", dir)
	}

	files, err := discoverProtoFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("proto directory %q: no .proto files found", dir)
	}

	paths := append([]string{dir}, importPaths...)
	set, err := l.LoadFiles(ctx, paths, files)
	if err != nil {
		return nil, nil, err
	}
	return set, files, nil
}

// LoadFiles compiles the named .proto files, resolving imports against the
// given import paths and the well-known standard imports. File names must be
// relative to one of the import paths.
func (l *Loader) LoadFiles(ctx context.Context, importPaths []string, files []string) (*descriptorpb.FileDescriptorSet, error) {
	key := cacheKey(importPaths, files)
	if set, ok := l.cache.Get(key); ok {
		l.logger.WithField("files", len(files)).Debug("descriptor cache hit")
		return set, nil
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: importPaths,
		}),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}

	compiled, err := compiler.Compile(ctx, files...)
	if err != nil {
		return nil, fmt.Errorf("compiling protos: %w", err)
	}

	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	for _, fd := range compiled {
		appendFileWithImports(set, fd, seen)
	}

	l.cache.Add(key, set)
	l.logger.WithFields(map[string]interface{}{
		"files":       len(files),
		"descriptors": len(set.GetFile()),
	}).Debug("compiled proto files")
	return set, nil
}

// appendFileWithImports adds fd and its transitive imports to set,
// dependencies first so the set is topologically ordered.
func appendFileWithImports(set *descriptorpb.FileDescriptorSet, fd protoreflect.FileDescriptor, seen map[string]bool) {
	if seen[fd.Path()] {
		return
	}
	seen[fd.Path()] = true

	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		appendFileWithImports(set, imports.Get(i).FileDescriptor, seen)
	}
	set.File = append(set.File, protoutil.ProtoFromFileDescriptor(fd))
}

// discoverProtoFiles walks dir and returns the paths of all .proto files,
// relative to dir, in sorted order.
func discoverProtoFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".proto") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking proto directory %q: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func cacheKey(importPaths, files []string) string {
	parts := make([]string, 0, len(importPaths)+len(files)+1)
	parts = append(parts, importPaths...)
	parts = append(parts, "--")
	parts = append(parts, files...)
	return strings.Join(parts, "\x00")
}
