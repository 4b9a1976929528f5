package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"payfile-synth/internal/domain"
)

var safeSegment = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

const tempPrefix = ".tmp-"

// LocalFileStore keeps generated files under <root>/<namespace>/<name>.
type LocalFileStore struct {
	root string
}

// NewLocalFileStore creates a store rooted at root. The directory is created
// on first write.
func NewLocalFileStore(root string) (*LocalFileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve storage root %s: %w", root, err)
	}
	return &LocalFileStore{root: abs}, nil
}

// Root is the absolute storage root.
func (s *LocalFileStore) Root() string {
	return s.root
}

// Save writes file atomically: content goes to a temp file in the target
// directory which is then renamed over the final name.
func (s *LocalFileStore) Save(ctx context.Context, namespace string, file *domain.GeneratedFile) (domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return domain.StoredFile{}, err
	}
	path, err := s.filePath(namespace, file.Filename)
	if err != nil {
		return domain.StoredFile{}, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to create namespace directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(file.Content); err != nil {
		tmp.Close()
		return domain.StoredFile{}, fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return domain.StoredFile{}, fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return storedFile(namespace, path, info), nil
}

// List returns the files of a namespace sorted by name. An unknown namespace
// has no files.
func (s *LocalFileStore) List(ctx context.Context, namespace string) ([]domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.StoredFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := make([]domain.StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		files = append(files, storedFile(namespace, filepath.Join(dir, e.Name()), info))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *LocalFileStore) namespaceDir(namespace string) (string, error) {
	if !safeSegment.MatchString(namespace) {
		return "", fmt.Errorf("%w: namespace %q", domain.ErrInvalidPath, namespace)
	}
	return s.within(filepath.Join(s.root, namespace))
}

func (s *LocalFileStore) filePath(namespace, name string) (string, error) {
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return "", err
	}
	if !safeSegment.MatchString(name) {
		return "", fmt.Errorf("%w: file name %q", domain.ErrInvalidPath, name)
	}
	return s.within(filepath.Join(dir, name))
}

func (s *LocalFileStore) within(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes the storage root", domain.ErrInvalidPath, path)
	}
	return path, nil
}

func storedFile(namespace, path string, info os.FileInfo) domain.StoredFile {
	return domain.StoredFile{
		Namespace: namespace,
		Name:      info.Name(),
		Path:      path,
		Size:      info.Size(),
		ModTime:   info.ModTime().UTC(),
	}
}
