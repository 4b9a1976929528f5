package usecase

import (
	"context"

	"payfile-synth/internal/domain"
)

// FileStore persists generated files per namespace.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=interface.go FileStore
type FileStore interface {
	Save(ctx context.Context, namespace string, file *domain.GeneratedFile) (domain.StoredFile, error)
	List(ctx context.Context, namespace string) ([]domain.StoredFile, error)
	ReadRows(ctx context.Context, namespace, name string, limit int) ([][]string, error)
}
