package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"payfile-synth/internal/calendar"
	"payfile-synth/internal/domain"
	"payfile-synth/internal/format"
	"payfile-synth/internal/generator"
	"payfile-synth/internal/logger"
	"payfile-synth/internal/metadata"
	"payfile-synth/internal/rules"
)

// DefaultPreviewRows is the number of rows PreviewFile returns when the
// caller does not ask for a limit.
const DefaultPreviewRows = 20

// GenerationUseCase orchestrates the generation pipeline: validate, pick the
// format adapter, assemble rows, serialize, derive metadata and filename.
type GenerationUseCase struct {
	store     FileStore
	registry  *format.Registry
	calendar  *calendar.Calendar
	validator *rules.Validator
	log       *logrus.Entry
	now       func() time.Time
	newSource func() generator.Source
	maxRows   int
}

// Option customises a GenerationUseCase.
type Option func(*GenerationUseCase)

// WithClock replaces the wall clock used for "today" and filenames.
func WithClock(now func() time.Time) Option {
	return func(uc *GenerationUseCase) { uc.now = now }
}

// WithSeed makes every generation draw from a source seeded with seed.
func WithSeed(seed int64) Option {
	return func(uc *GenerationUseCase) {
		uc.newSource = func() generator.Source { return generator.NewSource(seed) }
	}
}

// WithRegistry replaces the built-in format registry.
func WithRegistry(r *format.Registry) Option {
	return func(uc *GenerationUseCase) { uc.registry = r }
}

// WithCalendar replaces the built-in working-day calendar.
func WithCalendar(c *calendar.Calendar) Option {
	return func(uc *GenerationUseCase) { uc.calendar = c }
}

// WithMaxRows rejects requests above n rows; 0 means unbounded.
func WithMaxRows(n int) Option {
	return func(uc *GenerationUseCase) { uc.maxRows = n }
}

// NewGenerationUseCase creates a new instance of the usecase.
func NewGenerationUseCase(store FileStore, log *logger.Logger, opts ...Option) (*GenerationUseCase, error) {
	validator, err := rules.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("could not compile cross-field rules: %w", err)
	}
	uc := &GenerationUseCase{
		store:     store,
		registry:  format.DefaultRegistry(),
		calendar:  calendar.New(),
		validator: validator,
		log:       log.WithComponent("generation"),
		now:       time.Now,
		newSource: func() generator.Source { return generator.NewSource(0) },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// Formats describes every registered format.
func (uc *GenerationUseCase) Formats() []format.Info {
	adapters := uc.registry.All()
	out := make([]format.Info, len(adapters))
	for i, a := range adapters {
		out[i] = a.Info()
	}
	return out
}

// Generate synthesizes one file in memory.
func (uc *GenerationUseCase) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if uc.maxRows > 0 && req.RowCount > uc.maxRows {
		return nil, fmt.Errorf("%w: rowCount %d exceeds the maximum of %d", domain.ErrInvalidRequest, req.RowCount, uc.maxRows)
	}

	adapter, err := uc.registry.Lookup(req.Format)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	asm := generator.NewAssembler(uc.newSource(), uc.calendar, calendar.Day(now), uc.validator)
	batch, err := adapter.BuildRows(req, asm)
	if err != nil {
		return nil, fmt.Errorf("could not build %s rows: %w", req.Format, err)
	}

	meta := adapter.Meta(batch, req)
	file := &domain.GeneratedFile{
		Content:  adapter.Serialize(batch, req),
		Filename: metadata.Filename(req.Format, meta, now),
		Meta:     meta,
	}

	uc.log.WithFields(logrus.Fields{
		"format":      req.Format,
		"filename":    file.Filename,
		"rows":        meta.RowCount,
		"columns":     meta.ColumnCount,
		"invalidRows": meta.InvalidRowCount,
	}).Info("generated payment file")
	return file, nil
}

// GenerateAndStore generates a file and hands it to the store under namespace.
func (uc *GenerationUseCase) GenerateAndStore(ctx context.Context, req domain.GenerationRequest, namespace string) (*domain.GeneratedFile, domain.StoredFile, error) {
	file, err := uc.Generate(ctx, req)
	if err != nil {
		return nil, domain.StoredFile{}, err
	}

	stored, err := uc.store.Save(ctx, namespace, file)
	if err != nil {
		return nil, domain.StoredFile{}, fmt.Errorf("could not store %s: %w", file.Filename, err)
	}

	uc.log.WithFields(logrus.Fields{
		"namespace": namespace,
		"path":      stored.Path,
		"size":      stored.Size,
	}).Debug("stored payment file")
	return file, stored, nil
}

// ListFiles lists the stored files of a namespace.
func (uc *GenerationUseCase) ListFiles(ctx context.Context, namespace string) ([]domain.StoredFile, error) {
	files, err := uc.store.List(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("could not list files of %s: %w", namespace, err)
	}
	return files, nil
}

// PreviewFile returns the first rows of a stored file.
func (uc *GenerationUseCase) PreviewFile(ctx context.Context, namespace, name string, limit int) ([][]string, error) {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	rows, err := uc.store.ReadRows(ctx, namespace, name, limit)
	if err != nil {
		return nil, fmt.Errorf("could not preview %s/%s: %w", namespace, name, err)
	}
	return rows, nil
}
