package gateway

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"payfile-synth/internal/domain"
)

// ReadRows reads back up to limit rows of a stored file; limit <= 0 reads
// everything. CSV files are split into fields with a variable field count;
// any other file is returned one line per row.
func (s *LocalFileStore) ReadRows(ctx context.Context, namespace, name string, limit int) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.filePath(namespace, name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrFileNotFound, namespace, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return readCSVRows(file, path, limit)
	}
	return readLines(file, path, limit)
}

func readCSVRows(r io.Reader, path string, limit int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows := make([][]string, 0)
	for limit <= 0 || len(rows) < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readLines(r io.Reader, path string, limit int) ([][]string, error) {
	scanner := bufio.NewScanner(r)

	rows := make([][]string, 0)
	for (limit <= 0 || len(rows) < limit) && scanner.Scan() {
		rows = append(rows, []string{scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading line from %s: %w", path, err)
	}
	return rows, nil
}
