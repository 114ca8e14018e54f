package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/columnql/query"
)

// maxFiles bounds how many files one glob may load
const maxFiles = 1000

// FileColumn is the attribute tagging rows with their source file when a
// family is loaded from a glob
const FileColumn = "_file"

// Reader reads the rows of one parquet file as entities.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader opens path and validates it as a parquet file
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// ReadAll reads every row into memory
func (r *Reader) ReadAll() ([]query.Entity, error) {
	rows := make([]query.Entity, 0, r.pqFile.NumRows())

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Schema returns the parquet file schema
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// NumRows returns the row count recorded in the file metadata
func (r *Reader) NumRows() int64 {
	return r.pqFile.NumRows()
}

// Close releases the file handle. It is safe to call Close multiple times.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadFiles reads one parquet file, or every file matching a glob pattern.
// Rows read through a glob carry their source path in FileColumn.
func ReadFiles(pattern string) ([]query.Entity, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return readFile(pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}

	var all []query.Entity
	for _, path := range matches {
		rows, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for i := range rows {
			rows[i][FileColumn] = path
		}
		all = append(all, rows...)
	}
	return all, nil
}

func readFile(path string) ([]query.Entity, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}

	rows, readErr := r.ReadAll()
	closeErr := r.Close()
	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	return rows, nil
}

// FamilyName derives a column family name from a file name:
// "data/gods.parquet" becomes "gods"
func FamilyName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
