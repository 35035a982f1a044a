package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aluiziolira/go-scrape-offers/models"
)

// JSONWriter writes the record as indented JSON, replacing the file.
type JSONWriter struct {
	path    string
	written bool
	mu      sync.Mutex
}

// NewJSONWriter prepares a JSON writer. The file is only created on Write.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if filename == "" {
		return nil, fmt.Errorf("json output path cannot be empty")
	}
	return &JSONWriter{path: filename}, nil
}

// Write replaces the output file with record.
func (jw *JSONWriter) Write(record models.Record) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	err := replaceFile(jw.path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	jw.written = true
	return nil
}

// Close is a no-op; every Write leaves a complete file behind.
func (jw *JSONWriter) Close() error {
	return nil
}

// Validate ensures a record was written and the file has data.
func (jw *JSONWriter) Validate() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return validateFile("json", jw.path, jw.written)
}

// CSVWriter writes the record as a header plus one row, replacing the file.
type CSVWriter struct {
	path    string
	written bool
	mu      sync.Mutex
}

// NewCSVWriter prepares a CSV writer. The file is only created on Write.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if filename == "" {
		return nil, fmt.Errorf("csv output path cannot be empty")
	}
	return &CSVWriter{path: filename}, nil
}

// Write replaces the output file with record.
func (cw *CSVWriter) Write(record models.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	err := replaceFile(cw.path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write([]string{"keyword", "price", "link"}); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		row := []string{record.Keyword, strconv.Itoa(record.Price), record.Link}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("flush csv record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cw.written = true
	return nil
}

// Close is a no-op; every Write leaves a complete file behind.
func (cw *CSVWriter) Close() error {
	return nil
}

// Validate ensures a record was written and the file has data.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return validateFile("csv", cw.path, cw.written)
}

// replaceFile writes through a temporary file in the destination directory
// and renames it over filename.
func replaceFile(filename string, write func(io.Writer) error) error {
	if err := ensureDir(filename); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("replace %q: %w", filename, err)
	}
	return nil
}

func validateFile(kind, filename string, written bool) error {
	if !written {
		return fmt.Errorf("%s file was never written", kind)
	}
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("stat %s file: %w", kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", kind)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
