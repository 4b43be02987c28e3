package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"asiacup/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV files into the exports directory.
type CSVWriter struct {
	paths     *config.Paths
	bomPrefix bool
	logger    *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. bomPrefix adds a UTF-8 byte
// order mark to every new file for Excel.
func NewCSVWriter(paths *config.Paths, bomPrefix bool, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		paths:     paths,
		bomPrefix: bomPrefix,
		logger:    logger.With(slog.String("component", "csv_writer")),
	}
}

// StreamWriter writes CSV rows to a file one at a time and counts the bytes
// written.
type StreamWriter struct {
	path    string
	file    *os.File
	counter *countingWriter
	writer  *csv.Writer
}

// CreateStreamWriter creates a file in the exports directory and writes the
// header row.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	counter := &countingWriter{w: file}
	if w.bomPrefix {
		if _, err := counter.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(counter)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		path:    fullPath,
		file:    file,
		counter: counter,
		writer:  writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Path returns the absolute path of the file being written.
func (s *StreamWriter) Path() string {
	return s.path
}

// Close flushes and closes the stream writer. It returns the number of bytes
// written to the file.
func (s *StreamWriter) Close() (int64, error) {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return s.counter.n, err
	}
	return s.counter.n, s.file.Close()
}

// resolvePath places relative paths in the exports directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	if w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.ExportsDir, filePath)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
