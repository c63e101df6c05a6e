package annotate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Record is one (header, documents) pair of an annotation stream
type Record struct {
	Header    string      `yaml:"header"`
	Documents []*Document `yaml:"documents"`
}

// StreamWriter appends records as YAML documents
type StreamWriter struct {
	f   *os.File
	enc *yaml.Encoder
}

// CreateStream creates (or truncates) an annotation stream file
func CreateStream(path string) (*StreamWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create annotation stream: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return &StreamWriter{f: f, enc: enc}, nil
}

// Write appends one record
func (w *StreamWriter) Write(rec Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write annotation record: %w", err)
	}
	return nil
}

// Close flushes and closes the file
func (w *StreamWriter) Close() error {
	return errors.Join(w.enc.Close(), w.f.Close())
}

// StreamReader reads records back in order
type StreamReader struct {
	f   *os.File
	dec *yaml.Decoder
}

// OpenStream opens an annotation stream for reading
func OpenStream(path string) (*StreamReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation stream: %w", err)
	}
	return &StreamReader{f: f, dec: yaml.NewDecoder(f)}, nil
}

// Next returns the next record, or io.EOF at the end of the stream
func (r *StreamReader) Next() (*Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read annotation record: %w", err)
	}
	return &rec, nil
}

// Close closes the file
func (r *StreamReader) Close() error {
	return r.f.Close()
}
