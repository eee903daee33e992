package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// JSONFile reads collector output and reads/writes enriched corpora as a JSON array.
type JSONFile struct {
	path string
}

var (
	_ ports.PostSource   = (*JSONFile)(nil)
	_ ports.CorpusSource = (*JSONFile)(nil)
	_ ports.EnrichedSink = (*JSONFile)(nil)
)

// NewJSONFile binds the adapter to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the bound file path.
func (f *JSONFile) Path() string { return f.path }

// LoadPosts decodes a JSON array of posts.
func (f *JSONFile) LoadPosts(_ context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := f.read(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// LoadEnriched decodes a JSON array of enriched posts.
func (f *JSONFile) LoadEnriched(_ context.Context) ([]domain.EnrichedPost, error) {
	var posts []domain.EnrichedPost
	if err := f.read(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// WriteEnriched writes posts with two-space indentation, without HTML escaping.
// The file is replaced atomically.
func (f *JSONFile) WriteEnriched(_ context.Context, posts []domain.EnrichedPost) error {
	if posts == nil {
		posts = []domain.EnrichedPost{}
	}
	raw, err := encodeIndented(posts)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	return writeAtomic(f.path, raw)
}

func (f *JSONFile) read(v any) error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	return nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
