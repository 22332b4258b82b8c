package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"icon-studio/internal/composer/models"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage keeps exported artifacts under <root>/<export id>/icon.<ext>.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) ExportDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *FileStorage) ExportPath(id string, format models.Format) string {
	return filepath.Join(s.ExportDir(id), "icon."+string(format))
}

func (s *FileStorage) EnsureDir(id string) error {
	if err := os.MkdirAll(s.ExportDir(id), 0o755); err != nil {
		return fmt.Errorf("mkdir export dir: %w", err)
	}
	return nil
}

// Save writes data as the artifact of export id and returns its path.
func (s *FileStorage) Save(id string, format models.Format, data []byte) (string, error) {
	if err := s.EnsureDir(id); err != nil {
		return "", err
	}
	target := s.ExportPath(id, format)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return target, nil
}

// Remove deletes everything stored for export id.
func (s *FileStorage) Remove(id string) error {
	if err := os.RemoveAll(s.ExportDir(id)); err != nil {
		return fmt.Errorf("remove export: %w", err)
	}
	return nil
}

// Read returns the artifact stored at path, which must lie under the root.
func (s *FileStorage) Read(path string) ([]byte, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("path %q outside export storage", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return data, nil
}
