package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config racine du stockage des fichiers téléversés
type Config struct {
	Root string
}

// Store stocke les fichiers sous des clés relatives (ex: patients/photos/x.jpg)
type Store interface {
	Save(ctx context.Context, key string, content io.Reader) (string, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

var ErrInvalidKey = errors.New("clé de fichier invalide")

// LocalStore stockage sur disque local
type LocalStore struct {
	root string
}

func NewLocalStore(config *Config) (*LocalStore, error) {
	root := config.Root
	if root == "" {
		root = "storage"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("création racine stockage %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

// Save écrit content sous key et retourne la clé normalisée
func (s *LocalStore) Save(ctx context.Context, key string, content io.Reader) (string, error) {
	path, clean, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("création répertoire: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("création fichier: %w", err)
	}

	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("écriture fichier: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return clean, nil
}

func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	path, _, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete est idempotent : une clé absente n'est pas une erreur
func (s *LocalStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	path, _, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(key, "..") {
		return "", "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), clean, nil
}

var _ Store = (*LocalStore)(nil)
