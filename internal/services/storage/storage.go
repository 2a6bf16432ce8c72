// Package storage reads and writes plan files that may be sealed with an
// age passphrase.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// EncryptedExt is appended to the name of a sealed plan file
const EncryptedExt = ".age"

// MinPassphraseLength is the shortest passphrase accepted for new files
const MinPassphraseLength = 8

var (
	ErrLocked          = errors.New("storage: file is encrypted but no passphrase is set")
	ErrWrongPassphrase = errors.New("storage: incorrect passphrase")
)

// planExts are the file extensions List recognises as plans
var planExts = []string{".yaml", ".yml"}

// Store gives transparent access to a directory of plan files
type Store struct {
	dir        string
	passphrase string
	mu         sync.RWMutex
}

// New creates a store rooted at dir. The directory need not exist until
// the first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base directory
func (s *Store) Dir() string {
	return s.dir
}

// Unlock sets the passphrase used for encrypted files
func (s *Store) Unlock(passphrase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passphrase = passphrase
}

// Lock forgets the passphrase
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passphrase = ""
}

// IsUnlocked returns true when a passphrase is set
func (s *Store) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passphrase != ""
}

// Path resolves a plan name against the store directory. Absolute paths
// and paths that exist relative to the working directory pass through.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) || s.dir == "" {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(s.dir, name)
}

// ReadFile reads a plan, decrypting it when it is sealed
func (s *Store) ReadFile(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, err
	}
	if !IsEncrypted(data) {
		return data, nil
	}
	if s.passphrase == "" {
		return nil, ErrLocked
	}
	return Decrypt(data, s.passphrase)
}

// WriteFile writes a plan, sealing it when seal is set
func (s *Store) WriteFile(name string, data []byte, seal bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if seal {
		if s.passphrase == "" {
			return ErrLocked
		}
		sealed, err := Encrypt(data, s.passphrase)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = sealed
	}
	return atomicWrite(s.Path(name), data, 0o600)
}

// List returns the plan files in the store directory, sealed or not,
// sorted by name
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(e.Name(), EncryptedExt)))
		if slices.Contains(planExts, ext) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// EncryptFile seals a plain plan in place and renames it with the .age
// suffix. It returns the new path.
func (s *Store) EncryptFile(name string) (string, error) {
	s.mu.RLock()
	passphrase := s.passphrase
	s.mu.RUnlock()
	if passphrase == "" {
		return "", ErrLocked
	}

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if IsEncrypted(data) {
		return "", fmt.Errorf("%s is already encrypted", filepath.Base(path))
	}

	sealed, err := Encrypt(data, passphrase)
	if err != nil {
		return "", err
	}
	dest := path + EncryptedExt
	if err := atomicWrite(dest, sealed, 0o600); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("encrypted copy written but original kept: %w", err)
	}
	return dest, nil
}

// DecryptFile opens a sealed plan in place, dropping the .age suffix. It
// returns the new path.
func (s *Store) DecryptFile(name string) (string, error) {
	s.mu.RLock()
	passphrase := s.passphrase
	s.mu.RUnlock()
	if passphrase == "" {
		return "", ErrLocked
	}

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !IsEncrypted(data) {
		return "", fmt.Errorf("%s is not encrypted", filepath.Base(path))
	}

	plain, err := Decrypt(data, passphrase)
	if err != nil {
		return "", err
	}
	dest := strings.TrimSuffix(path, EncryptedExt)
	if dest == path {
		dest = path + ".plain"
	}
	if err := atomicWrite(dest, plain, 0o600); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("decrypted copy written but original kept: %w", err)
	}
	return dest, nil
}

// atomicWrite writes data through a temp file and rename
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
