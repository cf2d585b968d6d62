package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	maxRotatingBackups = 10
	documentVersion    = 1
)

var errNoValidBackup = errors.New("no valid backup found")

// Document is the on-disk shape of a FileStore.
type Document struct {
	Version int               `json:"version"`
	Items   map[string]string `json:"items"`
}

// NewDocument returns an empty document.
func NewDocument() Document {
	return Document{Version: documentVersion, Items: map[string]string{}}
}

// FileStore is a KV backed by a single JSON file. Every write is an autosave.
type FileStore struct {
	path string
	doc  Document
}

// OpenFile loads the store at path, recovering from a corrupt file when possible.
// The returned message is non-empty when a recovery happened.
func OpenFile(path string) (*FileStore, string, error) {
	doc, msg, err := LoadWithRecovery(path)
	if err != nil {
		return nil, "", err
	}
	return &FileStore{path: path, doc: doc}, msg, nil
}

// Path is the file the store writes to.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, bool) {
	v, ok := f.doc.Items[key]
	return v, ok
}

func (f *FileStore) Set(items map[string]string) error {
	next := copyDocument(f.doc)
	maps.Copy(next.Items, items)
	if err := Autosave(f.path, next); err != nil {
		return err
	}
	f.doc = next
	return nil
}

func (f *FileStore) Delete(keys ...string) error {
	next := copyDocument(f.doc)
	for _, k := range keys {
		delete(next.Items, k)
	}
	if err := Autosave(f.path, next); err != nil {
		return err
	}
	f.doc = next
	return nil
}

func (f *FileStore) Clear() error {
	next := NewDocument()
	if err := Autosave(f.path, next); err != nil {
		return err
	}
	f.doc = next
	return nil
}

// Keys returns the stored keys that start with prefix.
func (f *FileStore) Keys(prefix string) []string {
	return keysWithPrefix(f.doc.Items, prefix)
}

// Load reads a document from a JSON file.
// If file does not exist, it returns an empty document.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDocument(), nil
		}
		return Document{}, err
	}
	return decodeDocument(data)
}

// LoadWithRecovery loads a document and tries automatic recovery when the main JSON is corrupted.
// It returns an optional status message to be shown to the user.
func LoadWithRecovery(path string) (Document, string, error) {
	doc, err := Load(path)
	if err == nil {
		return doc, "", nil
	}
	if !isCorruptStateError(err) {
		return Document{}, "", err
	}

	corruptPath, moveErr := moveCorruptFile(path)
	if moveErr != nil {
		return Document{}, "", fmt.Errorf("move corrupt file: %w", moveErr)
	}

	recovered, backupPath, backupErr := loadLatestValidBackup(path)
	if backupErr == nil {
		if err := Save(path, recovered); err != nil {
			return Document{}, "", fmt.Errorf("restore backup: %w", err)
		}
		msg := fmt.Sprintf("Corrupt state recovered from %s", filepath.Base(backupPath))
		if corruptPath != "" {
			msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
		}
		return recovered, msg, nil
	}
	if !errors.Is(backupErr, errNoValidBackup) {
		return Document{}, "", fmt.Errorf("inspect backups: %w", backupErr)
	}

	empty := NewDocument()
	if err := Save(path, empty); err != nil {
		return Document{}, "", fmt.Errorf("initialize fresh state after corruption: %w", err)
	}
	msg := "Corrupt state with no valid backup; started fresh"
	if corruptPath != "" {
		msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
	}
	return empty, msg, nil
}

// Save writes a document to path as JSON.
func Save(path string, doc Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Autosave writes safely using temporary file + atomic rename.
// It also stores a latest backup (.bak) and a rotating timestamped backup set.
func Autosave(path string, doc Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if err := backup(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func decodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	if doc.Items == nil {
		doc.Items = map[string]string{}
	}
	if doc.Version == 0 {
		doc.Version = documentVersion
	}
	return doc, nil
}

func copyDocument(doc Document) Document {
	out := Document{Version: doc.Version, Items: make(map[string]string, len(doc.Items))}
	maps.Copy(out.Items, doc.Items)
	return out
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return err
	}

	timestamp := time.Now().UTC().Format("20060102-150405.000000000")
	rotatingPath := fmt.Sprintf("%s.bak.%s", path, timestamp)
	if err := os.WriteFile(rotatingPath, data, 0o644); err != nil {
		return err
	}

	return pruneRotatingBackups(path)
}

func pruneRotatingBackups(path string) error {
	files, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return err
	}
	if len(files) <= maxRotatingBackups {
		return nil
	}

	sort.Strings(files)
	for _, old := range files[:len(files)-maxRotatingBackups] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func loadLatestValidBackup(path string) (Document, string, error) {
	candidates := make([]string, 0, maxRotatingBackups+1)
	latest := path + ".bak"
	if _, err := os.Stat(latest); err == nil {
		candidates = append(candidates, latest)
	}
	rotating, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return Document{}, "", err
	}
	candidates = append(candidates, rotating...)
	if len(candidates) == 0 {
		return Document{}, "", errNoValidBackup
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		iInfo, iErr := os.Stat(candidates[i])
		jInfo, jErr := os.Stat(candidates[j])
		if iErr != nil || jErr != nil {
			return candidates[i] > candidates[j]
		}
		return iInfo.ModTime().After(jInfo.ModTime())
	})

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		doc, err := decodeDocument(data)
		if err != nil {
			continue
		}
		return doc, candidate, nil
	}

	return Document{}, "", errNoValidBackup
}

func moveCorruptFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	timestamp := time.Now().UTC().Format("20060102-150405")
	corruptPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.corrupt-%s%s", name, timestamp, ext))
	if err := os.Rename(path, corruptPath); err != nil {
		return "", err
	}
	return corruptPath, nil
}

func isCorruptStateError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
