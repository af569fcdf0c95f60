// Package kvstore は端末クライアントの永続キーバリューストアを提供する。
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// UserIDKey はプロフィール作成後のuser_idを保存するキー。
const UserIDKey = "cycle.user_id"

// fileName は状態ディレクトリ内の保存ファイル名。
const fileName = "state.json"

// Store はキーバリューの永続化インターフェース。
type Store interface {
	// Get は値を返す。キーが存在しない場合は ok = false。
	Get(key string) (value string, ok bool, err error)
	// Set は値を保存する。
	Set(key, value string) error
}

// stateFile は保存ファイルのJSON構造。
type stateFile struct {
	Values map[string]string `json:"values"`
}

// FileStore はディレクトリ内の1つのJSONファイルに保存するStore。
// 書き込みは一時ファイルへの書き出しとrenameで行い、途中で落ちても壊れたファイルを残さない。
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore はdir配下に保存するFileStoreを生成する。dirがなければ作成する。
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, fileName)}, nil
}

// Path は保存ファイルのパスを返す。
func (s *FileStore) Path() string {
	return s.path
}

// Get はキーの値を返す。ファイルがまだない場合は未設定として扱う。
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := sf.Values[key]
	return v, ok, nil
}

// Set はキーの値を保存する。
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.load()
	if err != nil {
		return err
	}
	if sf.Values == nil {
		sf.Values = make(map[string]string)
	}
	sf.Values[key] = value
	return s.save(sf)
}

func (s *FileStore) load() (stateFile, error) {
	var sf stateFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stateFile{}, nil
		}
		return sf, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("failed to parse state file: %w", err)
	}
	return sf, nil
}

func (s *FileStore) save(sf stateFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// MemoryStore はプロセス内のみで保持するStore。テストや一時利用向け。
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get はキーの値を返す。
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set はキーの値を保存する。
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
