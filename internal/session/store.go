// Package session persists the logged-in user of the terminal across
// restarts.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/auth"
)

// FileName is the name of the persisted current-user record.
const FileName = "pos_current_user"

// Store persists at most one user.
type Store interface {
	// Load returns nil without error when nothing is stored.
	Load() (*auth.User, error)
	Save(u *auth.User) error
	Clear() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// FileStore keeps the user as a JSON document in a directory.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing FileName under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName)}
}

// Path is the file the store writes.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (*auth.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}
	u, err := DecodeUser(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return u, nil
}

// Save replaces the stored user. The file is written beside the target and
// renamed into place.
func (s *FileStore) Save(u *auth.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if err != nil {
		return errors.Wrap(err, "create temp")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(EncodeUser(u)); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write session")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close session")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "rename session")
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}

// MemoryStore keeps the user in memory.
type MemoryStore struct {
	mu sync.Mutex
	u  *auth.User
}

func (s *MemoryStore) Load() (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.u == nil {
		return nil, nil
	}
	u := *s.u
	return &u, nil
}

func (s *MemoryStore) Save(u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.u = &cp
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.u = nil
	return nil
}

// EncodeUser renders u as {"id","username","role"}.
func EncodeUser(u *auth.User) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(u.ID) })
		e.Field("username", func(e *jx.Encoder) { e.Str(u.Username) })
		e.Field("role", func(e *jx.Encoder) { e.Str(string(u.Role)) })
	})
	return e.Bytes()
}

// ErrInvalidUser is returned for a stored record missing its ID or with an
// unknown role.
var ErrInvalidUser = errors.New("invalid user record")

// DecodeUser parses a record written by EncodeUser. Numeric IDs are
// accepted.
func DecodeUser(data []byte) (*auth.User, error) {
	var u auth.User
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := decodeID(d)
			u.ID = v
			return err
		case "username":
			v, err := d.Str()
			u.Username = v
			return err
		case "role":
			v, err := d.Str()
			u.Role = auth.Role(strings.ToLower(v))
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, err
	}
	if u.ID == "" || !u.Role.Valid() {
		return nil, ErrInvalidUser
	}
	return &u, nil
}

func decodeID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return d.Str()
	}
}
