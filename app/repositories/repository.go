package repositories

import (
	"fmt"
	"io"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Store owns the Badger database and hands out the entity repositories
// that share it.
type Store struct {
	db    *badger.DB
	mutex sync.Mutex
}

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database, which is what the tests use.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{logger.Sugar().Named("badger")}).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Posts() *BadgerPostRepository { return NewBadgerPostRepository(s.db) }

func (s *Store) Groups() *BadgerGroupRepository { return NewBadgerGroupRepository(s.db) }

func (s *Store) Users() *BadgerUserRepository { return NewBadgerUserRepository(s.db) }

func (s *Store) Sessions() *BadgerSessionRepository { return NewBadgerSessionRepository(s.db) }

func (s *Store) ResetTokens() *BadgerResetTokenRepository {
	return NewBadgerResetTokenRepository(s.db)
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// Load restores a backup produced by Backup.
func (s *Store) Load(r io.Reader) (err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// Clear drops every key.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

var (
	_ PostRepository       = (*BadgerPostRepository)(nil)
	_ GroupRepository      = (*BadgerGroupRepository)(nil)
	_ UserRepository       = (*BadgerUserRepository)(nil)
	_ SessionRepository    = (*BadgerSessionRepository)(nil)
	_ ResetTokenRepository = (*BadgerResetTokenRepository)(nil)
)
