package repositories

import (
	"errors"
	"time"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerSessionRepository implements SessionRepository using BadgerDB
// entries whose TTL matches the session lifetime.
type BadgerSessionRepository struct {
	db *badger.DB
}

// NewBadgerSessionRepository creates a new BadgerSessionRepository
func NewBadgerSessionRepository(db *badger.DB) *BadgerSessionRepository {
	return &BadgerSessionRepository{db: db}
}

func userSessionsPrefix(userID int) string {
	return UserSessionsIndexPrefix + formatID(userID) + ":"
}

// Create stores the session until ttl elapses
func (r *BadgerSessionRepository) Create(session *models.Session, ttl time.Duration) error {
	data, err := marshalEntity(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(SessionKeyPrefix+session.Token), data).WithTTL(ttl)
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		index := badger.NewEntry([]byte(userSessionsPrefix(session.UserID)+session.Token), nil).WithTTL(ttl)
		return txn.SetEntry(index)
	})
}

// Get retrieves a live session by token
func (r *BadgerSessionRepository) Get(token string) (*models.Session, error) {
	var session models.Session
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, []byte(SessionKeyPrefix+token), &session)
	})
	if err != nil {
		return nil, err
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// Delete removes a session; deleting an unknown token is not an error
func (r *BadgerSessionRepository) Delete(token string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var session models.Session
		err := getEntity(txn, []byte(SessionKeyPrefix+token), &session)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(userSessionsPrefix(session.UserID) + token)); err != nil {
			return err
		}
		return txn.Delete([]byte(SessionKeyPrefix + token))
	})
}

// DeleteForUser removes every session of userID except keep
func (r *BadgerSessionRepository) DeleteForUser(userID int, keep string) error {
	prefix := []byte(userSessionsPrefix(userID))
	return r.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			token := string(key[len(prefix):])
			if token == keep {
				continue
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete([]byte(SessionKeyPrefix + token)); err != nil {
				return err
			}
		}
		return nil
	})
}

// BadgerResetTokenRepository implements ResetTokenRepository using BadgerDB
type BadgerResetTokenRepository struct {
	db *badger.DB
}

// NewBadgerResetTokenRepository creates a new BadgerResetTokenRepository
func NewBadgerResetTokenRepository(db *badger.DB) *BadgerResetTokenRepository {
	return &BadgerResetTokenRepository{db: db}
}

// Create stores a reset token until ttl elapses
func (r *BadgerResetTokenRepository) Create(token *models.ResetToken, ttl time.Duration) error {
	data, err := marshalEntity(token)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(ResetKeyPrefix+token.Token), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Get returns a live token without using it up
func (r *BadgerResetTokenRepository) Get(token string) (*models.ResetToken, error) {
	var stored models.ResetToken
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, []byte(ResetKeyPrefix+token), &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Consume returns the token and deletes it in the same transaction
func (r *BadgerResetTokenRepository) Consume(token string) (*models.ResetToken, error) {
	var stored models.ResetToken
	err := r.db.Update(func(txn *badger.Txn) error {
		key := []byte(ResetKeyPrefix + token)
		if err := getEntity(txn, key, &stored); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
