package repositories

import (
	"strconv"
	"strings"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func usernameKey(username string) []byte {
	return []byte(UsernameIndexPrefix + strings.ToLower(username))
}

func emailKey(email string) []byte {
	return []byte(EmailIndexPrefix + strings.ToLower(email))
}

// Create stores a new user. Usernames and non-empty e-mails are unique,
// compared case-insensitively.
func (r *BadgerUserRepository) Create(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, usernameKey(user.Username))
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}
		if user.Email != "" {
			exists, err := keyExists(txn, emailKey(user.Email))
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicate
			}
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		data, err := marshalUser(user)
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(UserKeyPrefix, id), data); err != nil {
			return err
		}
		if err := txn.Set(usernameKey(user.Username), []byte(strconv.Itoa(id))); err != nil {
			return err
		}
		if user.Email != "" {
			return txn.Set(emailKey(user.Email), []byte(strconv.Itoa(id)))
		}
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	return user, err
}

// GetByUsername retrieves a user by exact username. The index is
// case-insensitive, so a differently cased name is not found.
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	user, err := r.getIndexed(usernameKey(username))
	if err != nil {
		return nil, err
	}
	if user.Username != username {
		return nil, ErrNotFound
	}
	return user, nil
}

// UsernameTaken reports whether username is in use, ignoring case
func (r *BadgerUserRepository) UsernameTaken(username string) (bool, error) {
	var taken bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		taken, err = keyExists(txn, usernameKey(username))
		return err
	})
	return taken, err
}

// GetByEmail retrieves a user by e-mail, ignoring case
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	return r.getIndexed(emailKey(email))
}

func (r *BadgerUserRepository) getIndexed(key []byte) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndexedID(txn, key)
		if err != nil {
			return err
		}
		user, err = loadUser(txn, id)
		return err
	})
	return user, err
}

// Update stores changed profile fields and password. The username is fixed at
// creation; a changed e-mail moves its index entry.
func (r *BadgerUserRepository) Update(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := loadUser(txn, user.ID)
		if err != nil {
			return err
		}
		user.Username = existing.Username

		if !strings.EqualFold(existing.Email, user.Email) {
			if user.Email != "" {
				exists, err := keyExists(txn, emailKey(user.Email))
				if err != nil {
					return err
				}
				if exists {
					return ErrDuplicate
				}
				if err := txn.Set(emailKey(user.Email), []byte(strconv.Itoa(user.ID))); err != nil {
					return err
				}
			}
			if existing.Email != "" {
				if err := txn.Delete(emailKey(existing.Email)); err != nil {
					return err
				}
			}
		}

		data, err := marshalUser(user)
		if err != nil {
			return err
		}
		return txn.Set(entityKey(UserKeyPrefix, user.ID), data)
	})
}

// storedUser mirrors models.User with the private fields serialized.
type storedUser struct {
	models.User
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	IsActive     bool   `json:"is_active"`
}

func marshalUser(user *models.User) ([]byte, error) {
	return marshalEntity(storedUser{
		User:         *user,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
	})
}

func loadUser(txn *badger.Txn, id int) (*models.User, error) {
	var stored storedUser
	if err := getEntity(txn, entityKey(UserKeyPrefix, id), &stored); err != nil {
		return nil, err
	}
	user := stored.User
	user.Email = stored.Email
	user.PasswordHash = stored.PasswordHash
	user.IsActive = stored.IsActive
	return &user, nil
}
