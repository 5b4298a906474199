package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix    = "user:"
	GroupKeyPrefix   = "group:"
	PostKeyPrefix    = "post:"
	SessionKeyPrefix = "session:"
	ResetKeyPrefix   = "reset:"

	// Secondary indexes
	UsernameIndexPrefix     = "idx:user:username:"
	EmailIndexPrefix        = "idx:user:email:"
	GroupSlugIndexPrefix    = "idx:group:slug:"
	GroupPostsIndexPrefix   = "idx:post:group:"
	AuthorPostsIndexPrefix  = "idx:post:author:"
	UserSessionsIndexPrefix = "idx:session:user:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey  = "seq:user"
	GroupSeqKey = "seq:group"
	PostSeqKey  = "seq:post"
)

// idWidth keeps numeric ids sortable as bytes.
const idWidth = 10

func formatID(id int) string {
	return fmt.Sprintf("%0*d", idWidth, id)
}

func entityKey(prefix string, id int) []byte {
	return []byte(prefix + formatID(id))
}

// trailingID parses the zero-padded id that ends an entity or index key.
func trailingID(key []byte) (int, error) {
	if len(key) < idWidth {
		return 0, fmt.Errorf("key %q too short", key)
	}
	return strconv.Atoi(string(key[len(key)-idWidth:]))
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint32
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence %s: %w", seqKey, err)
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = binary.BigEndian.Uint32(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	idBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idBytes, id)
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return int(id), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads the JSON value stored at key, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// getIndexedID resolves a secondary index key to the id it points at.
func getIndexedID(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		var perr error
		id, perr = strconv.Atoi(string(val))
		return perr
	})
	return id, err
}

// keyExists reports whether key is present in the transaction's view.
func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
