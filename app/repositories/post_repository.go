package repositories

import (
	"errors"
	"fmt"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func groupPostKey(groupID, postID int) []byte {
	return []byte(GroupPostsIndexPrefix + formatID(groupID) + ":" + formatID(postID))
}

func authorPostKey(authorID, postID int) []byte {
	return []byte(AuthorPostsIndexPrefix + formatID(authorID) + ":" + formatID(postID))
}

// Create creates a new post and its index entries
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		post.BeforeCreate()

		data, err := marshalEntity(stripPostRelations(post))
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(PostKeyPrefix, post.ID), data); err != nil {
			return err
		}
		if err := txn.Set(authorPostKey(post.AuthorID, post.ID), nil); err != nil {
			return err
		}
		if post.GroupID > 0 {
			return txn.Set(groupPostKey(post.GroupID, post.ID), nil)
		}
		return nil
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update stores the new text and group of an existing post. The author and
// publication date of the stored post are kept.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, entityKey(PostKeyPrefix, post.ID), &existing); err != nil {
			return err
		}

		if existing.GroupID != post.GroupID {
			if existing.GroupID > 0 {
				if err := txn.Delete(groupPostKey(existing.GroupID, post.ID)); err != nil {
					return err
				}
			}
			if post.GroupID > 0 {
				if err := txn.Set(groupPostKey(post.GroupID, post.ID), nil); err != nil {
					return err
				}
			}
		}

		existing.Text = post.Text
		existing.GroupID = post.GroupID
		post.AuthorID = existing.AuthorID
		post.PubDate = existing.PubDate

		data, err := marshalEntity(&existing)
		if err != nil {
			return err
		}
		return txn.Set(entityKey(PostKeyPrefix, post.ID), data)
	})
}

// Count returns the number of posts matching the filter
func (r *BadgerPostRepository) Count(filter PostFilter) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPostIDs(txn, filter, func(int) (bool, error) {
			count++
			return true, nil
		})
	})
	return count, err
}

// List retrieves a page of posts matching the filter, newest first
func (r *BadgerPostRepository) List(filter PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if limit <= 0 {
		return posts, nil
	}
	err := r.db.View(func(txn *badger.Txn) error {
		skipped := 0
		return scanPostIDs(txn, filter, func(id int) (bool, error) {
			if skipped < offset {
				skipped++
				return true, nil
			}
			var post models.Post
			if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
				return false, fmt.Errorf("failed to load post %d: %w", id, err)
			}
			posts = append(posts, &post)
			return len(posts) < limit, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// scanPostIDs walks matching post ids in descending order until fn returns false.
func scanPostIDs(txn *badger.Txn, filter PostFilter, fn func(id int) (bool, error)) error {
	var prefix []byte
	switch {
	case filter.AuthorID > 0:
		prefix = []byte(AuthorPostsIndexPrefix + formatID(filter.AuthorID) + ":")
	case filter.GroupID > 0:
		prefix = []byte(GroupPostsIndexPrefix + formatID(filter.GroupID) + ":")
	default:
		prefix = []byte(PostKeyPrefix)
	}
	// Author index entries carry no group, so a combined filter checks membership.
	checkGroup := filter.AuthorID > 0 && filter.GroupID > 0

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	seekKey := append(append([]byte{}, prefix...), 0xFF)
	for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
		id, err := trailingID(it.Item().Key())
		if err != nil {
			return err
		}
		if checkGroup {
			_, err := txn.Get(groupPostKey(filter.GroupID, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
		}
		more, err := fn(id)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// stripPostRelations drops the populated author and group before storage.
func stripPostRelations(post *models.Post) *models.Post {
	stored := *post
	stored.Author = nil
	stored.Group = nil
	return &stored
}
