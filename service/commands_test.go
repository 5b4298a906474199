package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConsole(input string) (Console, *bytes.Buffer) {
	var out bytes.Buffer
	return Console{In: strings.NewReader(input), Out: &out}, &out
}

func TestInitDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "badger")

	console, out := testConsole("")
	require.NoError(t, InitDB(dbPath, zap.NewNop(), console))
	assert.Contains(t, out.String(), "Database initialized successfully")
	assert.DirExists(t, dbPath)

	console, out = testConsole("")
	require.NoError(t, InitDB(dbPath, zap.NewNop(), console))
	assert.Contains(t, out.String(), "Database already exists")
}

func TestCleanDB(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		force      bool
		wantErr    error
		wantOutput string
		wantExists bool
	}{
		{"declined", "n\n", false, ErrCancelled, "Operation cancelled", true},
		{"confirmed", "y\n", false, nil, "Database cleaned successfully", false},
		{"forced", "", true, nil, "Database cleaned successfully", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "badger")
			require.NoError(t, InitDB(dbPath, zap.NewNop(), Console{Out: &bytes.Buffer{}}))

			console, out := testConsole(tt.input)
			err := CleanDB(dbPath, tt.force, console)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.wantOutput)
			_, statErr := os.Stat(dbPath)
			assert.Equal(t, tt.wantExists, statErr == nil)
		})
	}

	t.Run("missing database", func(t *testing.T) {
		console, out := testConsole("")
		require.NoError(t, CleanDB(filepath.Join(t.TempDir(), "nope"), false, console))
		assert.Contains(t, out.String(), "already clean")
	})
}

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "badger")
	backupDir := filepath.Join(dir, "backups")
	logger := zap.NewNop()

	store, err := repositories.Open(dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, store.Groups().Create(&models.Group{Title: "Cats", Slug: "cats"}))
	require.NoError(t, store.Close())

	console, out := testConsole("")
	backupFile, err := BackupDB(dbPath, backupDir, logger, console)
	require.NoError(t, err)
	assert.FileExists(t, backupFile)
	assert.Contains(t, out.String(), "Database backed up successfully")

	t.Run("declined restore keeps database", func(t *testing.T) {
		console, _ := testConsole("n\n")
		assert.ErrorIs(t, RestoreDB(dbPath, backupFile, false, logger, console), ErrCancelled)
	})

	t.Run("restore into fresh path", func(t *testing.T) {
		restored := filepath.Join(dir, "restored")
		console, out := testConsole("")
		require.NoError(t, RestoreDB(restored, backupFile, false, logger, console))
		assert.Contains(t, out.String(), "Database restored successfully")

		store, err := repositories.Open(restored, logger)
		require.NoError(t, err)
		defer store.Close()
		group, err := store.Groups().GetBySlug("cats")
		require.NoError(t, err)
		assert.Equal(t, "Cats", group.Title)
	})

	t.Run("forced restore over existing", func(t *testing.T) {
		store, err := repositories.Open(dbPath, logger)
		require.NoError(t, err)
		require.NoError(t, store.Groups().Create(&models.Group{Title: "Dogs", Slug: "dogs"}))
		require.NoError(t, store.Close())

		console, _ := testConsole("")
		require.NoError(t, RestoreDB(dbPath, backupFile, true, logger, console))

		store, err = repositories.Open(dbPath, logger)
		require.NoError(t, err)
		defer store.Close()
		_, err = store.Groups().GetBySlug("dogs")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		group, err := store.Groups().GetBySlug("cats")
		require.NoError(t, err)
		assert.Equal(t, "Cats", group.Title)
	})

	t.Run("missing backup file", func(t *testing.T) {
		console, out := testConsole("")
		assert.Error(t, RestoreDB(dbPath, filepath.Join(dir, "none.db"), true, logger, console))
		assert.Contains(t, out.String(), "Backup file does not exist")
	})

	t.Run("empty backup file", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0644))
		console, out := testConsole("")
		assert.Error(t, RestoreDB(dbPath, empty, true, logger, console))
		assert.Contains(t, out.String(), "Backup file is empty")
	})

	t.Run("backup of missing database", func(t *testing.T) {
		console, _ := testConsole("")
		_, err := BackupDB(filepath.Join(dir, "missing"), backupDir, logger, console)
		assert.Error(t, err)
	})
}

func TestGroupCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "badger")
	logger := zap.NewNop()

	console, out := testConsole("")
	require.NoError(t, ListGroups(dbPath, logger, console))
	assert.Contains(t, out.String(), "No groups")

	console, out = testConsole("")
	require.NoError(t, CreateGroup(dbPath, "Котики", "cats", "Всё о котиках", logger, console))
	assert.Contains(t, out.String(), `Group "cats" created with id 1`)

	console, _ = testConsole("")
	assert.Error(t, CreateGroup(dbPath, "Again", "cats", "", logger, console))
	assert.Error(t, CreateGroup(dbPath, "Bad", "Not A Slug", "", logger, console))

	console, out = testConsole("")
	require.NoError(t, ListGroups(dbPath, logger, console))
	assert.Contains(t, out.String(), "SLUG")
	assert.Contains(t, out.String(), "cats")
	assert.Contains(t, out.String(), "Котики")
}
