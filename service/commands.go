package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ErrCancelled is returned when the user declines a destructive operation.
var ErrCancelled = errors.New("operation cancelled")

// InitDB initializes a new empty database.
func InitDB(dbPath string, logger *zap.Logger, console Console) error {
	if _, err := os.Stat(dbPath); err == nil {
		console.printf("Database already exists. Use 'clean' first if you want to reinitialize.\n")
		return nil
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := openStore(dbPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Close(); err != nil {
		return err
	}

	console.printf("Database initialized successfully\n")
	return nil
}

// CleanDB removes the database. Unless force is set the user is asked first.
func CleanDB(dbPath string, force bool, console Console) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		console.printf("Database is already clean (does not exist)\n")
		return nil
	}
	if !force && !console.confirm("Are you sure you want to clean the database? This cannot be undone.") {
		console.printf("Operation cancelled\n")
		return ErrCancelled
	}
	if err := os.RemoveAll(dbPath); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	console.printf("Database cleaned successfully\n")
	return nil
}

// BackupDB writes a full backup of the database into backupDir and
// returns the backup file path.
func BackupDB(dbPath, backupDir string, logger *zap.Logger, console Console) (string, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		console.printf("No database exists to backup\n")
		return "", fmt.Errorf("database %s does not exist", dbPath)
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	store, err := openStore(dbPath, logger)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	console.printf("Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// RestoreDB replaces the database with the contents of backupFile.
// Unless force is set the user is asked before an existing database is
// replaced.
func RestoreDB(dbPath, backupFile string, force bool, logger *zap.Logger, console Console) error {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		console.printf("Backup file does not exist: %s\n", backupFile)
		return fmt.Errorf("backup file %s does not exist", backupFile)
	}
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		console.printf("Backup file is empty: %s\n", backupFile)
		return fmt.Errorf("backup file %s is empty", backupFile)
	}

	_, statErr := os.Stat(dbPath)
	existing := statErr == nil
	if existing && !force && !console.confirm("Existing database found. Do you want to replace it?") {
		console.printf("Operation cancelled\n")
		return ErrCancelled
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := openStore(dbPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if existing {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear existing database: %w", err)
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := store.Load(f); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	console.printf("Database restored successfully\n")
	return nil
}
