package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileArchive implements JobArchive using file system storage
type FileArchive struct {
	archiveDir string
}

// NewFileArchive creates a new file-based job archive
func NewFileArchive(archiveDir string) (*FileArchive, error) {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &FileArchive{archiveDir: archiveDir}, nil
}

// Save persists a finished job record to a JSON file
func (fa *FileArchive) Save(record *ArchivedJob) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	jsonData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}

	filePath := fa.getFilePath(record.ID)
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}

	return nil
}

// Load retrieves an archived job record from a JSON file
func (fa *FileArchive) Load(id string) (*ArchivedJob, error) {
	filePath := fa.getFilePath(id)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, ErrJobNotFound
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var record ArchivedJob
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job record: %w", err)
	}

	return &record, nil
}

// Delete removes an archived job file
func (fa *FileArchive) Delete(id string) error {
	if !fa.Exists(id) {
		return ErrJobNotFound
	}

	if err := os.Remove(fa.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove job file: %w", err)
	}

	return nil
}

// ListAll returns all archived job IDs
func (fa *FileArchive) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fa.archiveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var jobIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			jobIDs = append(jobIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return jobIDs, nil
}

// Exists checks if an archived job file exists
func (fa *FileArchive) Exists(id string) bool {
	_, err := os.Stat(fa.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a job ID
func (fa *FileArchive) getFilePath(id string) string {
	return filepath.Join(fa.archiveDir, fmt.Sprintf("%s.json", id))
}
