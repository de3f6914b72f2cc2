package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// defaultLevelText is the built-in fallback level: a small open room with
// two boxes one push away from their targets.
const defaultLevelText = `#######
#     #
# $.  #
#  .$ #
#  @  #
#######
`

// Manager handles level loading and caching
type Manager struct {
	levelsDir    string
	defaultLevel *service.Level
	levels       map[string]*service.Level
	mu           sync.RWMutex
}

// NewManager creates a new level catalog manager
func NewManager(levelsDir string) (*Manager, error) {
	if _, err := os.Stat(levelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", levelsDir)
	}

	m := &Manager{
		levelsDir: levelsDir,
		levels:    make(map[string]*service.Level),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level by name
func (m *Manager) LoadLevel(name string) (*service.Level, error) {
	m.mu.RLock()
	if level, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[name]; exists {
		return level, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".txt") {
		filename = name + ".txt"
	}

	levelPath := filepath.Join(m.levelsDir, filename)
	data, err := os.ReadFile(levelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	level, err := parseLevel(name, string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	m.levels[name] = level
	return level, nil
}

// ListLevels returns information about all available levels
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var levels []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".txt")
		level, err := m.LoadLevel(name)
		if err != nil {
			// Skip invalid levels
			continue
		}

		levels = append(levels, &service.LevelInfo{
			Filename: entry.Name(),
			LevelID:  name,
			Width:    level.Board.Width,
			Height:   level.Board.Height,
			Boxes:    len(level.Start.Boxes),
			Targets:  len(level.Board.Targets()),
		})
	}

	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *service.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	level, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
	return nil
}

// SaveLevel validates and writes a level to disk
func (m *Manager) SaveLevel(name, text string) error {
	level, err := parseLevel(name, text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".txt") {
		filename = name + ".txt"
	}

	levelPath := filepath.Join(m.levelsDir, filename)
	if err := os.WriteFile(levelPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[name] = level
	m.mu.Unlock()

	return nil
}

// RefreshCache reloads all cached levels from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*service.Level)
	m.mu.Unlock()

	return m.loadDefaultLevel()
}

// loadDefaultLevel picks "classic" when present, otherwise the first
// available level, otherwise the built-in minimal level. Called without
// the lock held; LoadLevel locks internally.
func (m *Manager) loadDefaultLevel() error {
	level, err := m.LoadLevel("classic")
	if err != nil {
		levels, listErr := m.ListLevels()
		if listErr == nil && len(levels) > 0 {
			level, err = m.LoadLevel(levels[0].LevelID)
		}
		if level == nil || err != nil {
			level = createMinimalLevel()
		}
	}

	m.mu.Lock()
	m.defaultLevel = level
	m.mu.Unlock()
	return nil
}

// parseLevel parses and validates a level text into a catalog entry.
func parseLevel(name, text string) (*service.Level, error) {
	board, start, err := engine.ParseLevel(text)
	if err != nil {
		return nil, err
	}
	return &service.Level{
		ID:    name,
		Name:  name,
		Text:  text,
		Board: board,
		Start: start,
	}, nil
}

// createMinimalLevel builds the built-in fallback level.
func createMinimalLevel() *service.Level {
	level, err := parseLevel("default", defaultLevelText)
	if err != nil {
		// the built-in text is a constant; failing to parse it is a bug
		panic(fmt.Sprintf("built-in default level is invalid: %v", err))
	}
	return level
}
