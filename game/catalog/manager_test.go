package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const classicText = `#######
#     #
# $.  #
#  .$ #
#  @  #
#######
`

const onePushText = `#####
#   #
# @ #
# $ #
# . #
#####
`

func createTestCatalog(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	writeTestLevel(t, dir, "classic.txt", classicText)
	writeTestLevel(t, dir, "one_push.txt", onePushText)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return m, dir
}

func writeTestLevel(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
}

func TestNewManager_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := NewManager(missing); err == nil {
		t.Fatalf("Expected error for missing levels directory")
	}
}

func TestNewManager_DefaultsToClassic(t *testing.T) {
	m, _ := createTestCatalog(t)

	def := m.GetDefault()
	if def == nil {
		t.Fatalf("Expected a default level")
	}
	if def.ID != "classic" {
		t.Errorf("Expected default level classic, got %s", def.ID)
	}
}

func TestNewManager_BuiltInFallback(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	def := m.GetDefault()
	if def == nil {
		t.Fatalf("Expected a built-in default level")
	}
	if len(def.Start.Boxes) != 2 {
		t.Errorf("Expected 2 boxes in the built-in level, got %d", len(def.Start.Boxes))
	}
}

func TestLoadLevel(t *testing.T) {
	m, _ := createTestCatalog(t)

	level, err := m.LoadLevel("one_push")
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	if level.ID != "one_push" {
		t.Errorf("Expected level ID one_push, got %s", level.ID)
	}
	if level.Board.Width != 5 || level.Board.Height != 6 {
		t.Errorf("Expected 5x6 board, got %dx%d", level.Board.Width, level.Board.Height)
	}
	if len(level.Start.Boxes) != 1 {
		t.Errorf("Expected 1 box, got %d", len(level.Start.Boxes))
	}
}

func TestLoadLevel_Cached(t *testing.T) {
	m, dir := createTestCatalog(t)

	if _, err := m.LoadLevel("one_push"); err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}

	// removing the file does not evict the cached copy
	if err := os.Remove(filepath.Join(dir, "one_push.txt")); err != nil {
		t.Fatalf("Failed to remove level file: %v", err)
	}
	if _, err := m.LoadLevel("one_push"); err != nil {
		t.Errorf("Expected cached level load to succeed, got %v", err)
	}
}

func TestLoadLevel_NotFound(t *testing.T) {
	m, _ := createTestCatalog(t)

	if _, err := m.LoadLevel("nope"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestLoadLevel_Invalid(t *testing.T) {
	m, dir := createTestCatalog(t)
	writeTestLevel(t, dir, "broken.txt", "this is not a level")

	if _, err := m.LoadLevel("broken"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Expected ErrInvalidLevel, got %v", err)
	}
}

func TestListLevels(t *testing.T) {
	m, dir := createTestCatalog(t)
	writeTestLevel(t, dir, "broken.txt", "garbage")
	writeTestLevel(t, dir, "notes.md", "not a level file")

	levels, err := m.ListLevels()
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(levels))
	}
	byID := make(map[string]bool)
	for _, info := range levels {
		byID[info.LevelID] = true
		if info.Boxes != info.Targets {
			t.Errorf("Expected matching boxes and targets for %s", info.LevelID)
		}
	}
	if !byID["classic"] || !byID["one_push"] {
		t.Errorf("Expected classic and one_push in the listing, got %v", byID)
	}
}

func TestSaveLevel(t *testing.T) {
	m, dir := createTestCatalog(t)

	if err := m.SaveLevel("corridor", "#######\n#@$  .#\n#######"); err != nil {
		t.Fatalf("Failed to save level: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "corridor.txt")); err != nil {
		t.Errorf("Expected level file on disk: %v", err)
	}

	level, err := m.LoadLevel("corridor")
	if err != nil {
		t.Fatalf("Failed to load saved level: %v", err)
	}
	if level.Board.Width != 7 {
		t.Errorf("Expected width 7, got %d", level.Board.Width)
	}
}

func TestSaveLevel_Invalid(t *testing.T) {
	m, _ := createTestCatalog(t)

	if err := m.SaveLevel("bad", "no walls here"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Expected ErrInvalidLevel, got %v", err)
	}
}

func TestSetDefault(t *testing.T) {
	m, _ := createTestCatalog(t)

	if err := m.SetDefault("one_push"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if got := m.GetDefault().ID; got != "one_push" {
		t.Errorf("Expected default one_push, got %s", got)
	}

	if err := m.SetDefault("nope"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestRefreshCache(t *testing.T) {
	m, dir := createTestCatalog(t)

	if _, err := m.LoadLevel("one_push"); err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	writeTestLevel(t, dir, "one_push.txt", "#######\n#@$  .#\n#######\n")

	if err := m.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}
	level, err := m.LoadLevel("one_push")
	if err != nil {
		t.Fatalf("Failed to reload level: %v", err)
	}
	if level.Board.Width != 7 {
		t.Errorf("Expected refreshed width 7, got %d", level.Board.Width)
	}
}
