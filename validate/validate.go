// Command validate provides a small CLI that validates Sokoban level text
// files in the ../levels directory. It checks:
//   - Allowed characters (#, @, $, ., *, +, space)
//   - Exactly one player and matching box/target counts
//   - Connectivity: all boxes and targets share the player's floor region
//   - Static deadlocks: no box starts on a corner or otherwise dead cell
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver/deadlock"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateLevel loads and validates a single level file. It performs
// structural checks, connectivity analysis, and a static deadlock check on
// the start position.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	board, start, err := engine.ParseLevel(string(data))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Parse error: %v", err))
		return result
	}

	if err := engine.ValidateLevel(board, start); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Connectivity validation - boxes and targets must share the player's
	// floor region (ignoring boxes, which can be pushed out of the way)
	reach := engine.Reachable(board, start.Player, nil)
	for _, box := range start.Boxes {
		if !reach[box] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Box at (%d,%d) unreachable from player", box.X, box.Y))
		}
	}
	for _, target := range board.Targets() {
		if !reach[target] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Target at (%d,%d) unreachable from player", target.X, target.Y))
		}
	}

	// Static deadlock check on the start position
	detector := deadlock.NewDetector(board)
	if detector.IsDeadlock(start) {
		result.Valid = false
		result.Errors = append(result.Errors, "Start position is deadlocked: level is unsolvable as given")
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", board.Width, board.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Boxes: %d", len(start.Boxes)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Targets: %d", len(board.Targets())))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Corner cells: %d", len(detector.CornerCells())))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Player: (%d,%d)", start.Player.X, start.Player.Y))
	}

	return result
}

// main scans ../levels for *.txt files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	levelsDir := "../levels"
	files, err := filepath.Glob(filepath.Join(levelsDir, "*.txt"))
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
