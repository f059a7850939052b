package domain

import "strings"

// Difficulty is a bitmask over the three problem levels. The zero value means the
// user has not picked anything yet; Any is the union of all levels.
type Difficulty int

const (
	DifficultyNotSet Difficulty = 0
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 4
	DifficultyAny    Difficulty = DifficultyEasy | DifficultyMedium | DifficultyHard
)

// Levels lists the individual difficulty bits in display order.
var Levels = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Add returns d with the given bit set. Adding an already-set bit is a no-op.
func (d Difficulty) Add(level Difficulty) Difficulty {
	return d | level
}

// Remove returns d with the given bit cleared. Removing an unset bit is a no-op.
func (d Difficulty) Remove(level Difficulty) Difficulty {
	return d &^ level
}

// Has reports whether the given bit is set.
func (d Difficulty) Has(level Difficulty) bool {
	return d&level != 0
}

// Matches reports whether d shares at least one level with the mask.
func (d Difficulty) Matches(mask Difficulty) bool {
	return d&mask != 0
}

// IsSet reports whether at least one level is selected.
func (d Difficulty) IsSet() bool {
	return d != DifficultyNotSet
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyNotSet:
		return "Not set"
	case DifficultyAny:
		return "Any"
	}
	var parts []string
	for _, level := range Levels {
		if d.Has(level) {
			parts = append(parts, levelName(level))
		}
	}
	if len(parts) == 0 {
		return "Not set"
	}
	return strings.Join(parts, ", ")
}

func levelName(level Difficulty) string {
	switch level {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return "Unknown"
}

// ParseDifficulty maps a chat label or catalog tag to a single difficulty bit.
func ParseDifficulty(label string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return DifficultyNotSet, false
}
