package domain

import "math/rand"

// Problem is one selectable catalog item. The catalog is externally sourced and
// treated as a refreshable snapshot; nothing here is persisted.
type Problem struct {
	ID         int
	Title      string
	Slug       string
	Difficulty Difficulty
	Paid       bool
	AcceptRate float64
}

// URL returns the public problem page.
func (p Problem) URL() string {
	return "https://leetcode.com/problems/" + p.Slug
}

// PickProblem selects one problem uniformly at random among those matching the
// difficulty mask and not present in solvedIDs. It returns ErrNoUnseenProblems
// when nothing is available; callers must treat that as a skip, not a failure.
func PickProblem(problems []Problem, mask Difficulty, solvedIDs map[int]struct{}, rng *rand.Rand) (Problem, error) {
	available := make([]Problem, 0, len(problems))
	for _, p := range problems {
		if !p.Difficulty.Matches(mask) {
			continue
		}
		if _, solved := solvedIDs[p.ID]; solved {
			continue
		}
		available = append(available, p)
	}
	if len(available) == 0 {
		return Problem{}, ErrNoUnseenProblems
	}
	return available[rng.Intn(len(available))], nil
}
