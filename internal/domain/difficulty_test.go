package domain

import "testing"

func TestDifficultyAddRemove(t *testing.T) {
	d := DifficultyNotSet
	d = d.Add(DifficultyEasy)
	d = d.Add(DifficultyHard)
	if !d.Has(DifficultyEasy) || !d.Has(DifficultyHard) || d.Has(DifficultyMedium) {
		t.Fatalf("unexpected bits after adds: %v", d)
	}

	// Adding a set bit and removing an unset bit are both no-ops.
	if d.Add(DifficultyEasy) != d {
		t.Errorf("re-adding Easy changed the mask")
	}
	if d.Remove(DifficultyMedium) != d {
		t.Errorf("removing unset Medium changed the mask")
	}

	d = d.Remove(DifficultyHard)
	if d != DifficultyEasy {
		t.Errorf("after remove, mask = %v, want Easy", d)
	}
}

func TestDifficultyAny(t *testing.T) {
	d := DifficultyNotSet.Add(DifficultyEasy).Add(DifficultyMedium).Add(DifficultyHard)
	if d != DifficultyAny {
		t.Fatalf("union of all levels = %v, want Any", d)
	}
	if d.String() != "Any" {
		t.Errorf("String() = %q, want Any", d.String())
	}
}

func TestDifficultyString(t *testing.T) {
	cases := []struct {
		d    Difficulty
		want string
	}{
		{DifficultyNotSet, "Not set"},
		{DifficultyEasy, "Easy"},
		{DifficultyEasy | DifficultyHard, "Easy, Hard"},
		{DifficultyAny, "Any"},
	}
	for _, tc := range cases {
		if got := tc.d.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestDifficultyMatches(t *testing.T) {
	if !DifficultyMedium.Matches(DifficultyAny) {
		t.Errorf("Medium should match Any")
	}
	if DifficultyMedium.Matches(DifficultyEasy | DifficultyHard) {
		t.Errorf("Medium should not match Easy|Hard")
	}
	if DifficultyMedium.Matches(DifficultyNotSet) {
		t.Errorf("nothing matches an empty mask")
	}
}

func TestParseDifficulty(t *testing.T) {
	for label, want := range map[string]Difficulty{
		"Easy":   DifficultyEasy,
		"medium": DifficultyMedium,
		" Hard ": DifficultyHard,
	} {
		got, ok := ParseDifficulty(label)
		if !ok || got != want {
			t.Errorf("ParseDifficulty(%q) = %v, %v", label, got, ok)
		}
	}
	if _, ok := ParseDifficulty("Impossible"); ok {
		t.Errorf("parsed an unknown label")
	}
}
