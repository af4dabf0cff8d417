package diff

// RenameMatcher decides whether a removed member and an added member could
// be the same member under a new name. It must be pure; Members only accepts
// a pairing when it is the single candidate on both sides.
type RenameMatcher func(old, new []string, removed, added string) bool

// Positional matches a removed and an added member that sit at the same
// index with unchanged neighbours (or the list boundary) on both sides.
// This is a conservative heuristic: anything less obvious is left as an
// independent removal plus addition.
func Positional(old, new []string, removed, added string) bool {
	i := indexOf(old, removed)
	if i < 0 || i >= len(new) || new[i] != added {
		return false
	}
	if i > 0 && old[i-1] != new[i-1] {
		return false
	}
	if i+1 < len(old) && i+1 < len(new) && old[i+1] != new[i+1] {
		return false
	}
	// A trailing slot only counts as anchored when both lists end there.
	if (i+1 < len(old)) != (i+1 < len(new)) {
		return false
	}
	return true
}

// NoRenames disables rename detection.
func NoRenames(old, new []string, removed, added string) bool {
	return false
}

// Rename pairs an old member with its new name.
type Rename struct {
	From string
	To   string
}

// Ambiguity records removed/added members that several pairings could
// explain. They are diffed as plain removals and additions.
type Ambiguity struct {
	Removed []string
	Added   []string
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}

// matchRenames pairs removed and added members that match uniquely in both
// directions.
func matchRenames(match RenameMatcher, old, new, removed, added []string) ([]Rename, []Ambiguity) {
	candidates := make(map[string][]string, len(removed))
	reverse := make(map[string][]string, len(added))
	for _, r := range removed {
		for _, a := range added {
			if match(old, new, r, a) {
				candidates[r] = append(candidates[r], a)
				reverse[a] = append(reverse[a], r)
			}
		}
	}

	var renames []Rename
	var ambiguous []Ambiguity
	reported := make(map[string]bool)
	for _, r := range removed {
		c := candidates[r]
		switch {
		case len(c) == 0:
		case len(c) == 1 && len(reverse[c[0]]) == 1:
			renames = append(renames, Rename{From: r, To: c[0]})
		default:
			if reported[r] {
				continue
			}
			amb := Ambiguity{Added: c}
			for _, a := range c {
				for _, other := range reverse[a] {
					if !reported[other] {
						reported[other] = true
						amb.Removed = append(amb.Removed, other)
					}
				}
			}
			ambiguous = append(ambiguous, amb)
		}
	}
	return renames, ambiguous
}
