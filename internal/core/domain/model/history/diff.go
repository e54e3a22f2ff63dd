package history

// Attribute is one tracked value of an entity rendered for comparison.
type Attribute struct {
	Name      string
	Value     string
	Timestamp bool
}

// Change is a single field transition.
type Change struct {
	Field string
	Old   string
	New   string
}

// Diff returns the changed attributes between two renderings of the same entity.
// Order follows after, then attributes that only exist in before. Timestamp
// attributes and unchanged values are skipped. A nil before describes creation,
// a nil after describes removal.
func Diff(before, after []Attribute) []Change {
	previous := make(map[string]Attribute, len(before))
	for _, attr := range before {
		previous[attr.Name] = attr
	}

	changes := make([]Change, 0)
	seen := make(map[string]struct{}, len(after))
	for _, attr := range after {
		seen[attr.Name] = struct{}{}
		if attr.Timestamp {
			continue
		}
		old := previous[attr.Name]
		if old.Timestamp || old.Value == attr.Value {
			continue
		}
		changes = append(changes, Change{Field: attr.Name, Old: old.Value, New: attr.Value})
	}

	for _, attr := range before {
		if _, ok := seen[attr.Name]; ok || attr.Timestamp || attr.Value == "" {
			continue
		}
		changes = append(changes, Change{Field: attr.Name, Old: attr.Value})
	}

	return changes
}

// Touched reports whether any of the fields appears in changes.
func Touched(changes []Change, fields ...string) bool {
	for _, c := range changes {
		for _, f := range fields {
			if c.Field == f {
				return true
			}
		}
	}
	return false
}
