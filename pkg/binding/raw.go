package binding

// Raw is a string extracted from step text or looked up in a projection map.
// Valid is false when nothing was extracted, which is different from an empty
// capture.
type Raw struct {
	Value string
	Valid bool
}

// Present returns a valid Raw holding s.
func Present(s string) Raw {
	return Raw{Value: s, Valid: true}
}

// String returns the value, or "<nil>" when the Raw is absent.
func (r Raw) String() string {
	if !r.Valid {
		return "<nil>"
	}
	return r.Value
}

// Values returns the valid entries of raws as plain strings, replacing absent
// ones with the empty string.
func Values(raws []Raw) []string {
	values := make([]string, len(raws))
	for i, r := range raws {
		values[i] = r.Value
	}
	return values
}
