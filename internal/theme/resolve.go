package theme

// Resolve combines the stored preference, the ambient system value and the
// configured default into a single theme.
//
// An explicit light or dark preference always wins. Otherwise the system
// value is used when it is known (valid); the default covers the case where
// the ambient preference cannot be determined. The result is always Light
// or Dark.
func Resolve(pref Preference, system Theme, def Theme) Theme {
	if t, ok := pref.Explicit(); ok {
		return t
	}
	if system.Valid() {
		return system
	}
	if def.Valid() {
		return def
	}
	return Light
}
