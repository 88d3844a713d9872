package ir

// Version constants for the storage format and the binary.
const (
	// FormatVersion is the version of the stored table and row encoding.
	// It changes whenever marshalled bytes would differ for the same input.
	FormatVersion = "1"

	// EngineVersion is the sumdb release.
	EngineVersion = "0.1.0"
)
