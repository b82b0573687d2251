package ir

// Version constants.
const (
	// CursorVersion is the cursor token layout version. Tokens carrying a
	// different version are rejected.
	CursorVersion = 1

	// Version is the pagewin release version.
	Version = "0.1.0"
)
