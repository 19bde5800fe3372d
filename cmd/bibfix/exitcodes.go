package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, write failure)
	ExitConfigError = 2 // Configuration error (malformed config, abbreviation or policy file)
	ExitDataError   = 3 // Data error (input not found, parse failure, missing fields in check)
)
