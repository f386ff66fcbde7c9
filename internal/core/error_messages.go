package core

// error_messages.go maps technical errors to user-facing messages with codes
// that operators can quote to support.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Column unavailable: a requested dimension has no column
//	         Action: Check the export contains the card and cashier columns
//	         Patterns: "schema unavailable"
//
//	SCH002 - Not an entity: lookups work on cards and cashiers only
//	         Action: Use role "card" or "cashier"
//	         Patterns: "is not an entity", "unknown role"
//
// # Entity Errors (ENT001-ENT099)
//
//	ENT001 - Entity not found: no transaction carries the identifier
//	         Action: Check the card number or cashier name
//	         Patterns: "no transactions found for"
//
// # Encryption Errors (ENC001-ENC099)
//
//	ENC001 - Encryption failed: every backend failed
//	         Action: Run again without encryption or contact support
//	         Patterns: "all encryption backends failed"
//
//	ENC002 - Wrong password: a protected file could not be opened
//	         Action: Check the password recorded for this run
//	         Patterns: "wrong password", "not a protected stream"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported format (xlsx and csv are read)
//	FILE003 - Empty file: no header row
//	FILE004 - No file provided
//	FILE005 - Invalid CSV
//	FILE006 - Unreadable workbook
//	FILE007 - Artifact not found (HTTP download)
//
// # Report Errors (RPT001-RPT099)
//
//	RPT001 - Report not written: the output folder is not writable
//	RPT002 - Run log not written: the report exists but was not recorded
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: too many runs in progress
//	RUN002 - Request cancelled
//	RUN003 - Request timed out
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Query failed
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Schema
	{
		pattern: "schema unavailable",
		msg: UserMessage{
			Message: "A required column could not be found in the export",
			Action:  "Check the export contains the card and cashier columns",
			Code:    "SCH001",
		},
	},
	{
		pattern: "is not an entity",
		msg: UserMessage{
			Message: "Lookups work on cards and cashiers only",
			Action:  `Use role "card" or "cashier"`,
			Code:    "SCH002",
		},
	},
	{
		pattern: "unknown role",
		msg: UserMessage{
			Message: "Unknown lookup role",
			Action:  `Use role "card" or "cashier"`,
			Code:    "SCH002",
		},
	},

	// Entities
	{
		pattern: "no transactions found for",
		msg: UserMessage{
			Message: "No transactions found for the requested entity",
			Action:  "Check the card number or cashier name",
			Code:    "ENT001",
		},
	},

	// Encryption
	{
		pattern: "all encryption backends failed",
		msg: UserMessage{
			Message: "The report could not be encrypted",
			Action:  "Run again without encryption or contact support",
			Code:    "ENC001",
		},
	},
	{
		pattern: "wrong password",
		msg: UserMessage{
			Message: "The protected file could not be opened",
			Action:  "Check the password recorded for this run",
			Code:    "ENC002",
		},
	},
	{
		pattern: "not a protected stream",
		msg: UserMessage{
			Message: "The file is not a protected report",
			Action:  "Choose the file ending in _protected.xlsx.enc",
			Code:    "ENC002",
		},
	},

	// Files
	{
		pattern: "exceeds maximum size",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the export into smaller date ranges",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the export into smaller date ranges",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported input format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx or .csv export",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no header row",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Upload an export with a header row and transactions",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an export to process",
			Code:    "FILE004",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated",
			Code:    "FILE005",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The workbook could not be read",
			Action:  "Re-export the file from the POS system",
			Code:    "FILE006",
		},
	},

	// Reports
	{
		pattern: "record run",
		msg: UserMessage{
			Message: "The report was written but the run log could not be updated",
			Action:  "Check the log folder is writable and note the password shown",
			Code:    "RPT002",
		},
	},
	{
		pattern: "workbook",
		msg: UserMessage{
			Message: "The report could not be written",
			Action:  "Check the output folder is writable",
			Code:    "RPT001",
		},
	},
	{
		pattern: "create output dir",
		msg: UserMessage{
			Message: "The report could not be written",
			Action:  "Check the output folder is writable",
			Code:    "RPT001",
		},
	},

	// Runs
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy processing other reports",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller export or try again later",
			Code:    "RUN003",
		},
	},

	// Database source
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "sqlstate",
		msg: UserMessage{
			Message: "The database query failed",
			Action:  "Check the query and the column aliases",
			Code:    "DB002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats an error for display as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
