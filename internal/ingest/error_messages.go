package ingest

// error_messages.go maps pipeline and infrastructure errors to messages an
// operator can act on, each with a support code.
//
// Codes by category:
//
//	FILE001 unsupported file format       FILE002 file could not be parsed
//	FILE003 file too large                FILE004 no file provided
//	SCH001  no schema for bank/type       BNK001  unknown bank
//	VAL001  invalid dates                 VAL004  missing required columns
//	DB001   duplicate record              DB004   database unreachable
//	UPL002  too many uploads              UPL003  job not found
//	CMP001  comparison not implemented    ERR000  anything else
//
// Pipeline sentinels are matched with errors.Is first. Errors that only
// surface as text (driver and transport failures, errors from other
// packages) are matched case-insensitively by substring; the first match
// wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrUnsupportedFormat, UserMessage{
		Message: "File format is not supported",
		Action:  "Upload a .csv, .txt, .xlsx, .xls, .ods or .json file",
		Code:    "FILE001",
	}},
	{ErrParse, UserMessage{
		Message: "File could not be read",
		Action:  "Check that the file is not corrupt and matches its extension",
		Code:    "FILE002",
	}},
	{ErrUnknownSchema, UserMessage{
		Message: "No layout is configured for this bank and transaction type",
		Action:  "Choose a different bank or transaction type",
		Code:    "SCH001",
	}},
	{ErrInvalidDates, UserMessage{
		Message: "Some rows have invalid dates; nothing was saved",
		Action:  "Use dates like 05-Jan-24 and upload the file again",
		Code:    "VAL001",
	}},
	{ErrMissingColumns, UserMessage{
		Message: "Required columns are missing from the file",
		Action:  "Check that all required columns are present in your file",
		Code:    "VAL004",
	}},
	{ErrUnknownBank, UserMessage{
		Message: "Bank has no configured bank code",
		Action:  "Ask an administrator to add the bank code",
		Code:    "BNK001",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request is missing a field or has an invalid value",
			Action:  "Check the bank, transaction type and other fields and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This record already exists",
			Action:  "No action needed; duplicates are skipped",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "job not found",
		msg: UserMessage{
			Message: "Job not found",
			Action:  "The job may have expired. Upload the file again to get a new job",
			Code:    "UPL003",
		},
	},
	{
		pattern: "not implemented",
		msg: UserMessage{
			Message: "Comparison with the production database is not available",
			Action:  "This feature has not been built yet",
			Code:    "CMP001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. It returns
// the zero UserMessage for a nil error and ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
