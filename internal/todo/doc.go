// Package todo holds the task list: task records, validation, and the
// in-memory store that owns them.
//
// A task serializes as:
//
//	{
//	  "id": 1760000000000,
//	  "text": "Buy milk",
//	  "deadline": "2026-10-20T18:30"
//	}
//
// # Validation
//
// Both Add and Update apply the same rules:
//   - text is trimmed and must be 3 to 255 characters long
//   - deadline is optional; when present it must parse and be strictly in the future
//
// Failures are reported as *ValidationError wrapping one of ErrTextTooShort,
// ErrTextTooLong or ErrDeadlineInvalid. The store is left unchanged.
//
// # Deadlines
//
// Accepted input forms are the datetime-local shape ("2006-01-02T15:04",
// optionally with seconds), the same with a space instead of "T", a bare date
// (midnight local time) and RFC 3339. Accepted deadlines are stored in the
// canonical local form "2006-01-02T15:04". A stored deadline is never
// re-validated, so it may become past over time.
//
// # Persistence
//
// Every mutation hands the full task sequence to the configured Persister.
// Persistence is best-effort: the store stays authoritative for the session
// whatever the Persister does.
package todo
