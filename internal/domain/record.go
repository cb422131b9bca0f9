package domain

// Record is an untyped collection entry. Collections without a dedicated Go
// type (messages, timetable, notes, salary sheets) are read and written as
// Records.
type Record map[string]any
