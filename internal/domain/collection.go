package domain

import (
	"fmt"
	"strings"
)

// Collection names a logical record set. Its value is the fixed key suffix
// appended to the organization.
type Collection string

const (
	CollectionPendingPayroll    Collection = "payroll_pending"
	CollectionApprovedPayroll   Collection = "payroll_approved"
	CollectionAccounts          Collection = "payment_accounts"
	CollectionPaymentsLog       Collection = "payments_log"
	CollectionMessages          Collection = "messages"
	CollectionAudit             Collection = "audit"
	CollectionTeacherAttendance Collection = "teacher_attendance"
	CollectionTeacherTimetable  Collection = "teacher_timetable"
	CollectionTeacherNotes      Collection = "teacher_notes"
	CollectionUsers             Collection = "users"
	CollectionSalarySheets      Collection = "salary_sheets"
)

var collectionNames = map[Collection]string{ //nolint:gochecknoglobals // fixed lookup table
	CollectionPendingPayroll:    "PendingPayroll",
	CollectionApprovedPayroll:   "ApprovedPayroll",
	CollectionAccounts:          "Accounts",
	CollectionPaymentsLog:       "PaymentsLog",
	CollectionMessages:          "Messages",
	CollectionAudit:             "Audit",
	CollectionTeacherAttendance: "TeacherAttendance",
	CollectionTeacherTimetable:  "TeacherTimetable",
	CollectionTeacherNotes:      "TeacherNotes",
	CollectionUsers:             "Users",
	CollectionSalarySheets:      "SalarySheets",
}

// Collections returns every known collection in declaration order.
func Collections() []Collection {
	return []Collection{
		CollectionPendingPayroll,
		CollectionApprovedPayroll,
		CollectionAccounts,
		CollectionPaymentsLog,
		CollectionMessages,
		CollectionAudit,
		CollectionTeacherAttendance,
		CollectionTeacherTimetable,
		CollectionTeacherNotes,
		CollectionUsers,
		CollectionSalarySheets,
	}
}

// Name returns the logical name of the collection, e.g. "PaymentsLog".
func (c Collection) Name() string {
	if n, ok := collectionNames[c]; ok {
		return n
	}
	return string(c)
}

// Key derives the storage key of collection c for org.
func Key(org string, c Collection) string {
	return org + "_" + string(c)
}

// ParseCollection accepts either a key suffix ("payments_log") or a logical
// name ("PaymentsLog", case-insensitive).
func ParseCollection(s string) (Collection, error) {
	for c, name := range collectionNames {
		if s == string(c) || strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("domain.ParseCollection: %q: %w", s, ErrUnknownCollection)
}
