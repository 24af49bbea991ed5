package library

import (
	"fmt"
	"strings"
)

// Genre classifies a book. Values are the canonical uppercase tokens stored
// on disk; DisplayName gives the human-readable form.
type Genre string

const (
	GenreFiction        Genre = "FICTION"
	GenreNonFiction     Genre = "NON_FICTION"
	GenreScience        Genre = "SCIENCE"
	GenreHistory        Genre = "HISTORY"
	GenreBiography      Genre = "BIOGRAPHY"
	GenreMystery        Genre = "MYSTERY"
	GenreRomance        Genre = "ROMANCE"
	GenreFantasy        Genre = "FANTASY"
	GenreScienceFiction Genre = "SCIENCE_FICTION"
	GenreHorror         Genre = "HORROR"
	GenreThriller       Genre = "THRILLER"
	GenrePoetry         Genre = "POETRY"
	GenreDrama          Genre = "DRAMA"
	GenreChildren       Genre = "CHILDREN"
	GenreYoungAdult     Genre = "YOUNG_ADULT"
	GenreSelfHelp       Genre = "SELF_HELP"
	GenreTravel         Genre = "TRAVEL"
	GenreCookbook       Genre = "COOKBOOK"
	GenreArt            Genre = "ART"
	GenrePhilosophy     Genre = "PHILOSOPHY"
)

var genres = []Genre{
	GenreFiction, GenreNonFiction, GenreScience, GenreHistory, GenreBiography,
	GenreMystery, GenreRomance, GenreFantasy, GenreScienceFiction, GenreHorror,
	GenreThriller, GenrePoetry, GenreDrama, GenreChildren, GenreYoungAdult,
	GenreSelfHelp, GenreTravel, GenreCookbook, GenreArt, GenrePhilosophy,
}

// Genres returns every known genre in declaration order.
func Genres() []Genre {
	out := make([]Genre, len(genres))
	copy(out, genres)
	return out
}

// Name returns the canonical uppercase token. This is what the codec writes;
// it must never be conflated with DisplayName.
func (g Genre) Name() string { return string(g) }

// DisplayName returns the human-readable form, e.g. "Science fiction".
func (g Genre) DisplayName() string { return displayName(string(g)) }

// ParseGenre converts a string to a Genre, ignoring case and accepting
// spaces in place of underscores.
func ParseGenre(s string) (Genre, error) {
	g := Genre(canonicalToken(s))
	for _, known := range genres {
		if g == known {
			return g, nil
		}
	}
	return "", fmt.Errorf("invalid genre %q", s)
}

// TransactionStatus tracks the lifecycle of a loan. ACTIVE and RENEWED count
// against availability; COMPLETED is terminal. OVERDUE, LOST and RESERVED are
// advisory labels set by administrative override only — overdue is normally
// computed from the due date, never persisted.
type TransactionStatus string

const (
	StatusActive    TransactionStatus = "ACTIVE"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusOverdue   TransactionStatus = "OVERDUE"
	StatusRenewed   TransactionStatus = "RENEWED"
	StatusLost      TransactionStatus = "LOST"
	StatusReserved  TransactionStatus = "RESERVED"
)

var transactionStatuses = []TransactionStatus{
	StatusActive, StatusCompleted, StatusOverdue,
	StatusRenewed, StatusLost, StatusReserved,
}

// Name returns the canonical uppercase token stored on disk.
func (s TransactionStatus) Name() string { return string(s) }

// DisplayName returns the human-readable form, e.g. "Completed".
func (s TransactionStatus) DisplayName() string { return displayName(string(s)) }

// ParseTransactionStatus converts a string to a TransactionStatus, ignoring
// case and accepting spaces in place of underscores.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	st := TransactionStatus(canonicalToken(s))
	for _, known := range transactionStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", s)
}

// UserRole defines a user's privilege level, ADMIN highest.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleLibrarian UserRole = "LIBRARIAN"
	RoleMember    UserRole = "MEMBER"
	RoleGuest     UserRole = "GUEST"
)

// roleRank orders roles from highest privilege (lowest rank) to lowest.
var roleRank = map[UserRole]int{
	RoleAdmin:     0,
	RoleLibrarian: 1,
	RoleMember:    2,
	RoleGuest:     3,
}

// Name returns the canonical uppercase token stored on disk.
func (r UserRole) Name() string { return string(r) }

// DisplayName returns the human-readable form of the role.
func (r UserRole) DisplayName() string {
	if r == RoleAdmin {
		return "Administrator"
	}
	return displayName(string(r))
}

// HasPrivilegeOver reports whether r has privileges higher than or equal to
// other, following ADMIN > LIBRARIAN > MEMBER > GUEST.
func (r UserRole) HasPrivilegeOver(other UserRole) bool {
	return roleRank[r] <= roleRank[other]
}

// ParseUserRole converts a string to a UserRole, ignoring case.
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(canonicalToken(s))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("invalid user role %q", s)
	}
	return r, nil
}

func canonicalToken(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

// displayName turns a canonical token like "SCIENCE_FICTION" into
// "Science fiction".
func displayName(token string) string {
	if token == "" {
		return ""
	}
	rest := strings.ReplaceAll(strings.ToLower(token[1:]), "_", " ")
	return token[:1] + rest
}
