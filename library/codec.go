package library

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The record codec serializes entities to single comma-delimited lines and
// back. Field values must never contain the delimiter or a newline; the
// codec does not escape, it assumes. Enum fields are written as their
// canonical uppercase names, never their display forms, so round-trips are
// stable. Dates use the ISO 8601 calendar form; an absent return date is an
// empty field.

const (
	recordDelimiter = ","
	dateLayout      = "2006-01-02"

	bookHeader        = "ISBN,Title,Author,Genre,IsAvailable,TotalCopies,AvailableCopies"
	userHeader        = "UserId,Name,Email,PasswordHash,Role,IsActive"
	transactionHeader = "TransactionId,UserId,ISBN,BorrowDate,DueDate,ReturnDate,Status"

	bookFieldCount        = 7
	userFieldCount        = 6
	transactionFieldCount = 7
)

// EncodeBook renders a book as one record line.
func EncodeBook(b *Book) string {
	return strings.Join([]string{
		b.ISBN,
		b.Title,
		b.Author,
		b.Genre.Name(),
		strconv.FormatBool(b.IsAvailable),
		strconv.Itoa(b.TotalCopies),
		strconv.Itoa(b.AvailableCopies),
	}, recordDelimiter)
}

// DecodeBook parses one record line into a book. The stored availability
// flag is validated but always recomputed from the copy counts.
func DecodeBook(line string) (*Book, error) {
	parts, err := splitRecord(line, bookFieldCount)
	if err != nil {
		return nil, err
	}
	genre, err := ParseGenre(parts[3])
	if err != nil {
		return nil, malformed(line, err)
	}
	if _, err := strconv.ParseBool(parts[4]); err != nil {
		return nil, malformed(line, fmt.Errorf("bad availability flag %q", parts[4]))
	}
	total, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, malformed(line, fmt.Errorf("bad total copies %q", parts[5]))
	}
	available, err := strconv.Atoi(parts[6])
	if err != nil {
		return nil, malformed(line, fmt.Errorf("bad available copies %q", parts[6]))
	}
	b := &Book{
		ISBN:            parts[0],
		Title:           parts[1],
		Author:          parts[2],
		Genre:           genre,
		TotalCopies:     total,
		AvailableCopies: available,
	}
	b.refreshAvailability()
	return b, nil
}

// EncodeUser renders a user as one record line.
func EncodeUser(u *User) string {
	return strings.Join([]string{
		u.UserID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role.Name(),
		strconv.FormatBool(u.IsActive),
	}, recordDelimiter)
}

// DecodeUser parses one record line into a user.
func DecodeUser(line string) (*User, error) {
	parts, err := splitRecord(line, userFieldCount)
	if err != nil {
		return nil, err
	}
	role, err := ParseUserRole(parts[4])
	if err != nil {
		return nil, malformed(line, err)
	}
	active, err := strconv.ParseBool(parts[5])
	if err != nil {
		return nil, malformed(line, fmt.Errorf("bad active flag %q", parts[5]))
	}
	return &User{
		UserID:       parts[0],
		Name:         parts[1],
		Email:        parts[2],
		PasswordHash: parts[3],
		Role:         role,
		IsActive:     active,
	}, nil
}

// EncodeTransaction renders a transaction as one record line.
func EncodeTransaction(t *Transaction) string {
	returnDate := ""
	if !t.ReturnDate.IsZero() {
		returnDate = t.ReturnDate.Format(dateLayout)
	}
	return strings.Join([]string{
		t.TransactionID,
		t.UserID,
		t.ISBN,
		t.BorrowDate.Format(dateLayout),
		t.DueDate.Format(dateLayout),
		returnDate,
		t.Status.Name(),
	}, recordDelimiter)
}

// DecodeTransaction parses one record line into a transaction.
func DecodeTransaction(line string) (*Transaction, error) {
	parts, err := splitRecord(line, transactionFieldCount)
	if err != nil {
		return nil, err
	}
	borrow, err := parseDate(parts[3])
	if err != nil {
		return nil, malformed(line, fmt.Errorf("bad borrow date %q", parts[3]))
	}
	due, err := parseDate(parts[4])
	if err != nil {
		return nil, malformed(line, fmt.Errorf("bad due date %q", parts[4]))
	}
	var returned time.Time
	if parts[5] != "" {
		returned, err = parseDate(parts[5])
		if err != nil {
			return nil, malformed(line, fmt.Errorf("bad return date %q", parts[5]))
		}
	}
	status, err := ParseTransactionStatus(parts[6])
	if err != nil {
		return nil, malformed(line, err)
	}
	return &Transaction{
		TransactionID: parts[0],
		UserID:        parts[1],
		ISBN:          parts[2],
		BorrowDate:    borrow,
		DueDate:       due,
		ReturnDate:    returned,
		Status:        status,
	}, nil
}

func splitRecord(line string, want int) ([]string, error) {
	parts := strings.Split(line, recordDelimiter)
	if len(parts) != want {
		return nil, malformed(line, fmt.Errorf("want %d fields, got %d", want, len(parts)))
	}
	return parts, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func malformed(line string, cause error) error {
	return fmt.Errorf("%w: %v in %q", ErrMalformedRecord, cause, line)
}
