package library

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a title in the catalog. Availability is tracked per copy
// count: AvailableCopies is decremented once per active loan and incremented
// once per completion, so at rest
// AvailableCopies == TotalCopies - (loans with status ACTIVE or RENEWED).
type Book struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           Genre  `json:"genre"`
	IsAvailable     bool   `json:"is_available"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// NewBook creates a book with all copies available.
func NewBook(isbn, title, author string, genre Genre, totalCopies int) *Book {
	b := &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Genre:           genre,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	b.refreshAvailability()
	return b
}

// AdjustAvailableCopies applies delta to the available count and refreshes
// the derived availability flag. Bounds are the caller's responsibility;
// Catalog.AdjustAvailability is the checked entry point.
func (b *Book) AdjustAvailableCopies(delta int) {
	b.AvailableCopies += delta
	b.refreshAvailability()
}

// SetTotalCopies changes the total copy count and refreshes availability.
func (b *Book) SetTotalCopies(total int) {
	b.TotalCopies = total
	b.refreshAvailability()
}

func (b *Book) refreshAvailability() {
	b.IsAvailable = b.AvailableCopies > 0
}

// User is a registered account. PasswordHash is never serialized to JSON;
// it is persisted only in the users table.
type User struct {
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	IsActive     bool     `json:"is_active"`
}

// NewUser creates an active user with a generated id and a hashed password.
func NewUser(name, email, password string, role UserRole) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		UserID:       uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}, nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return VerifyPassword(password, u.PasswordHash)
}

// Transaction records one loan of one book copy. ReturnDate is the zero time
// until the loan completes.
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	UserID        string            `json:"user_id"`
	ISBN          string            `json:"isbn"`
	BorrowDate    time.Time         `json:"borrow_date"`
	DueDate       time.Time         `json:"due_date"`
	ReturnDate    time.Time         `json:"return_date,omitempty"`
	Status        TransactionStatus `json:"status"`
}

// NewTransaction creates an ACTIVE loan starting today with a generated id.
func NewTransaction(userID, isbn string, loanPeriodDays int) *Transaction {
	borrow := today()
	return &Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		ISBN:          isbn,
		BorrowDate:    borrow,
		DueDate:       borrow.AddDate(0, 0, loanPeriodDays),
		Status:        StatusActive,
	}
}

// Complete sets the return date to today and the status to COMPLETED.
// It is legal from any status except COMPLETED, which is terminal.
func (t *Transaction) Complete() error {
	if t.Status == StatusCompleted {
		return ErrInvalidTransactionState
	}
	t.ReturnDate = today()
	t.Status = StatusCompleted
	return nil
}

// Renew extends the due date by extensionDays and sets the status to
// RENEWED. Only ACTIVE and RENEWED loans may be renewed; repeated renewals
// are cumulative.
func (t *Transaction) Renew(extensionDays int) error {
	if t.Status != StatusActive && t.Status != StatusRenewed {
		return ErrInvalidTransactionState
	}
	t.DueDate = t.DueDate.AddDate(0, 0, extensionDays)
	t.Status = StatusRenewed
	return nil
}

// IsOverdueAt reports whether the loan is overdue as of the given date.
// Overdue is always computed, never persisted as a status change.
func (t *Transaction) IsOverdueAt(asOf time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate.Before(asOf)
}

// IsOverdue reports whether the loan is overdue as of today.
func (t *Transaction) IsOverdue() bool {
	return t.IsOverdueAt(today())
}

// today returns the current calendar date, truncated to midnight UTC. All
// loan dates are calendar dates; times of day never enter the data model.
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
