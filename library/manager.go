package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// MaxActiveLoans caps concurrent ACTIVE/RENEWED loans for MEMBER and GUEST
// accounts. ADMIN and LIBRARIAN are exempt.
const MaxActiveLoans = 5

// DefaultLoanPeriodDays is the loan period used when the caller does not
// specify one.
const DefaultLoanPeriodDays = 14

// Manager coordinates the catalog, ledger and users tables, keeping CLI code
// simple. Borrow and return each mutate two tables; the storage layer cannot
// make those writes jointly atomic, so the manager serializes every mutating
// operation behind one mutex. A crash between the two writes can still leave
// a loan recorded without its availability decrement.
type Manager struct {
	mu      sync.Mutex
	catalog *Catalog
	ledger  *Ledger
	users   *Table[*User]
	auth    *AuthService
}

// NewManager opens (or creates) the three backing tables under dataDir.
func NewManager(dataDir string) (*Manager, error) {
	m := &Manager{
		catalog: NewCatalog(filepath.Join(dataDir, "books.csv")),
		ledger:  NewLedger(filepath.Join(dataDir, "transactions.csv")),
		users:   newUserTable(filepath.Join(dataDir, "users.csv")),
	}
	m.auth = NewAuthService(m.users)
	if err := m.catalog.books.EnsureExists(); err != nil {
		return nil, err
	}
	if err := m.ledger.transactions.EnsureExists(); err != nil {
		return nil, err
	}
	if err := m.users.EnsureExists(); err != nil {
		return nil, err
	}
	return m, nil
}

func newUserTable(path string) *Table[*User] {
	return NewTable(path, Codec[*User]{
		Header: userHeader,
		Key:    func(u *User) string { return u.UserID },
		Encode: EncodeUser,
		Decode: DecodeUser,
	})
}

// Catalog exposes the book catalog for read-only consumers such as reports.
func (m *Manager) Catalog() *Catalog { return m.catalog }

// Ledger exposes the loan ledger for read-only consumers such as reports.
func (m *Manager) Ledger() *Ledger { return m.ledger }

// ------------------ Book operations ------------------

// AddBook registers a new book. The ISBN must not already be in the catalog.
func (m *Manager) AddBook(book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.catalog.FindByISBN(book.ISBN)
	if err == nil {
		return fmt.Errorf("ISBN %s: %w", book.ISBN, ErrAlreadyExists)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return m.catalog.Add(book)
}

// UpdateBook replaces the stored book with the same ISBN.
func (m *Manager) UpdateBook(book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.catalog.FindByISBN(book.ISBN); err != nil {
		return err
	}
	return m.catalog.Update(book)
}

// RemoveBook deletes a book from the catalog.
func (m *Manager) RemoveBook(isbn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Remove(isbn)
}

// FindBook returns the book with the given ISBN.
func (m *Manager) FindBook(isbn string) (*Book, error) { return m.catalog.FindByISBN(isbn) }

// SearchBooks returns books matching query by title/author substring or
// exact ISBN.
func (m *Manager) SearchBooks(query string) ([]*Book, error) { return m.catalog.Search(query) }

// AllBooks returns the full catalog in file order.
func (m *Manager) AllBooks() ([]*Book, error) { return m.catalog.All() }

// ------------------ Lending operations ------------------

// Borrow opens a loan for the user on the given ISBN. The user must exist
// and be active (ErrIneligibleBorrower) and the book must exist with at
// least one available copy (ErrBookUnavailable). The ledger append and the
// availability decrement are two separate file writes with no joint
// atomicity.
func (m *Manager) Borrow(userID, isbn string, loanDays int) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.users.FindByKey(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrIneligibleBorrower)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user %s is inactive: %w", userID, ErrIneligibleBorrower)
	}

	book, err := m.catalog.FindByISBN(isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("ISBN %s: %w", isbn, ErrBookUnavailable)
		}
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, fmt.Errorf("ISBN %s has no available copies: %w", isbn, ErrBookUnavailable)
	}

	txn, err := m.ledger.Create(userID, isbn, loanDays)
	if err != nil {
		return nil, err
	}
	if err := m.catalog.AdjustAvailability(isbn, -1); err != nil {
		return nil, fmt.Errorf("loan %s recorded but availability not decremented: %w", txn.TransactionID, err)
	}
	return txn, nil
}

// Return completes the loan and restores the book's availability. The loan
// must be ACTIVE or RENEWED; anything else is ErrInvalidTransactionState.
func (m *Manager) Return(transactionID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.ledger.FindByID(transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != StatusActive && txn.Status != StatusRenewed {
		return nil, fmt.Errorf("transaction %s has status %s: %w",
			transactionID, txn.Status.Name(), ErrInvalidTransactionState)
	}

	txn, err = m.ledger.Complete(transactionID)
	if err != nil {
		return nil, err
	}
	if err := m.catalog.AdjustAvailability(txn.ISBN, +1); err != nil {
		return nil, fmt.Errorf("loan %s completed but availability not restored: %w", transactionID, err)
	}
	return txn, nil
}

// Renew extends a loan's due date. Eligibility rules are the ledger's.
func (m *Manager) Renew(transactionID string, extensionDays int) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Renew(transactionID, extensionDays)
}

// CanBorrow reports whether the user may open another loan. ADMIN and
// LIBRARIAN are always eligible; MEMBER and GUEST are capped at
// MaxActiveLoans concurrent ACTIVE/RENEWED loans.
func (m *Manager) CanBorrow(user *User) (bool, error) {
	if user.Role == RoleAdmin || user.Role == RoleLibrarian {
		return true, nil
	}
	active, err := m.ledger.CountActiveByUser(user.UserID)
	if err != nil {
		return false, err
	}
	return active < MaxActiveLoans, nil
}

// UserTransactions returns the user's full loan history.
func (m *Manager) UserTransactions(userID string) ([]*Transaction, error) {
	return m.ledger.ListByUser(userID)
}

// ------------------ User operations ------------------

// AddUser registers a new account. The email must not already be taken.
func (m *Manager) AddUser(name, email, password string, role UserRole) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.auth.findByEmail(email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, ErrAlreadyExists)
	}

	user, err := NewUser(name, email, password, role)
	if err != nil {
		return nil, err
	}
	if err := m.users.Append(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser replaces the stored user with the same id.
func (m *Manager) UpdateUser(user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.users.FindByKey(user.UserID); err != nil {
		return err
	}
	return m.users.UpdateByKey(user)
}

// DeactivateUser clears the user's active flag, blocking future borrows.
func (m *Manager) DeactivateUser(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.users.FindByKey(userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	return m.users.UpdateByKey(user)
}

// FindUser returns the user with the given id.
func (m *Manager) FindUser(userID string) (*User, error) { return m.users.FindByKey(userID) }

// AllUsers returns every registered user in file order.
func (m *Manager) AllUsers() ([]*User, error) { return m.users.LoadAll() }

// Authenticate verifies the email/password pair and returns the account.
func (m *Manager) Authenticate(email, password string) (*User, error) {
	return m.auth.Authenticate(email, password)
}

// ChangePassword replaces the user's password after verifying the old one.
func (m *Manager) ChangePassword(userID, oldPassword, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth.ChangePassword(userID, oldPassword, newPassword)
}
