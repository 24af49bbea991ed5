package library

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return mgr
}

func addMember(t *testing.T, mgr *Manager, name string) *User {
	t.Helper()
	user, err := mgr.AddUser(name, name+"@example.com", "secret123", RoleMember)
	require.NoError(t, err)
	return user
}

// requireAvailabilityInvariant checks, for every book, that
// AvailableCopies == TotalCopies - (loans on that ISBN with status ACTIVE or
// RENEWED), and that the count sits within 0..TotalCopies.
func requireAvailabilityInvariant(t *testing.T, mgr *Manager) {
	t.Helper()
	books, err := mgr.AllBooks()
	require.NoError(t, err)
	loans, err := mgr.Ledger().All()
	require.NoError(t, err)

	for _, b := range books {
		open := 0
		for _, l := range loans {
			if l.ISBN == b.ISBN && (l.Status == StatusActive || l.Status == StatusRenewed) {
				open++
			}
		}
		require.GreaterOrEqual(t, b.AvailableCopies, 0, "ISBN %s", b.ISBN)
		require.LessOrEqual(t, b.AvailableCopies, b.TotalCopies, "ISBN %s", b.ISBN)
		require.Equal(t, b.TotalCopies-open, b.AvailableCopies,
			"ISBN %s: available count out of step with open loans", b.ISBN)
	}
}

func TestBorrowReturnLifecycle(t *testing.T) {
	mgr := tempManager(t)
	alice := addMember(t, mgr, "alice")
	bob := addMember(t, mgr, "bob")

	require.NoError(t, mgr.AddBook(NewBook("X-001", "Sole Copy", "Author", GenreFiction, 1)))

	// Borrow the only copy.
	txn, err := mgr.Borrow(alice.UserID, "X-001", 14)
	require.NoError(t, err)
	book, err := mgr.FindBook("X-001")
	require.NoError(t, err)
	require.Equal(t, 0, book.AvailableCopies)
	require.False(t, book.IsAvailable)
	requireAvailabilityInvariant(t, mgr)

	// A second borrow of the same ISBN fails and changes nothing.
	_, err = mgr.Borrow(bob.UserID, "X-001", 14)
	require.ErrorIs(t, err, ErrBookUnavailable)
	book, _ = mgr.FindBook("X-001")
	require.Equal(t, 0, book.AvailableCopies)

	// The open loan shows up as overdue well past its due date.
	overdue, err := mgr.Ledger().ListOverdue(txn.DueDate.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, txn.TransactionID, overdue[0].TransactionID)

	// Return restores availability and completes the loan.
	returned, err := mgr.Return(txn.TransactionID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, returned.Status)
	require.Equal(t, today(), returned.ReturnDate)
	book, _ = mgr.FindBook("X-001")
	require.Equal(t, 1, book.AvailableCopies)
	requireAvailabilityInvariant(t, mgr)

	// After completion the loan is no longer overdue at any date.
	overdue, err = mgr.Ledger().ListOverdue(txn.DueDate.AddDate(0, 0, 20))
	require.NoError(t, err)
	require.Empty(t, overdue)

	// Returning a COMPLETED loan fails and does not touch availability.
	_, err = mgr.Return(txn.TransactionID)
	require.ErrorIs(t, err, ErrInvalidTransactionState)
	book, _ = mgr.FindBook("X-001")
	require.Equal(t, 1, book.AvailableCopies)
}

func TestBorrowValidation(t *testing.T) {
	mgr := tempManager(t)
	alice := addMember(t, mgr, "alice")
	require.NoError(t, mgr.AddBook(NewBook("X-001", "Book", "Author", GenreFiction, 1)))

	_, err := mgr.Borrow("no-such-user", "X-001", 14)
	require.ErrorIs(t, err, ErrIneligibleBorrower)

	_, err = mgr.Borrow(alice.UserID, "no-such-isbn", 14)
	require.ErrorIs(t, err, ErrBookUnavailable)

	require.NoError(t, mgr.DeactivateUser(alice.UserID))
	_, err = mgr.Borrow(alice.UserID, "X-001", 14)
	require.ErrorIs(t, err, ErrIneligibleBorrower)

	book, _ := mgr.FindBook("X-001")
	require.Equal(t, 1, book.AvailableCopies, "failed borrows must not consume copies")
}

func TestReturnOfRenewedLoan(t *testing.T) {
	mgr := tempManager(t)
	alice := addMember(t, mgr, "alice")
	require.NoError(t, mgr.AddBook(NewBook("X-001", "Book", "Author", GenreFiction, 1)))

	txn, err := mgr.Borrow(alice.UserID, "X-001", 14)
	require.NoError(t, err)

	renewed, err := mgr.Renew(txn.TransactionID, 7)
	require.NoError(t, err)
	require.Equal(t, StatusRenewed, renewed.Status)

	// RENEWED loans are returnable just like ACTIVE ones.
	_, err = mgr.Return(txn.TransactionID)
	require.NoError(t, err)
	requireAvailabilityInvariant(t, mgr)
}

func TestCanBorrowCaps(t *testing.T) {
	mgr := tempManager(t)
	alice := addMember(t, mgr, "alice")
	admin, err := mgr.AddUser("root", "root@library.com", "secret123", RoleAdmin)
	require.NoError(t, err)

	for i := 0; i < MaxActiveLoans; i++ {
		isbn := fmt.Sprintf("B-%03d", i)
		require.NoError(t, mgr.AddBook(NewBook(isbn, "Book", "Author", GenreFiction, 2)))
	}

	// Four open loans: still eligible.
	for i := 0; i < MaxActiveLoans-1; i++ {
		_, err := mgr.Borrow(alice.UserID, fmt.Sprintf("B-%03d", i), 14)
		require.NoError(t, err)
	}
	ok, err := mgr.CanBorrow(alice)
	require.NoError(t, err)
	require.True(t, ok)

	// The fifth loan hits the cap.
	_, err = mgr.Borrow(alice.UserID, fmt.Sprintf("B-%03d", MaxActiveLoans-1), 14)
	require.NoError(t, err)
	ok, err = mgr.CanBorrow(alice)
	require.NoError(t, err)
	require.False(t, ok)

	// Renewal keeps loans in the active set; the cap still applies.
	loans, err := mgr.UserTransactions(alice.UserID)
	require.NoError(t, err)
	_, err = mgr.Renew(loans[0].TransactionID, 7)
	require.NoError(t, err)
	ok, _ = mgr.CanBorrow(alice)
	require.False(t, ok)

	// Admins are exempt from the cap.
	for i := 0; i < MaxActiveLoans; i++ {
		_, err := mgr.Borrow(admin.UserID, fmt.Sprintf("B-%03d", i), 14)
		require.NoError(t, err)
	}
	ok, err = mgr.CanBorrow(admin)
	require.NoError(t, err)
	require.True(t, ok)

	requireAvailabilityInvariant(t, mgr)
}

// Two concurrent borrows of the last copy must not both succeed: the
// manager serializes its read-modify-write sequences, so one caller sees
// zero copies and fails cleanly.
func TestConcurrentBorrowLastCopy(t *testing.T) {
	mgr := tempManager(t)
	alice := addMember(t, mgr, "alice")
	bob := addMember(t, mgr, "bob")
	require.NoError(t, mgr.AddBook(NewBook("X-001", "Contested", "Author", GenreFiction, 1)))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []*User{alice, bob} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = mgr.Borrow(userID, "X-001", 14)
		}(i, user.UserID)
	}
	wg.Wait()

	require.True(t, (errs[0] == nil) != (errs[1] == nil),
		"exactly one borrow must succeed, got %v / %v", errs[0], errs[1])

	book, err := mgr.FindBook("X-001")
	require.NoError(t, err)
	require.Equal(t, 0, book.AvailableCopies)
	requireAvailabilityInvariant(t, mgr)
}

func TestAddBookRejectsDuplicateISBN(t *testing.T) {
	mgr := tempManager(t)
	require.NoError(t, mgr.AddBook(NewBook("X-001", "Book", "Author", GenreFiction, 1)))
	err := mgr.AddBook(NewBook("X-001", "Other", "Writer", GenreDrama, 3))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateBook(t *testing.T) {
	mgr := tempManager(t)
	book := NewBook("X-001", "Book", "Author", GenreFiction, 1)
	require.NoError(t, mgr.AddBook(book))

	require.ErrorIs(t, mgr.UpdateBook(NewBook("no-such-isbn", "Ghost", "Nobody", GenreHorror, 1)), ErrNotFound)

	book.Title = "Book (Second Edition)"
	book.SetTotalCopies(4)
	require.NoError(t, mgr.UpdateBook(book))
	stored, err := mgr.FindBook("X-001")
	require.NoError(t, err)
	require.Equal(t, "Book (Second Edition)", stored.Title)
	require.Equal(t, 4, stored.TotalCopies)
}

func TestUserManagement(t *testing.T) {
	mgr := tempManager(t)

	alice, err := mgr.AddUser("Alice", "alice@example.com", "secret123", RoleMember)
	require.NoError(t, err)

	// Duplicate email is rejected.
	_, err = mgr.AddUser("Other Alice", "alice@example.com", "secret456", RoleGuest)
	require.ErrorIs(t, err, ErrAlreadyExists)

	// Updating an unknown user surfaces the miss instead of silently
	// rewriting nothing.
	ghost := *alice
	ghost.UserID = "no-such-id"
	require.ErrorIs(t, mgr.UpdateUser(&ghost), ErrNotFound)

	alice.Name = "Alice J."
	require.NoError(t, mgr.UpdateUser(alice))
	stored, err := mgr.FindUser(alice.UserID)
	require.NoError(t, err)
	require.Equal(t, "Alice J.", stored.Name)

	require.NoError(t, mgr.DeactivateUser(alice.UserID))
	stored, _ = mgr.FindUser(alice.UserID)
	require.False(t, stored.IsActive)
}
