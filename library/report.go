package library

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// Reporter renders plain-text reports from catalog and ledger snapshots.
// It is a read-only consumer; nothing it does mutates a table.
type Reporter struct {
	w io.Writer
	m *Manager
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, m *Manager) *Reporter {
	return &Reporter{w: w, m: m}
}

// Inventory prints every book with its copy counts.
func (r *Reporter) Inventory() error {
	books, err := r.m.AllBooks()
	if err != nil {
		return err
	}

	fmt.Fprintln(r.w, "=== Library Inventory Report ===")
	fmt.Fprintf(r.w, "%-15s %-40s %-20s %-10s %-10s\n", "ISBN", "Title", "Author", "Available", "Total")
	fmt.Fprintln(r.w, divider)
	for _, b := range books {
		fmt.Fprintf(r.w, "%-15s %-40s %-20s %-10d %-10d\n",
			b.ISBN, truncate(b.Title, 37), truncate(b.Author, 17),
			b.AvailableCopies, b.TotalCopies)
	}
	fmt.Fprintln(r.w, divider)
	fmt.Fprintf(r.w, "Total Books: %d\n", len(books))
	return nil
}

// Overdue prints every loan overdue as of the given date.
func (r *Reporter) Overdue(asOf time.Time) error {
	overdue, err := r.m.Ledger().ListOverdue(asOf)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.w, "=== Overdue Books Report ===")
	fmt.Fprintf(r.w, "%-15s %-38s %-12s %-12s\n", "ISBN", "User ID", "Due Date", "Days Overdue")
	fmt.Fprintln(r.w, divider)
	for _, t := range overdue {
		daysOverdue := int(asOf.Sub(t.DueDate).Hours() / 24)
		fmt.Fprintf(r.w, "%-15s %-38s %-12s %-12d\n",
			t.ISBN, t.UserID, t.DueDate.Format(dateLayout), daysOverdue)
	}
	fmt.Fprintln(r.w, divider)
	fmt.Fprintf(r.w, "Total Overdue Books: %d\n", len(overdue))
	return nil
}

// UserActivity prints a user's full borrowing history.
func (r *Reporter) UserActivity(userID string) error {
	user, err := r.m.FindUser(userID)
	if err != nil {
		return err
	}
	loans, err := r.m.UserTransactions(userID)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.w, "=== User Activity Report ===")
	fmt.Fprintf(r.w, "User: %s (ID: %s)\n", user.Name, user.UserID)
	fmt.Fprintln(r.w, divider)
	fmt.Fprintf(r.w, "%-15s %-12s %-12s %-10s\n", "ISBN", "Borrow Date", "Return Date", "Status")
	fmt.Fprintln(r.w, divider)
	for _, t := range loans {
		returnDate := "-"
		if !t.ReturnDate.IsZero() {
			returnDate = t.ReturnDate.Format(dateLayout)
		}
		fmt.Fprintf(r.w, "%-15s %-12s %-12s %-10s\n",
			t.ISBN, t.BorrowDate.Format(dateLayout), returnDate, t.Status.DisplayName())
	}
	fmt.Fprintln(r.w, divider)
	fmt.Fprintf(r.w, "Total Transactions: %d\n", len(loans))
	return nil
}

// PopularBooks prints the topN most-borrowed titles by total loan count.
func (r *Reporter) PopularBooks(topN int) error {
	loans, err := r.m.Ledger().All()
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, t := range loans {
		counts[t.ISBN]++
	}
	isbns := make([]string, 0, len(counts))
	for isbn := range counts {
		isbns = append(isbns, isbn)
	}
	sort.Slice(isbns, func(i, j int) bool {
		if counts[isbns[i]] != counts[isbns[j]] {
			return counts[isbns[i]] > counts[isbns[j]]
		}
		return isbns[i] < isbns[j]
	})
	if len(isbns) > topN {
		isbns = isbns[:topN]
	}

	fmt.Fprintln(r.w, "=== Most Popular Books Report ===")
	fmt.Fprintf(r.w, "%-15s %-40s %-10s\n", "ISBN", "Title", "Borrows")
	fmt.Fprintln(r.w, divider)
	for _, isbn := range isbns {
		book, err := r.m.FindBook(isbn)
		if err != nil {
			// Loans can outlive a removed book; skip those.
			continue
		}
		fmt.Fprintf(r.w, "%-15s %-40s %-10d\n", book.ISBN, truncate(book.Title, 37), counts[isbn])
	}
	fmt.Fprintln(r.w, divider)
	return nil
}

const divider = "--------------------------------------------------------------------------------"

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
