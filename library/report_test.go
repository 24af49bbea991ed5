package library

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReports(t *testing.T) {
	mgr := tempManager(t)
	alice := addMember(t, mgr, "alice")
	bob := addMember(t, mgr, "bob")

	require.NoError(t, mgr.AddBook(NewBook("X-001", "Popular Pick", "Author", GenreFiction, 3)))
	require.NoError(t, mgr.AddBook(NewBook("X-002", "Slow Mover", "Author", GenreDrama, 2)))

	first, err := mgr.Borrow(alice.UserID, "X-001", 14)
	require.NoError(t, err)
	_, err = mgr.Borrow(bob.UserID, "X-001", 14)
	require.NoError(t, err)
	_, err = mgr.Borrow(alice.UserID, "X-002", 14)
	require.NoError(t, err)
	_, err = mgr.Return(first.TransactionID)
	require.NoError(t, err)

	var buf bytes.Buffer
	rep := NewReporter(&buf, mgr)

	require.NoError(t, rep.Inventory())
	out := buf.String()
	require.Contains(t, out, "Popular Pick")
	require.Contains(t, out, "Total Books: 2")

	buf.Reset()
	require.NoError(t, rep.Overdue(first.DueDate.AddDate(0, 0, 3)))
	out = buf.String()
	require.Contains(t, out, "Total Overdue Books: 2")
	require.NotContains(t, out, first.TransactionID, "completed loans never show as overdue")

	buf.Reset()
	require.NoError(t, rep.UserActivity(alice.UserID))
	out = buf.String()
	require.Contains(t, out, alice.UserID)
	require.Contains(t, out, "Total Transactions: 2")

	buf.Reset()
	require.NoError(t, rep.PopularBooks(1))
	out = buf.String()
	require.Contains(t, out, "X-001")
	require.NotContains(t, out, "Slow Mover")

	require.ErrorIs(t, rep.UserActivity("no-such-user"), ErrNotFound)
}
