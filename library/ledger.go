package library

import (
	"fmt"
	"time"
)

// Ledger owns the transactions table and the loan status state machine.
// Overdue is always computed against a caller-supplied date; the ledger
// never persists an overdue status on its own.
type Ledger struct {
	transactions *Table[*Transaction]
}

// NewLedger creates a ledger over the transactions table at path.
func NewLedger(path string) *Ledger {
	return &Ledger{transactions: newTransactionTable(path)}
}

func newTransactionTable(path string) *Table[*Transaction] {
	return NewTable(path, Codec[*Transaction]{
		Header: transactionHeader,
		Key:    func(t *Transaction) string { return t.TransactionID },
		Encode: EncodeTransaction,
		Decode: DecodeTransaction,
	})
}

// Create opens a new ACTIVE loan and appends it to the table.
func (l *Ledger) Create(userID, isbn string, loanPeriodDays int) (*Transaction, error) {
	txn := NewTransaction(userID, isbn, loanPeriodDays)
	if err := l.transactions.Append(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// FindByID returns the transaction with the given id, or ErrNotFound.
func (l *Ledger) FindByID(id string) (*Transaction, error) {
	return l.transactions.FindByKey(id)
}

// All returns every transaction in file order.
func (l *Ledger) All() ([]*Transaction, error) {
	return l.transactions.LoadAll()
}

// ListByUser returns every transaction belonging to userID, in file order.
func (l *Ledger) ListByUser(userID string) ([]*Transaction, error) {
	all, err := l.transactions.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []*Transaction
	for _, t := range all {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListOverdue returns every loan that is overdue as of the given date:
// any status except COMPLETED with a due date before asOf.
func (l *Ledger) ListOverdue(asOf time.Time) ([]*Transaction, error) {
	all, err := l.transactions.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []*Transaction
	for _, t := range all {
		if t.IsOverdueAt(asOf) {
			out = append(out, t)
		}
	}
	return out, nil
}

// CountActiveByUser counts the user's loans with status ACTIVE or RENEWED.
func (l *Ledger) CountActiveByUser(userID string) (int, error) {
	loans, err := l.ListByUser(userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range loans {
		if t.Status == StatusActive || t.Status == StatusRenewed {
			n++
		}
	}
	return n, nil
}

// Complete marks the transaction returned today and persists it. Fails with
// ErrInvalidTransactionState if the loan is already COMPLETED.
func (l *Ledger) Complete(id string) (*Transaction, error) {
	txn, err := l.transactions.FindByKey(id)
	if err != nil {
		return nil, err
	}
	if err := txn.Complete(); err != nil {
		return nil, fmt.Errorf("complete %s: %w", id, err)
	}
	if err := l.transactions.UpdateByKey(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Renew extends the loan's due date by extensionDays and persists it. Fails
// with ErrInvalidTransactionState unless the loan is ACTIVE or RENEWED, and
// with ErrNotFound if the id is unknown.
func (l *Ledger) Renew(id string, extensionDays int) (*Transaction, error) {
	txn, err := l.transactions.FindByKey(id)
	if err != nil {
		return nil, err
	}
	if err := txn.Renew(extensionDays); err != nil {
		return nil, fmt.Errorf("renew %s: %w", id, err)
	}
	if err := l.transactions.UpdateByKey(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// SetStatus assigns a status directly, bypassing the state machine. This is
// the administrative override path for LOST and RESERVED, which no modeled
// transition reaches.
func (l *Ledger) SetStatus(id string, status TransactionStatus) (*Transaction, error) {
	txn, err := l.transactions.FindByKey(id)
	if err != nil {
		return nil, err
	}
	txn.Status = status
	if err := l.transactions.UpdateByKey(txn); err != nil {
		return nil, err
	}
	return txn, nil
}
