// Command export_sqlite dumps the flat-file library tables into a SQLite
// database so the data can be queried with ad-hoc SQL. The export is a
// point-in-time snapshot; the CSV tables remain the source of truth.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"library-lending/library"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	dataDir := flag.String("data-dir", "data", "directory holding the library tables")
	out := flag.String("out", "library.db", "path of the SQLite database to write")
	flag.Parse()

	manager, err := library.NewManager(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data directory: %v\n", err)
		os.Exit(1)
	}

	if err := os.Remove(*out); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error removing stale export: %v\n", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", *out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sqlite: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := export(manager, db); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported to %s\n", *out)
}

func export(manager *library.Manager, db *sql.DB) error {
	schema := []string{
		`CREATE TABLE books (
            isbn TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            is_available BOOLEAN NOT NULL,
            total_copies INTEGER NOT NULL,
            available_copies INTEGER NOT NULL
        );`,
		`CREATE TABLE users (
            user_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            role TEXT NOT NULL,
            is_active BOOLEAN NOT NULL
        );`,
		`CREATE TABLE transactions (
            transaction_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            isbn TEXT NOT NULL,
            borrow_date TEXT NOT NULL,
            due_date TEXT NOT NULL,
            return_date TEXT,
            status TEXT NOT NULL
        );`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	books, err := manager.AllBooks()
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	users, err := manager.AllUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	transactions, err := manager.Ledger().All()
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, b := range books {
		if _, err := tx.Exec(
			`INSERT INTO books(isbn,title,author,genre,is_available,total_copies,available_copies) VALUES(?,?,?,?,?,?,?)`,
			b.ISBN, b.Title, b.Author, b.Genre.Name(), b.IsAvailable, b.TotalCopies, b.AvailableCopies,
		); err != nil {
			return fmt.Errorf("insert book %s: %w", b.ISBN, err)
		}
	}
	// Password hashes stay in the CSV table; the export is for analysis only.
	for _, u := range users {
		if _, err := tx.Exec(
			`INSERT INTO users(user_id,name,email,role,is_active) VALUES(?,?,?,?,?)`,
			u.UserID, u.Name, u.Email, u.Role.Name(), u.IsActive,
		); err != nil {
			return fmt.Errorf("insert user %s: %w", u.UserID, err)
		}
	}
	for _, t := range transactions {
		var returnDate any
		if !t.ReturnDate.IsZero() {
			returnDate = t.ReturnDate.Format("2006-01-02")
		}
		if _, err := tx.Exec(
			`INSERT INTO transactions(transaction_id,user_id,isbn,borrow_date,due_date,return_date,status) VALUES(?,?,?,?,?,?,?)`,
			t.TransactionID, t.UserID, t.ISBN,
			t.BorrowDate.Format("2006-01-02"), t.DueDate.Format("2006-01-02"),
			returnDate, t.Status.Name(),
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	fmt.Printf("Books: %d, Users: %d, Transactions: %d (as of %s)\n",
		len(books), len(users), len(transactions), time.Now().Format(time.RFC3339))
	return nil
}
