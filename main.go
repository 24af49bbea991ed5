package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"library-lending/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dataDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "library-lending",
		Short: "Library inventory and lending management over flat-file tables",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "directory holding the books/users/transactions tables")

	rootCmd.AddCommand(shellCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openManager() (*library.Manager, error) {
	mgr, err := library.NewManager(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open data directory %s: %w", dataDir, err)
	}
	return mgr, nil
}

// ---------------------------------------------------------------------------
// report subcommands
// ---------------------------------------------------------------------------

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render reports from the current tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "inventory",
		Short: "List every book with its copy counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			return library.NewReporter(os.Stdout, mgr).Inventory()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "overdue",
		Short: "List every loan past its due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			return library.NewReporter(os.Stdout, mgr).Overdue(time.Now().UTC())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "user <user-id>",
		Short: "Show a user's borrowing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			return library.NewReporter(os.Stdout, mgr).UserActivity(args[0])
		},
	})

	popular := &cobra.Command{
		Use:   "popular [top-n]",
		Short: "Show the most-borrowed titles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topN := 5
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid top-n: %s", args[0])
				}
				topN = n
			}
			mgr, err := openManager()
			if err != nil {
				return err
			}
			return library.NewReporter(os.Stdout, mgr).PopularBooks(topN)
		},
	}
	cmd.AddCommand(popular)

	return cmd
}

// ---------------------------------------------------------------------------
// interactive shell
// ---------------------------------------------------------------------------

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive lending shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			runShell(mgr)
			return nil
		},
	}
}

type shellSession struct {
	mgr  *library.Manager
	user *library.User
}

func runShell(mgr *library.Manager) {
	s := &shellSession{mgr: mgr}
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the Library Lending System!")
	fmt.Println("Available commands:")
	fmt.Println("  Session: login, logout, change password")
	fmt.Println("  Books: add book, list books, search book, remove book")
	fmt.Println("  Lending: borrow, return, renew, my loans, overdue")
	fmt.Println("  Users: add user, list users, deactivate user")
	fmt.Println("  System: exit")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		cmd := strings.TrimSpace(scanner.Text())

		switch cmd {
		case "login":
			s.handleLogin(scanner)
		case "logout":
			s.user = nil
			fmt.Println("Logged out.")
		case "change password":
			s.handleChangePassword(scanner)
		case "add book":
			s.handleAddBook(scanner)
		case "list books":
			s.handleListBooks()
		case "search book":
			s.handleSearchBooks(scanner)
		case "remove book":
			s.handleRemoveBook(scanner)
		case "borrow":
			s.handleBorrow(scanner)
		case "return":
			s.handleReturn(scanner)
		case "renew":
			s.handleRenew(scanner)
		case "my loans":
			s.handleMyLoans()
		case "overdue":
			s.handleOverdue()
		case "add user":
			s.handleAddUser(scanner)
		case "list users":
			s.handleListUsers()
		case "deactivate user":
			s.handleDeactivateUser(scanner)
		case "exit":
			fmt.Println("Goodbye!")
			return
		case "":
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// requireLogin reports whether a user is logged in.
func (s *shellSession) requireLogin() bool {
	if s.user == nil {
		fmt.Println("Please 'login' first.")
		return false
	}
	return true
}

// requireLibrarian reports whether the logged-in user has librarian
// privileges or better.
func (s *shellSession) requireLibrarian() bool {
	if !s.requireLogin() {
		return false
	}
	if !s.user.Role.HasPrivilegeOver(library.RoleLibrarian) {
		fmt.Println("This command requires librarian privileges.")
		return false
	}
	return true
}

func (s *shellSession) handleLogin(sc *bufio.Scanner) {
	email, ok := prompt(sc, "Email: ")
	if !ok {
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	user, err := s.mgr.Authenticate(email, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	s.user = user
	fmt.Printf("Welcome, %s (%s)\n", user.Name, user.Role.DisplayName())
}

func (s *shellSession) handleChangePassword(sc *bufio.Scanner) {
	if !s.requireLogin() {
		return
	}
	oldPassword, err := readPassword("Current password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	newPassword, err := readPassword("New password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if strings.TrimSpace(newPassword) == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}
	if err := s.mgr.ChangePassword(s.user.UserID, oldPassword, newPassword); err != nil {
		fmt.Printf("Error changing password: %v\n", err)
		return
	}
	fmt.Println("Password changed.")
}

func (s *shellSession) handleAddBook(sc *bufio.Scanner) {
	if !s.requireLibrarian() {
		return
	}
	isbn, ok := prompt(sc, "ISBN: ")
	if !ok {
		return
	}
	title, ok := prompt(sc, "Title: ")
	if !ok {
		return
	}
	author, ok := prompt(sc, "Author: ")
	if !ok {
		return
	}
	genreStr, ok := prompt(sc, "Genre: ")
	if !ok {
		return
	}
	genre, err := library.ParseGenre(genreStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	copiesStr, ok := prompt(sc, "Total copies: ")
	if !ok {
		return
	}
	copies, err := strconv.Atoi(copiesStr)
	if err != nil || copies < 0 {
		fmt.Printf("Invalid copy count: %s\n", copiesStr)
		return
	}

	book := library.NewBook(isbn, title, author, genre, copies)
	if err := s.mgr.AddBook(book); err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added '%s' (%d copies)\n", title, copies)
}

func (s *shellSession) handleListBooks() {
	books, err := s.mgr.AllBooks()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Println("No books in library.")
		return
	}
	printBookTable(books)
}

func (s *shellSession) handleSearchBooks(sc *bufio.Scanner) {
	query, ok := prompt(sc, "Query: ")
	if !ok {
		return
	}
	books, err := s.mgr.SearchBooks(query)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s) matching '%s':\n", len(books), query)
	printBookTable(books)
}

func printBookTable(books []*library.Book) {
	fmt.Printf("%-15s %-35s %-25s %-18s %-10s %-6s\n", "ISBN", "Title", "Author", "Genre", "Available", "Total")
	fmt.Println(strings.Repeat("-", 115))
	for _, b := range books {
		fmt.Printf("%-15s %-35s %-25s %-18s %-10d %-6d\n",
			b.ISBN,
			truncateString(b.Title, 35),
			truncateString(b.Author, 25),
			b.Genre.DisplayName(),
			b.AvailableCopies,
			b.TotalCopies)
	}
}

func (s *shellSession) handleRemoveBook(sc *bufio.Scanner) {
	if !s.requireLibrarian() {
		return
	}
	isbn, ok := prompt(sc, "ISBN: ")
	if !ok {
		return
	}
	book, err := s.mgr.FindBook(isbn)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := s.mgr.RemoveBook(isbn); err != nil {
		fmt.Printf("Error removing book: %v\n", err)
		return
	}
	fmt.Printf("Removed '%s'\n", book.Title)
}

func (s *shellSession) handleBorrow(sc *bufio.Scanner) {
	if !s.requireLogin() {
		return
	}
	isbn, ok := prompt(sc, "ISBN: ")
	if !ok {
		return
	}
	daysStr, ok := prompt(sc, fmt.Sprintf("Loan days (default %d): ", library.DefaultLoanPeriodDays))
	if !ok {
		return
	}
	days := library.DefaultLoanPeriodDays
	if daysStr != "" {
		n, err := strconv.Atoi(daysStr)
		if err != nil || n <= 0 {
			fmt.Printf("Invalid loan days: %s\n", daysStr)
			return
		}
		days = n
	}

	eligible, err := s.mgr.CanBorrow(s.user)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !eligible {
		fmt.Printf("You have reached the %d-loan limit. Return a book first.\n", library.MaxActiveLoans)
		return
	}

	txn, err := s.mgr.Borrow(s.user.UserID, isbn, days)
	if err != nil {
		fmt.Printf("Error borrowing book: %v\n", err)
		return
	}
	fmt.Printf("Borrowed. Transaction %s, due %s\n", txn.TransactionID, txn.DueDate.Format("2006-01-02"))
}

func (s *shellSession) handleReturn(sc *bufio.Scanner) {
	if !s.requireLogin() {
		return
	}
	id, ok := prompt(sc, "Transaction ID: ")
	if !ok {
		return
	}
	txn, err := s.mgr.Return(id)
	if err != nil {
		fmt.Printf("Error returning book: %v\n", err)
		return
	}
	fmt.Printf("Returned %s on %s\n", txn.ISBN, txn.ReturnDate.Format("2006-01-02"))
}

func (s *shellSession) handleRenew(sc *bufio.Scanner) {
	if !s.requireLogin() {
		return
	}
	id, ok := prompt(sc, "Transaction ID: ")
	if !ok {
		return
	}
	daysStr, ok := prompt(sc, "Extension days: ")
	if !ok {
		return
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		fmt.Printf("Invalid extension days: %s\n", daysStr)
		return
	}
	txn, err := s.mgr.Renew(id, days)
	if err != nil {
		fmt.Printf("Error renewing loan: %v\n", err)
		return
	}
	fmt.Printf("Renewed. New due date %s\n", txn.DueDate.Format("2006-01-02"))
}

func (s *shellSession) handleMyLoans() {
	if !s.requireLogin() {
		return
	}
	loans, err := s.mgr.UserTransactions(s.user.UserID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(loans) == 0 {
		fmt.Println("No loans on record.")
		return
	}
	fmt.Printf("%-38s %-15s %-12s %-12s %-10s\n", "Transaction", "ISBN", "Borrowed", "Due", "Status")
	fmt.Println(strings.Repeat("-", 92))
	for _, t := range loans {
		fmt.Printf("%-38s %-15s %-12s %-12s %-10s\n",
			t.TransactionID, t.ISBN,
			t.BorrowDate.Format("2006-01-02"),
			t.DueDate.Format("2006-01-02"),
			t.Status.DisplayName())
	}
}

func (s *shellSession) handleOverdue() {
	if !s.requireLibrarian() {
		return
	}
	if err := library.NewReporter(os.Stdout, s.mgr).Overdue(time.Now().UTC()); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func (s *shellSession) handleAddUser(sc *bufio.Scanner) {
	if !s.requireLibrarian() {
		return
	}
	name, ok := prompt(sc, "Name: ")
	if !ok {
		return
	}
	email, ok := prompt(sc, "Email: ")
	if !ok {
		return
	}
	roleStr, ok := prompt(sc, "Role (admin/librarian/member/guest): ")
	if !ok {
		return
	}
	role, err := library.ParseUserRole(roleStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	password, err := readPassword(fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if strings.TrimSpace(password) == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}

	user, err := s.mgr.AddUser(name, email, password, role)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Added %s '%s' with ID %s\n", role.DisplayName(), name, user.UserID)
}

func (s *shellSession) handleListUsers() {
	if !s.requireLibrarian() {
		return
	}
	users, err := s.mgr.AllUsers()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(users) == 0 {
		fmt.Println("No users registered.")
		return
	}
	fmt.Printf("%-38s %-25s %-30s %-14s %-8s\n", "ID", "Name", "Email", "Role", "Active")
	fmt.Println(strings.Repeat("-", 118))
	for _, u := range users {
		fmt.Printf("%-38s %-25s %-30s %-14s %-8t\n",
			u.UserID, truncateString(u.Name, 25), truncateString(u.Email, 30),
			u.Role.DisplayName(), u.IsActive)
	}
}

func (s *shellSession) handleDeactivateUser(sc *bufio.Scanner) {
	if !s.requireLibrarian() {
		return
	}
	id, ok := prompt(sc, "User ID: ")
	if !ok {
		return
	}
	user, err := s.mgr.FindUser(id)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := s.mgr.DeactivateUser(id); err != nil {
		fmt.Printf("Error deactivating user: %v\n", err)
		return
	}
	fmt.Printf("Deactivated %s\n", user.Name)
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
