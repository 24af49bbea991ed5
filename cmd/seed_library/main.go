package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"library-lending/library"
)

type seedBook struct {
	isbn   string
	title  string
	author string
	genre  library.Genre
	copies int
}

type seedUser struct {
	name     string
	email    string
	password string
	role     library.UserRole
}

func main() {
	dataDir := flag.String("data-dir", "data", "directory holding the library tables")
	flag.Parse()

	// Start from a clean slate.
	fmt.Println("Cleaning up existing table files...")
	for _, name := range []string{"books.csv", "users.csv", "transactions.csv"} {
		path := filepath.Join(*dataDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", path, err)
		}
	}
	fmt.Println("Cleanup complete.")

	manager, err := library.NewManager(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data directory: %v\n", err)
		os.Exit(1)
	}

	books := []seedBook{
		{"9780451524935", "1984", "George Orwell", library.GenreFiction, 4},
		{"9780452284241", "Animal Farm", "George Orwell", library.GenreFiction, 3},
		{"9780553296983", "The Diary of a Young Girl", "Anne Frank", library.GenreBiography, 2},
		{"9781590302255", "The Art of War", "Sun Tzu", library.GenrePhilosophy, 2},
		{"9780547928210", "The Fellowship of the Ring", "J.R.R. Tolkien", library.GenreFantasy, 5},
		{"9780547928203", "The Two Towers", "J.R.R. Tolkien", library.GenreFantasy, 5},
		{"9780547928197", "The Return of the King", "J.R.R. Tolkien", library.GenreFantasy, 5},
		{"9780060850524", "Brave New World", "Aldous Huxley", library.GenreScienceFiction, 3},
		{"9780743477116", "Romeo and Juliet", "William Shakespeare", library.GenreDrama, 2},
		{"9780199538713", "The Three Musketeers", "Alexandre Dumas", library.GenreFiction, 2},
		{"9780441013593", "Dune", "Frank Herbert", library.GenreScienceFiction, 3},
		{"9780307474278", "The Da Vinci Code", "Dan Brown", library.GenreThriller, 4},
	}

	users := []seedUser{
		{"System Administrator", "admin@library.com", "admin123", library.RoleAdmin},
		{"John Smith", "john.smith@library.com", "password123", library.RoleLibrarian},
		{"Alice Johnson", "alice.johnson@example.com", "alice123", library.RoleMember},
		{"Bob Williams", "bob.williams@example.com", "bob123", library.RoleMember},
		{"Guest Account", "guest@example.com", "guest123", library.RoleGuest},
	}

	fmt.Printf("Seeding %s...\n", *dataDir)

	successCount := 0
	errorCount := 0

	for _, b := range books {
		fmt.Printf("Adding: %s by %s... ", b.title, b.author)
		book := library.NewBook(b.isbn, b.title, b.author, b.genre, b.copies)
		if err := manager.AddBook(book); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Println("SUCCESS")
		successCount++
	}

	for _, u := range users {
		fmt.Printf("Adding user: %s (%s)... ", u.name, u.role.DisplayName())
		user, err := manager.AddUser(u.name, u.email, u.password, u.role)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", user.UserID)
		successCount++
	}

	fmt.Printf("\nSeeding complete!\n")
	fmt.Printf("Records created: %d\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog:")
		seeded, err := manager.AllBooks()
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
			return
		}
		fmt.Printf("%-15s %-40s %-25s %-6s\n", "ISBN", "Title", "Author", "Copies")
		fmt.Println(strings.Repeat("-", 90))
		for _, book := range seeded {
			fmt.Printf("%-15s %-40s %-25s %-6d\n", book.ISBN, book.Title, book.Author, book.TotalCopies)
		}
	}
}
