package library

import (
	"fmt"
	"strings"
)

// Catalog owns the books table and the availability-count invariant.
// Every mutation of AvailableCopies goes through AdjustAvailability, which
// refuses to push the count outside 0..TotalCopies.
type Catalog struct {
	books *Table[*Book]
}

// NewCatalog creates a catalog over the books table at path.
func NewCatalog(path string) *Catalog {
	return &Catalog{books: newBookTable(path)}
}

func newBookTable(path string) *Table[*Book] {
	return NewTable(path, Codec[*Book]{
		Header: bookHeader,
		Key:    func(b *Book) string { return b.ISBN },
		Encode: EncodeBook,
		Decode: DecodeBook,
	})
}

// Add appends a book to the table. It does not check for a duplicate ISBN;
// callers must verify the key is free first.
func (c *Catalog) Add(book *Book) error {
	return c.books.Append(book)
}

// Update replaces the stored book with the same ISBN. Silent no-op if the
// ISBN is unknown (see Table.UpdateByKey).
func (c *Catalog) Update(book *Book) error {
	return c.books.UpdateByKey(book)
}

// Remove deletes the book with the given ISBN.
func (c *Catalog) Remove(isbn string) error {
	return c.books.DeleteByKey(isbn)
}

// FindByISBN returns the book with the given ISBN, or ErrNotFound.
func (c *Catalog) FindByISBN(isbn string) (*Book, error) {
	return c.books.FindByKey(isbn)
}

// All returns every book in file order.
func (c *Catalog) All() ([]*Book, error) {
	return c.books.LoadAll()
}

// Search returns books whose title or author contains query (case
// sensitive) or whose ISBN equals it exactly, in file order.
func (c *Catalog) Search(query string) ([]*Book, error) {
	books, err := c.books.LoadAll()
	if err != nil {
		return nil, err
	}
	var matches []*Book
	for _, b := range books {
		if strings.Contains(b.Title, query) || strings.Contains(b.Author, query) || b.ISBN == query {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

// AdjustAvailability applies delta to a book's available-copy count and
// persists it. A delta that would take the count below zero or above
// TotalCopies is a logic error in the caller and is rejected without
// writing.
func (c *Catalog) AdjustAvailability(isbn string, delta int) error {
	book, err := c.books.FindByKey(isbn)
	if err != nil {
		return err
	}
	next := book.AvailableCopies + delta
	if next < 0 || next > book.TotalCopies {
		return fmt.Errorf("adjust %s by %d: available copies would be %d of %d total",
			isbn, delta, next, book.TotalCopies)
	}
	book.AdjustAvailableCopies(delta)
	return c.books.UpdateByKey(book)
}
