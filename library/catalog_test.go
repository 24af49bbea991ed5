package library

import (
	"errors"
	"path/filepath"
	"testing"
)

func tempCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(filepath.Join(t.TempDir(), "books.csv"))
	if err := c.books.EnsureExists(); err != nil {
		t.Fatalf("ensure books table: %v", err)
	}
	return c
}

func TestCatalogSearch(t *testing.T) {
	c := tempCatalog(t)
	for _, b := range []*Book{
		NewBook("9780451524935", "1984", "George Orwell", GenreFiction, 2),
		NewBook("9780452284241", "Animal Farm", "George Orwell", GenreFiction, 1),
		NewBook("9780547928210", "The Fellowship of the Ring", "J.R.R. Tolkien", GenreFantasy, 3),
	} {
		if err := c.Add(b); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	byAuthor, err := c.Search("Orwell")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byAuthor) != 2 {
		t.Fatalf("want 2 Orwell books, got %d", len(byAuthor))
	}
	// File order is preserved.
	if byAuthor[0].Title != "1984" || byAuthor[1].Title != "Animal Farm" {
		t.Fatalf("search order wrong: %+v", byAuthor)
	}

	byTitle, _ := c.Search("Fellowship")
	if len(byTitle) != 1 {
		t.Fatalf("want 1 title match, got %d", len(byTitle))
	}

	byISBN, _ := c.Search("9780451524935")
	if len(byISBN) != 1 || byISBN[0].Title != "1984" {
		t.Fatalf("exact ISBN match failed: %+v", byISBN)
	}

	// Substring match is case sensitive.
	lower, _ := c.Search("orwell")
	if len(lower) != 0 {
		t.Fatalf("case-sensitive search should miss, got %+v", lower)
	}
}

func TestAdjustAvailability(t *testing.T) {
	c := tempCatalog(t)
	if err := c.Add(NewBook("111", "Book", "Author", GenreScience, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := c.AdjustAvailability("111", -1); err != nil {
		t.Fatalf("adjust -1: %v", err)
	}
	book, _ := c.FindByISBN("111")
	if book.AvailableCopies != 1 || !book.IsAvailable {
		t.Fatalf("after first borrow: %+v", book)
	}

	if err := c.AdjustAvailability("111", -1); err != nil {
		t.Fatalf("adjust -1: %v", err)
	}
	book, _ = c.FindByISBN("111")
	if book.AvailableCopies != 0 || book.IsAvailable {
		t.Fatalf("after second borrow: %+v", book)
	}

	// Below zero and above total are logic errors, rejected unpersisted.
	if err := c.AdjustAvailability("111", -1); err == nil {
		t.Fatal("adjust below zero should fail")
	}
	book, _ = c.FindByISBN("111")
	if book.AvailableCopies != 0 {
		t.Fatalf("failed adjust must not persist: %+v", book)
	}

	if err := c.AdjustAvailability("111", +3); err == nil {
		t.Fatal("adjust above total should fail")
	}

	if err := c.AdjustAvailability("missing", -1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown ISBN, got %v", err)
	}
}

func TestCatalogRemove(t *testing.T) {
	c := tempCatalog(t)
	if err := c.Add(NewBook("111", "Book", "Author", GenreArt, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Remove("111"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := c.FindByISBN("111"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after remove, got %v", err)
	}
}
