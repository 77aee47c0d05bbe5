package main

import (
	"context"
	"errors"
)

// ErrBookNotFound is returned when no book record matches the requested id.
var ErrBookNotFound = errors.New("book not found")

// Book represents a book entity.
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

// BookInput is the payload of a book creation or update request.
// Pointer fields allow to tell apart a missing field from its zero value.
type BookInput struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
}

// Book converts an already validated input into a Book without id.
func (in *BookInput) Book() Book {
	return Book{
		Title:  *in.Title,
		Author: *in.Author,
		Year:   *in.Year,
	}
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id int) (Book, error)
	Delete(ctx context.Context, id int) error
	Update(ctx context.Context, id int, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	DeleteAll(ctx context.Context) error
	Count() int
}
