package model

import "time"

type Book struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Description     *string   `db:"description" json:"description,omitempty"`
	AuthorID        *string   `db:"author_id" json:"author_id,omitempty"`
	GenreID         *string   `db:"genre_id" json:"genre_id,omitempty"`
	CoverImage      *string   `db:"cover_image" json:"cover_image,omitempty"`
	PriceCents      int       `db:"price_cents" json:"price_cents"`
	ISBN            *string   `db:"isbn" json:"isbn,omitempty"`
	PageCount       int       `db:"page_count" json:"page_count"`
	Language        string    `db:"language" json:"language"`
	Publisher       *string   `db:"publisher" json:"publisher,omitempty"`
	PublicationDate *string   `db:"publication_date" json:"publication_date,omitempty"`
	IsFeatured      bool      `db:"is_featured" json:"is_featured"`
	IsPremium       bool      `db:"is_premium" json:"is_premium"`
	AverageRating   float64   `db:"average_rating" json:"average_rating"`
	TotalRatings    int       `db:"total_ratings" json:"total_ratings"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (b *Book) IsFree() bool {
	return b.PriceCents == 0 && !b.IsPremium
}

type Author struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Genre struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

type BookTag struct {
	ID      string `db:"id" json:"id"`
	BookID  string `db:"book_id" json:"book_id"`
	TagName string `db:"tag_name" json:"tag_name"`
	TagType string `db:"tag_type" json:"tag_type"`
}

type BookPage struct {
	ID         string  `db:"id" json:"id"`
	BookID     string  `db:"book_id" json:"book_id"`
	PageNumber int     `db:"page_number" json:"page_number"`
	Content    string  `db:"content" json:"content"`
	AudioURL   *string `db:"audio_url" json:"audio_url,omitempty"`
}

// BookDetail is a book with its related catalog rows.
type BookDetail struct {
	Book
	Author *Author   `json:"author,omitempty"`
	Genre  *Genre    `json:"genre,omitempty"`
	Tags   []BookTag `json:"tags"`
}

// Catalog sort keys.
const (
	SortNewest = "created_at"
	SortPrice  = "price"
	SortRating = "rating"
	SortTitle  = "title"
)
