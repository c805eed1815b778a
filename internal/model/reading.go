package model

import "time"

type ReadingProgress struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	BookID             string    `db:"book_id" json:"book_id"`
	CurrentPage        int       `db:"current_page" json:"current_page"`
	TotalPagesRead     int       `db:"total_pages_read" json:"total_pages_read"`
	ReadingTimeMinutes int       `db:"reading_time_minutes" json:"reading_time_minutes"`
	IsCompleted        bool      `db:"is_completed" json:"is_completed"`
	LastReadAt         time.Time `db:"last_read_at" json:"last_read_at"`
}

// Percent returns progress through a book of pageCount pages, 0..100.
func (p *ReadingProgress) Percent(pageCount int) int {
	if p == nil || pageCount <= 0 {
		return 0
	}
	if p.IsCompleted {
		return 100
	}
	pct := p.CurrentPage * 100 / pageCount
	if pct > 100 {
		pct = 100
	}
	return pct
}

type Bookmark struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	BookID     string    `db:"book_id" json:"book_id"`
	PageNumber int       `db:"page_number" json:"page_number"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RenderedPage is a book page ready for display.
type RenderedPage struct {
	PageNumber int     `json:"page_number"`
	HTML       string  `json:"html"`
	AudioURL   *string `json:"audio_url,omitempty"`
}
