package models

import "time"

type Book struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Author        string    `gorm:"size:255;not null;index" json:"author"`
	Genre         *string   `gorm:"size:100;index" json:"genre"`
	PublishedYear *int      `gorm:"column:published_year;index" json:"published_year"`
	CreatedAt     time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// BookPatch carries the fields of a partial update; nil means untouched.
type BookPatch struct {
	Title         *string
	Author        *string
	Genre         *string
	PublishedYear *int
	ClearGenre    bool
	ClearYear     bool
}

func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Genre == nil && p.PublishedYear == nil && !p.ClearGenre && !p.ClearYear
}

// BookFilter is the normalized listing filter. Genre and Author hold a
// single value matched as a substring; Genres and Authors hold repeated
// values matched exactly.
type BookFilter struct {
	Search  string
	Genre   string
	Genres  []string
	Author  string
	Authors []string
	Year    *int
	Limit   int
	Offset  int
}

type BookStats struct {
	TotalBooks   int64 `json:"totalBooks"`
	TotalAuthors int64 `json:"totalAuthors"`
	TotalGenres  int64 `json:"totalGenres"`
	RecentBooks  int64 `json:"recentBooks"`
}
