package model

// Book is a catalog entry. Weight is in grams.
type Book struct {
	ID         int64  `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Author     string `db:"author" json:"author"`
	Publisher  string `db:"publisher" json:"publisher"`
	PubYear    int    `db:"pub_year" json:"pubYear"`
	CoverURL   string `db:"cover_url" json:"coverUrl"`
	TotalPages int    `db:"item_page" json:"totalPages"`
	Genre      string `db:"genre" json:"genre"`
	Weight     int    `db:"weight" json:"weight"`
}
