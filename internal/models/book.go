package models

import "time"

type Book struct {
	ID        string
	ISBN      string
	Title     string
	Author    string
	Publisher string
	Year      int
	Copies    int
	Available int
	CreatedAt time.Time
	UpdatedAt time.Time
}
