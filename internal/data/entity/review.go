package entity

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID       uuid.UUID `db:"id"`
	TitleID  uuid.UUID `db:"title_id"`
	AuthorID uuid.UUID `db:"author_id"`
	Text     string    `db:"text"`
	Score    int       `db:"score"` // 1-10
	PubDate  time.Time `db:"pub_date"`

	// AuthorUsername is joined in on reads.
	AuthorUsername string `db:"author_username"`
}
