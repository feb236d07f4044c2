package model

import "time"

// Article is one row of the financial-news headline corpus.
type Article struct {
	Headline        string
	URL             string
	Publisher       string
	PublisherDomain string // lower-cased part after '@', or "not_email"
	Date            time.Time
	Stock           string
}
