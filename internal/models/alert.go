package models

import "time"

type Alert struct {
	ID          string
	SourceID    int64
	SourceTitle string
	Primary     string   // threat kind name, e.g. "Ballistic"
	Threats     []string // every kind in the message, primary included
	Proximity   string   // "district", "city", "oblast" or "none"
	Nationwide  bool
	Urgent      bool
	Status      bool // "no longer observed" update rather than a threat
	Text        string
	CreatedAt   time.Time
}

type Subscriber struct {
	ChatID  int64
	AddedAt time.Time
}
