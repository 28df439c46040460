package models

import "time"

// Message is one post from a monitored alert channel.
type Message struct {
	SourceID    int64
	SourceTitle string
	Text        string
	ReceivedAt  time.Time
}
