package entity

import "time"

// SessionRecord - the durable header of one played game.
type SessionRecord struct {
	ID        string     `json:"id"`
	Config    GameConfig `json:"config"`
	StartedAt time.Time  `json:"started_at"`
}

// LoggedMove - one accepted move as written to the move log.
type LoggedMove struct {
	Seq  int       `json:"seq"`
	Side Side      `json:"side"`
	Move Move      `json:"move"`
	At   time.Time `json:"at"`
}
