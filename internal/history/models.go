package history

import "time"

// DaySummary is written when the tracker rolls over to a new calendar day.
type DaySummary struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Day            string    `gorm:"not null;uniqueIndex" json:"day"` // YYYY-MM-DD
	TrackedSeconds int64     `gorm:"not null;default:0" json:"tracked_seconds"`
	Switches       int       `gorm:"not null;default:0" json:"switches"`
	SessionID      string    `json:"session_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ArchivedSwitch holds a switch event pruned from the bounded in-memory log.
type ArchivedSwitch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"not null" json:"type"`
	FromID    int       `json:"from_id"`
	ToID      int       `json:"to_id"`
	Domain    string    `gorm:"not null;index" json:"domain"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
