package models

import "time"

// Task is one open item on the operator's checklist. Open tasks feed the
// brief pack; the store itself lives behind repository.TaskStore.
type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}
