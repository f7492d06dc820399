package domain

import "time"

// ActivitiesPath is the store path of the admin activity log.
const ActivitiesPath = "activities"

type ActivityType string

const (
	ActivityAdd    ActivityType = "add"
	ActivityDelete ActivityType = "delete"
)

// Activity is an append-only audit record of a medicine add or delete.
type Activity struct {
	ID           string       `json:"id"`
	Type         ActivityType `json:"type"`
	MedicineName string       `json:"medicine_name"`
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	Timestamp    time.Time    `json:"timestamp"`
}
