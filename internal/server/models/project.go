package models

import "time"

type Project struct {
	ID          int64
	Title       string
	OwnerID     int64
	CreatedOn   time.Time
	LastUpdated *time.Time
}
