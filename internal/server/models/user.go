package models

import "time"

type User struct {
	ID             int64
	Name           string
	Email          string
	Timezone       string
	HashedPassword string
	IsActive       bool
	CreatedOn      time.Time
	LastUpdated    *time.Time
}
