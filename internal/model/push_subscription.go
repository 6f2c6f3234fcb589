package model

import "time"

// PushSubscription holds a browser push subscription together with the
// machines the subscriber wants slot-availability notifications for.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	Machines []*Machine `gorm:"many2many:subscription_machine_mapping;"`
}
