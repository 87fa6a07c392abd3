package models

import "time"

// AdminRecord is an institute admin's profile document. The userId is the
// identity-provider subject and never changes once issued.
type AdminRecord struct {
	UserID      string     `bson:"_id" json:"userId"`
	Name        string     `bson:"name" json:"name"`
	Email       string     `bson:"email" json:"email"`
	Phone       string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Institute   string     `bson:"institute" json:"institute"`
	IsHided     bool       `bson:"isHided,omitempty" json:"-"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	LastLoginAt *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}
