package models

import "time"

// Rider genders accepted by the user forms.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// UserRecord is a bus rider. enrollNo is unique within an institute;
// emailOrPhone is the login identifier and immutable after creation. BusNo
// may be empty while a rider is between bus assignments.
type UserRecord struct {
	ID           string     `bson:"_id" json:"id"`
	Institute    string     `bson:"institute" json:"institute"`
	Name         string     `bson:"name" json:"name"`
	FatherName   string     `bson:"fatherName" json:"fatherName"`
	EnrollNo     string     `bson:"enrollNo" json:"enrollNo"`
	Department   string     `bson:"department" json:"department"`
	EmailOrPhone string     `bson:"emailOrPhone" json:"emailOrPhone"`
	Phone        string     `bson:"phone" json:"phone"`
	Gender       string     `bson:"gender" json:"gender"`
	City         string     `bson:"city" json:"city"`
	BusStop      string     `bson:"busStop" json:"busStop"`
	BusNo        string     `bson:"busNo,omitempty" json:"busNo,omitempty"`
	Address      string     `bson:"address" json:"address"`
	ValidUpto    string     `bson:"validUpto" json:"validUpto"` // "2006-01" month granularity
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}
