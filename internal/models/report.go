package models

import "time"

// ReportedUser flags an enrollment number as an unrecognized rider. The
// document id is derived from (institute, enrollNo) so re-reporting the same
// enrollment number is a single atomic upsert; the images at the matching
// storage prefix accumulate across reports and are never deleted here.
type ReportedUser struct {
	ID         string    `bson:"_id" json:"-"`
	Institute  string    `bson:"institute" json:"-"`
	EnrollNo   string    `bson:"enrollNo" json:"enrollNo"`
	Date       time.Time `bson:"date" json:"date"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
}

// ReportedUserID is the deterministic document key for a report.
func ReportedUserID(institute, enrollNo string) string {
	return institute + ":" + enrollNo
}

// ImageSet is the resolved photo evidence for one reported enrollment
// number, partitioned by source listing.
type ImageSet struct {
	Thumbnails []string `json:"thumbnails"`
	Originals  []string `json:"originals"`
}
