package models

import (
	"time"
)

// Cat rows keep the location as plain longitude/latitude columns; region
// queries build the PostGIS point on the fly.
type Cat struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	CatName   string    `json:"cat_name" gorm:"type:text;not null"`
	Weight    float64   `json:"weight" gorm:"type:double precision;not null"`
	OwnerID   string    `json:"owner" gorm:"type:text;not null;index"`
	Filename  string    `json:"filename" gorm:"type:text;not null"`
	Birthdate time.Time `json:"birthdate" gorm:"type:timestamp with time zone;not null"`
	Longitude float64   `json:"longitude" gorm:"type:double precision;not null"`
	Latitude  float64   `json:"latitude" gorm:"type:double precision;not null"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate     time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
