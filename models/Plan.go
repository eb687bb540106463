package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan is a user-created night out: a host, a place, a start time and a
// capped guest list.
type Plan struct {
	gorm.Model
	HostID uint `json:"hostID" gorm:"not null;index"`
	Host   User `json:"host" gorm:"foreignKey:HostID"`

	Title       string  `json:"title" gorm:"size:120;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Location    string  `json:"location" gorm:"size:256"`
	City        string  `json:"city" gorm:"size:100;index"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	Energy     string         `json:"energy" gorm:"size:16;index"` // chill, social, hype
	PriceLevel int            `json:"priceLevel"`                  // 0 free .. 4 splurge
	Tags       datatypes.JSON `json:"tags"`
	CoverURL   string         `json:"coverURL" gorm:"size:512"`

	MaxAttendees int       `json:"maxAttendees" gorm:"not null"`
	StartsAt     time.Time `json:"startsAt" gorm:"index"`

	Attendees []PlanAttendee `json:"attendees" gorm:"foreignKey:PlanID"`
}

func (p *Plan) MarshalJSON() ([]byte, error) {
	type Alias Plan
	aux := &struct {
		Tags []string `json:"tags"`
		*Alias
	}{
		Tags:  []string{},
		Alias: (*Alias)(p),
	}

	if p.Tags != nil {
		var tags []string
		if err := json.Unmarshal(p.Tags, &tags); err == nil {
			aux.Tags = tags
		}
	}

	return json.Marshal(aux)
}
