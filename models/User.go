package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"-"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio" gorm:"type:text"`
	City                string         `json:"city"`
	Interests           datatypes.JSON `json:"interests"`
	SavedPlans          datatypes.JSON `json:"savedPlans"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	HostLevel           int            `json:"hostLevel" gorm:"default:1"`
	HostedPlans         []Plan         `json:"hostedPlans" gorm:"foreignKey:HostID;references:ID"`
}

// Custom JSON marshaling so the datatypes.JSON columns render as arrays
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Interests  []string `json:"interests,omitempty"`
		SavedPlans []uint   `json:"savedPlans,omitempty"`
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		Interests:  []string{},
		SavedPlans: []uint{},
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.Interests != nil {
		var interests []string
		if err := json.Unmarshal(u.Interests, &interests); err == nil {
			aux.Interests = interests
		}
	}

	if u.SavedPlans != nil {
		var savedPlans []uint
		if err := json.Unmarshal(u.SavedPlans, &savedPlans); err == nil {
			aux.SavedPlans = savedPlans
		}
	}

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	// HostedPlans excluded to prevent circular reference
	aux.Alias.HostedPlans = nil

	return json.Marshal(aux)
}
