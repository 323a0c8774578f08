package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Preferences holds per-user timer durations in minutes. Stored as a JSON
// text column.
type Preferences struct {
	PomodoroMinutes   int `json:"pomodoro"`
	ShortBreakMinutes int `json:"shortBreak"`
	LongBreakMinutes  int `json:"longBreak"`
}

// DefaultPreferences returns the classic pomodoro durations.
func DefaultPreferences() Preferences {
	return Preferences{
		PomodoroMinutes:   25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
	}
}

// Scan implements sql.Scanner.
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		*p = DefaultPreferences()
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported preferences column type %T", value)
	}
	if len(data) == 0 {
		*p = DefaultPreferences()
		return nil
	}
	return json.Unmarshal(data, p)
}

// Value implements driver.Valuer.
func (p Preferences) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// User is an authenticated account. The password hash never leaves the
// server.
type User struct {
	ID           string      `gorm:"primaryKey;type:text" json:"id"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Name         string      `json:"name"`
	Preferences  Preferences `gorm:"type:text" json:"preferences"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// BeforeCreate hook to ensure ID and preference defaults are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Preferences == (Preferences{}) {
		u.Preferences = DefaultPreferences()
	}
	return nil
}
