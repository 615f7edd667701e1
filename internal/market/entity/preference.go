package entity

import "time"

// NotificationPreference per-user, per-report delivery schedule. The
// scheduled report functions load enabled rows and evaluate DueAt against
// each subscriber's own timezone on every cron tick.
type NotificationPreference struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	UserID     string `json:"user_id" gorm:"size:32;not null;index:idx_pref_user_type,unique"`
	ReportType string `json:"report_type" gorm:"size:30;not null;index:idx_pref_user_type,unique"` // commission/weekly_inventory/smart_check
	Enabled    bool   `json:"enabled" gorm:"default:true"`

	// Local-time schedule: Weekday 0 = Sunday, Hour 0-23.
	Weekday  int    `json:"weekday" gorm:"default:0"`
	Hour     int    `json:"hour" gorm:"default:9"`
	Timezone string `json:"timezone" gorm:"size:50;default:Asia/Riyadh"`

	EmailEnabled bool `json:"email_enabled" gorm:"default:true"`
	PushEnabled  bool `json:"push_enabled" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// Report types
const (
	ReportTypeCommission      = "commission"
	ReportTypeWeeklyInventory = "weekly_inventory"
	ReportTypeSmartCheck      = "smart_check"
)

// DueAt reports whether the subscriber's schedule matches now in the
// subscriber's own timezone. The external cron fires on the hour, so the
// match is exact to the hour boundary; an unparseable timezone never
// matches.
func (p *NotificationPreference) DueAt(now time.Time) bool {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return false
	}
	local := now.In(loc)
	return int(local.Weekday()) == p.Weekday && local.Hour() == p.Hour && local.Minute() == 0
}
