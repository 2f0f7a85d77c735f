package models

import "time"

// Setting is one provider credential or toggle stored in the settings table.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Well-known setting keys. Senders resolve credentials through these so
// admin updates take effect without a restart when the table store is active.
const (
	SettingEmailAPIKey  = "email_api_key"
	SettingEmailFrom    = "email_from"
	SettingSMTPHost     = "smtp_host"
	SettingSMTPPort     = "smtp_port"
	SettingSMTPUser     = "smtp_user"
	SettingSMTPPassword = "smtp_password"
	SettingSMSAPIKey    = "sms_api_key"
	SettingSMSAPISecret = "sms_api_secret"
	SettingSMSSender    = "sms_sender"
)
