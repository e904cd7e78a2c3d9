package models

// VersionState tracks the update-notification state for the app. It shares
// the storage substrate with the rest of the store but is otherwise
// independent of meals and settings. Times are ms since epoch.
type VersionState struct {
	Key                  string `gorm:"primaryKey;size:64" json:"key"`
	LastDismissedVersion string `gorm:"size:32" json:"lastDismissedVersion"`
	LastDismissedAt      int64  `json:"lastDismissedAt"`
	LastCheckAt          int64  `json:"lastCheckAt"`
}
