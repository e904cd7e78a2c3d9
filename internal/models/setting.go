package models

// Setting is a keyed configuration value. Encrypted marks values stored as
// ciphertext, which exempts them from plaintext format checks.
type Setting struct {
	Key       string `gorm:"primaryKey;size:255" json:"key"`
	Value     string `gorm:"not null" json:"value"`
	Encrypted bool   `gorm:"not null;default:false" json:"encrypted"`
}
