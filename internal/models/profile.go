package models

import "time"

// CampusProfile is the single row describing the campus itself.
type CampusProfile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NamaKampus string    `gorm:"not null" json:"nama_kampus"`
	Deskripsi  string    `gorm:"type:text" json:"deskripsi"`
	Visi       string    `gorm:"type:text" json:"visi"`
	Misi       string    `gorm:"type:text" json:"misi"`
	Sejarah    string    `gorm:"type:text" json:"sejarah"`
	Alamat     string    `gorm:"type:text" json:"alamat"`
	Telepon    string    `gorm:"size:20" json:"telepon"`
	Email      string    `json:"email"`
	Website    string    `json:"website"`
	Logo       string    `json:"logo"`
	Facebook   string    `json:"facebook"`
	Instagram  string    `json:"instagram"`
	Youtube    string    `json:"youtube"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName pins the singular-feeling table name.
func (CampusProfile) TableName() string {
	return "campus_profiles"
}
