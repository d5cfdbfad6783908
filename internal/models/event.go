package models

import "time"

// Event is a campus agenda entry with a start/end time and location.
type Event struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Judul        string     `gorm:"not null" json:"judul"`
	Slug         string     `gorm:"unique;not null" json:"slug"`
	Deskripsi    string     `gorm:"type:text" json:"deskripsi"`
	Lokasi       string     `json:"lokasi"`
	WaktuMulai   time.Time  `gorm:"not null;index" json:"waktu_mulai"`
	WaktuSelesai *time.Time `json:"waktu_selesai"`
	Gambar       string     `json:"gambar"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsPublished  bool       `gorm:"not null;default:false;index" json:"is_published"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName keeps the Laravel-era table name.
func (Event) TableName() string {
	return "agendas"
}
