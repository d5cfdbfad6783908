package models

import "time"

// Announcement is a dated campus announcement (pengumuman). It is considered
// active between TanggalMulai and TanggalSelesai (open-ended when the latter
// is nil).
type Announcement struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Judul          string     `gorm:"not null" json:"judul"`
	Slug           string     `gorm:"unique;not null" json:"slug"`
	Konten         string     `gorm:"type:text;not null" json:"konten"`
	Gambar         string     `json:"gambar"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsPublished    bool       `gorm:"not null;default:false;index" json:"is_published"`
	TanggalMulai   time.Time  `gorm:"not null" json:"tanggal_mulai"`
	TanggalSelesai *time.Time `json:"tanggal_selesai"`
	Tipe           string     `gorm:"size:50" json:"tipe"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName keeps the Laravel-era table name.
func (Announcement) TableName() string {
	return "pengumumans"
}

// ActiveAt reports whether the announcement is published and within its
// display window at the given instant.
func (a *Announcement) ActiveAt(t time.Time) bool {
	if !a.IsPublished || a.TanggalMulai.After(t) {
		return false
	}
	return a.TanggalSelesai == nil || !a.TanggalSelesai.Before(t)
}
