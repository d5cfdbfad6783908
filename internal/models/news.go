package models

import "time"

// News is a campus news article (berita).
type News struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Judul       string     `gorm:"not null" json:"judul"`
	Slug        string     `gorm:"unique;not null" json:"slug"`
	Konten      string     `gorm:"type:text;not null" json:"konten"`
	Gambar      string     `json:"gambar"`
	Thumbnail   string     `json:"thumbnail"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsPublished bool       `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt *time.Time `json:"published_at"`
	Views       int64      `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName keeps the Laravel-era table name.
func (News) TableName() string {
	return "beritas"
}
