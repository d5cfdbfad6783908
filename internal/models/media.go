package models

import (
	"fmt"
	"time"
)

// MediaOwnerKind enumerates the entity kinds that may own media files.
// Keeping this a closed enum (instead of the old free-form mediable_type
// strings) lets the compiler and Valid() catch unknown owners.
type MediaOwnerKind string

const (
	MediaOwnerNews         MediaOwnerKind = "berita"
	MediaOwnerAnnouncement MediaOwnerKind = "pengumuman"
	MediaOwnerProgram      MediaOwnerKind = "prodi"
	MediaOwnerEvent        MediaOwnerKind = "agenda"
	MediaOwnerWorkItem     MediaOwnerKind = "karya_mahasiswa"
	MediaOwnerPartnership  MediaOwnerKind = "kerjasama"
	MediaOwnerProfile      MediaOwnerKind = "profile"
)

// Valid reports whether k names a known owner kind.
func (k MediaOwnerKind) Valid() bool {
	switch k {
	case MediaOwnerNews, MediaOwnerAnnouncement, MediaOwnerProgram,
		MediaOwnerEvent, MediaOwnerWorkItem, MediaOwnerPartnership,
		MediaOwnerProfile:
		return true
	}
	return false
}

// MediaOwner ties a media row to the entity that owns it.
type MediaOwner struct {
	Kind MediaOwnerKind `gorm:"column:owner_kind;size:50;index:idx_media_owner" json:"kind"`
	ID   uint           `gorm:"column:owner_id;index:idx_media_owner" json:"id"`
}

// Media is an uploaded file tracked by the media library.
type Media struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Nama      string     `gorm:"not null" json:"nama"`
	FilePath  string     `gorm:"not null" json:"file_path"`
	Tipe      string     `gorm:"size:100" json:"tipe"`
	Ukuran    int64      `json:"ukuran"`
	Owner     MediaOwner `gorm:"embedded" json:"owner"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName pins the table name; the default pluralizer is unreliable for "media".
func (Media) TableName() string {
	return "media"
}

// StorageDir returns the directory media for this owner kind is stored under.
func (m *Media) StorageDir() string {
	return fmt.Sprintf("images/%s", m.Owner.Kind)
}
