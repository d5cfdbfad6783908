package models

import "time"

// Partnership is an institutional cooperation record (kerjasama).
type Partnership struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	NamaInstansi   string     `gorm:"not null" json:"nama_instansi"`
	Slug           string     `gorm:"unique;not null" json:"slug"`
	Deskripsi      string     `gorm:"type:text" json:"deskripsi"`
	Jenis          string     `gorm:"size:100;index" json:"jenis"`
	Logo           string     `json:"logo"`
	TanggalMulai   *time.Time `json:"tanggal_mulai"`
	TanggalSelesai *time.Time `json:"tanggal_selesai"`
	Manfaat        string     `gorm:"type:text" json:"manfaat"`
	Dokumen        string     `json:"dokumen"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName keeps the Laravel-era table name.
func (Partnership) TableName() string {
	return "kerjasamas"
}
