package models

import "time"

// Program is an academic study program (prodi).
type Program struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nama         string    `gorm:"not null" json:"nama"`
	Slug         string    `gorm:"unique;not null" json:"slug"`
	Jenjang      string    `gorm:"size:20" json:"jenjang"`
	Kode         string    `gorm:"size:20" json:"kode"`
	Deskripsi    string    `gorm:"type:text" json:"deskripsi"`
	Visi         string    `gorm:"type:text" json:"visi"`
	Misi         string    `gorm:"type:text" json:"misi"`
	Akreditasi   string    `gorm:"size:10" json:"akreditasi"`
	Gelar        string    `gorm:"size:50" json:"gelar"`
	KetuaProdi   string    `json:"ketua_prodi"`
	DurasiTahun  int       `json:"durasi_tahun"`
	Icon         string    `json:"icon"`
	Gambar       string    `json:"gambar"`
	Students     []Student `gorm:"foreignKey:ProdiID" json:"mahasiswas,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName keeps the Laravel-era table name.
func (Program) TableName() string {
	return "prodis"
}
