package models

import "time"

// Student lifecycle statuses.
const (
	StudentStatusAktif    = "aktif"
	StudentStatusNonaktif = "nonaktif"
	StudentStatusCuti     = "cuti"
	StudentStatusLulus    = "lulus"
)

// Student is the academic record (mahasiswa) bridging a User account to a
// study program. UserID is nullable: imported students may not have an
// account yet.
type Student struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	NIM          string     `gorm:"unique;not null" json:"nim"`
	Nama         string     `gorm:"not null" json:"nama"`
	Email        string     `json:"email"`
	Telepon      string     `gorm:"size:20" json:"telepon"`
	Alamat       string     `gorm:"type:text" json:"alamat"`
	JenisKelamin string     `gorm:"size:1" json:"jenis_kelamin"`
	TanggalLahir *time.Time `json:"tanggal_lahir"`
	TempatLahir  string     `json:"tempat_lahir"`
	Agama        string     `gorm:"size:50" json:"agama"`
	ProdiID      uint       `gorm:"not null;index" json:"prodi_id"`
	Prodi        *Program   `gorm:"foreignKey:ProdiID" json:"prodi,omitempty"`
	UserID       *uint      `gorm:"index" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Angkatan     int        `json:"angkatan"`
	Status       string     `gorm:"not null;default:'aktif'" json:"status"`
	WorkItems    []WorkItem `gorm:"foreignKey:MahasiswaID" json:"karya_mahasiswas,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName keeps the Laravel-era table name.
func (Student) TableName() string {
	return "mahasiswas"
}
