package models

import "time"

// WorkItem is a student work entry (karya mahasiswa): a thesis, research
// paper, project, or art piece submitted for publication on the campus site.
//
// Lifecycle: a student submission starts unpublished and unapproved and waits
// for an admin decision. Approval stamps ApprovedBy/ApprovedAt and publishes
// the item; rejection clears both, unpublishes, and records the reason.
// An admin creating an item may publish it immediately, in which case the
// approval stamp is set atomically with the insert so that
// is_published => approved_at != nil always holds.
type WorkItem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Judul           string     `gorm:"not null" json:"judul"`
	Slug            string     `gorm:"unique;not null" json:"slug"`
	Deskripsi       string     `gorm:"type:text;not null" json:"deskripsi"`
	MahasiswaID     uint       `gorm:"not null;index" json:"mahasiswa_id"`
	Mahasiswa       *Student   `gorm:"foreignKey:MahasiswaID" json:"mahasiswa,omitempty"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Jenis           string     `gorm:"size:100;not null;index" json:"jenis"`
	Thumbnail       string     `json:"thumbnail"`
	File            string     `json:"file"`
	URL             string     `json:"url"`
	IsPublished     bool       `gorm:"not null;default:false;index" json:"is_published"`
	ApprovedByID    *uint      `gorm:"column:approved_by" json:"approved_by"`
	ApprovedBy      *User      `gorm:"foreignKey:ApprovedByID" json:"approved_by_user,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectionReason string     `gorm:"size:255;not null;default:''" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName keeps the table name the Laravel-era schema used.
func (WorkItem) TableName() string {
	return "karya_mahasiswas"
}

// IsApproved reports whether the item carries an approval stamp.
func (w *WorkItem) IsApproved() bool {
	return w.ApprovedAt != nil
}
