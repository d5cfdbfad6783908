// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"campushub/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumStudents     int
	NumWorks        int
	NumNews         int
	NumEvents       int
	NumPartnerships int
	ShouldClean     bool
	Factory         SeedOptions
}

// AdminEmail is the account the seeder guarantees exists.
const AdminEmail = "admin@kampus.ac.id"

var seedPrograms = []struct {
	Nama    string
	Jenjang string
	Kode    string
}{
	{"Teknik Informatika", "S1", "TI"},
	{"Sistem Informasi", "S1", "SI"},
	{"Manajemen Informatika", "D3", "MI"},
	{"Teknik Elektro", "S1", "TE"},
	{"Akuntansi", "S1", "AK"},
	{"Desain Komunikasi Visual", "S1", "DKV"},
}

// Seed populates the database with demo campus data: study programs,
// students with linked accounts, works in every approval state, and
// public content for the landing pages.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding: %d mahasiswa, %d karya, %d berita, clean=%v",
		opts.NumStudents, opts.NumWorks, opts.NumNews, opts.ShouldClean)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("warning: could not clear all existing data: %v", err)
		}
	}

	f := NewFactory(db, opts.Factory)

	admin, err := ensureAdmin(db, f)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	programs, err := createPrograms(f)
	if err != nil {
		return fmt.Errorf("create programs: %w", err)
	}
	log.Printf("✓ %d study programs", len(programs))

	students, err := createStudents(db, f, programs, opts.NumStudents)
	if err != nil {
		return fmt.Errorf("create students: %w", err)
	}
	log.Printf("✓ %d students", len(students))

	if err := createWorks(db, f, students, admin, opts.NumWorks); err != nil {
		return fmt.Errorf("create works: %w", err)
	}
	log.Printf("✓ %d works", opts.NumWorks)

	if err := createContent(f, admin, opts); err != nil {
		return fmt.Errorf("create content: %w", err)
	}

	if !opts.Factory.DryRun {
		if err := ensureCampusProfile(db); err != nil {
			return fmt.Errorf("ensure campus profile: %w", err)
		}
	}

	log.Printf("Done. Admin login: %s / %s", AdminEmail, SeedPassword)
	return nil
}

// clearData removes seedable rows in FK order. Roles and permissions are kept.
func clearData(db *gorm.DB) error {
	tables := []string{
		"media", "karya_mahasiswas", "mahasiswas", "prodis",
		"beritas", "pengumumans", "agendas", "kerjasamas",
		"user_roles", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func attachRole(db *gorm.DB, user *models.User, roleName string) error {
	var role models.Role
	if err := db.Where("name = ?", roleName).
		FirstOrCreate(&role, models.Role{Name: roleName}).Error; err != nil {
		return err
	}
	return db.Model(user).Association("Roles").Append(&role)
}

func ensureAdmin(db *gorm.DB, f *Factory) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ?", AdminEmail).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	admin, err := f.CreateUser(func(u *models.User) {
		u.Name = "Administrator"
		u.Email = AdminEmail
	})
	if err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		return admin, nil
	}
	return admin, attachRole(db, admin, models.RoleAdmin)
}

func createPrograms(f *Factory) ([]*models.Program, error) {
	programs := make([]*models.Program, 0, len(seedPrograms))
	for _, p := range seedPrograms {
		program, err := f.CreateProgram(p.Nama, p.Jenjang, p.Kode)
		if err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, nil
}

// createStudents spreads students over the programs and gives roughly a third
// of them a login account so the submission flow has real actors.
func createStudents(db *gorm.DB, f *Factory, programs []*models.Program, count int) ([]*models.Student, error) {
	students := make([]*models.Student, 0, count)
	for i := 0; i < count; i++ {
		program := programs[i%len(programs)]
		student, err := f.CreateStudent(program)
		if err != nil {
			return nil, err
		}

		if i%3 == 0 && !f.opts.DryRun {
			user, err := f.CreateUser(func(u *models.User) {
				u.Name = student.Nama
				u.Email = fmt.Sprintf("%s@kampus.ac.id", student.NIM)
				u.NIM = student.NIM
			})
			if err != nil {
				return nil, err
			}
			if err := attachRole(db, user, models.RoleMahasiswa); err != nil {
				return nil, err
			}
			student.UserID = &user.ID
			if err := db.Model(student).Update("user_id", user.ID).Error; err != nil {
				return nil, err
			}
			student.User = user
		}
		students = append(students, student)
	}
	return students, nil
}

// createWorks seeds submissions in every approval state. Approved items are
// published with the stamp set in the same row so the publication invariant
// holds from the first insert.
func createWorks(db *gorm.DB, f *Factory, students []*models.Student, admin *models.User, count int) error {
	withAccount := make([]*models.Student, 0, len(students))
	for _, s := range students {
		if s.UserID != nil {
			withAccount = append(withAccount, s)
		}
	}
	if len(withAccount) == 0 {
		// No linked accounts (tiny seeds, dry runs): submit on behalf of
		// the students as the admin, the way staff backfill works.
		withAccount = students
	}
	if len(withAccount) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		student := withAccount[rand.Intn(len(withAccount))]
		author := admin
		if student.User != nil {
			author = student.User
		}

		_, err := f.CreateWork(student, author, func(w *models.WorkItem) {
			switch i % 4 {
			case 0, 1: // approved and published
				approvedAt := w.CreatedAt.Add(24 * time.Hour)
				w.ApprovedAt = &approvedAt
				w.ApprovedByID = &admin.ID
				w.IsPublished = true
			case 2: // rejected
				w.RejectionReason = "Deskripsi karya belum lengkap"
			default: // still pending
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func createContent(f *Factory, admin *models.User, opts Options) error {
	for i := 0; i < opts.NumNews; i++ {
		if _, err := f.CreateNews(admin); err != nil {
			return err
		}
	}
	log.Printf("✓ %d news articles", opts.NumNews)

	announcements := opts.NumNews / 2
	for i := 0; i < announcements; i++ {
		if _, err := f.CreateAnnouncement(admin); err != nil {
			return err
		}
	}
	log.Printf("✓ %d announcements", announcements)

	for i := 0; i < opts.NumEvents; i++ {
		if _, err := f.CreateEvent(admin); err != nil {
			return err
		}
	}
	log.Printf("✓ %d events", opts.NumEvents)

	for i := 0; i < opts.NumPartnerships; i++ {
		if _, err := f.CreatePartnership(); err != nil {
			return err
		}
	}
	log.Printf("✓ %d partnerships", opts.NumPartnerships)
	return nil
}

func ensureCampusProfile(db *gorm.DB) error {
	var profile models.CampusProfile
	err := db.First(&profile).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(&models.CampusProfile{
		NamaKampus: "Institut Teknologi Nusantara",
		Deskripsi:  "Kampus teknologi dengan fokus pada inovasi dan pengabdian masyarakat.",
		Visi:       "Menjadi perguruan tinggi unggul dan berdaya saing global.",
		Misi:       "Menyelenggarakan pendidikan, penelitian, dan pengabdian yang bermutu.",
		Alamat:     "Jl. Pendidikan No. 1, Kota Nusantara",
		Email:      "info@kampus.ac.id",
		Website:    "https://kampus.ac.id",
	}).Error
}
