// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// SeedOptions tunes factory behaviour.
type SeedOptions struct {
	// DryRun logs what would be created without writing to the database.
	DryRun bool
	// SkipBcrypt stores the plain seed password instead of a bcrypt hash.
	// Seeding thousands of accounts with bcrypt is slow in development.
	SkipBcrypt bool
	// MaxDays spreads created_at over the past N days. Defaults to 90.
	MaxDays int
}

// SeedPassword is the password every seeded account gets.
const SeedPassword = "password123"

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

var (
	indonesianFirstNames = []string{
		"Andi", "Budi", "Citra", "Dewi", "Eko", "Fitri", "Gilang", "Hana",
		"Indra", "Joko", "Kartika", "Lestari", "Made", "Nadia", "Oka", "Putri",
		"Rizky", "Siti", "Taufik", "Umar", "Vina", "Wahyu", "Yanti", "Zaki",
		"Agus", "Bayu", "Dian", "Fajar", "Intan", "Rina", "Sari", "Tri",
	}
	indonesianLastNames = []string{
		"Pratama", "Santoso", "Wijaya", "Saputra", "Utami", "Hidayat",
		"Kusuma", "Nugroho", "Rahayu", "Setiawan", "Lestari", "Wibowo",
		"Maulana", "Purnama", "Siregar", "Hutagalung", "Anggraini", "Firmansyah",
	}
	workJenisList = []string{"skripsi", "penelitian", "pengabdian", "aplikasi", "desain"}

	announcementTipeList = []string{"akademik", "umum", "beasiswa", "kegiatan"}

	partnershipJenisList = []string{"industri", "pendidikan", "pemerintah", "internasional"}

	campusHeadlines = []string{
		"Mahasiswa %s Raih Juara di Kompetisi Nasional",
		"Kampus Gelar %s untuk Mahasiswa Baru",
		"Dosen dan Mahasiswa Kolaborasi dalam %s",
		"Program Studi Buka Pendaftaran %s",
		"Tim Kampus Lolos ke Final %s",
	}
	headlineTopics = []string{
		"Lomba Karya Tulis Ilmiah", "Seminar Teknologi", "Penelitian Terapan",
		"Program Magang Bersertifikat", "Festival Budaya", "Hackathon Daerah",
	}
)

func indonesianName() string {
	first := indonesianFirstNames[rand.Intn(len(indonesianFirstNames))]
	last := indonesianLastNames[rand.Intn(len(indonesianLastNames))]
	return first + " " + last
}

func campusHeadline() string {
	format := campusHeadlines[rand.Intn(len(campusHeadlines))]
	return fmt.Sprintf(format, headlineTopics[rand.Intn(len(headlineTopics))])
}

// pastTime returns a timestamp spread over the configured MaxDays window.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := rand.Intn(maxDays)
	hoursBack := rand.Intn(24)
	minsBack := rand.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return SeedPassword
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	return string(hashed)
}

// CreateUser constructs and persists a sample account.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	name := indonesianName()
	user := &models.User{
		Name:     name,
		Email:    gofakeit.Email(),
		Password: f.password(),
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Name, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProgram constructs and persists a study program.
func (f *Factory) CreateProgram(nama, jenjang, kode string, overrides ...func(*models.Program)) (*models.Program, error) {
	program := &models.Program{
		Nama:        nama,
		Slug:        service.Slugify(nama),
		Jenjang:     jenjang,
		Kode:        kode,
		Deskripsi:   gofakeit.Paragraph(1, 3, 8, "\n"),
		Akreditasi:  []string{"A", "B", "Unggul", "Baik Sekali"}[rand.Intn(4)],
		KetuaProdi:  indonesianName(),
		DurasiTahun: 4,
	}
	if jenjang == "D3" {
		program.DurasiTahun = 3
	}

	for _, override := range overrides {
		override(program)
	}

	if f.opts.DryRun {
		f.nextID++
		program.ID = f.nextID
		log.Printf("[dry-run] CreateProgram: %s (%s)", program.Nama, program.Jenjang)
		return program, nil
	}

	if err := f.db.Create(program).Error; err != nil {
		return nil, err
	}
	return program, nil
}

// CreateStudent constructs and persists a student record in the given
// program. The NIM encodes the cohort year the way campus registrars do.
func (f *Factory) CreateStudent(program *models.Program, overrides ...func(*models.Student)) (*models.Student, error) {
	angkatan := time.Now().Year() - rand.Intn(4)
	birth := gofakeit.DateRange(
		time.Date(angkatan-20, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(angkatan-17, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	student := &models.Student{
		NIM:          fmt.Sprintf("%d%02d%04d", angkatan%100, program.ID%100, rand.Intn(10000)),
		Nama:         indonesianName(),
		Email:        gofakeit.Email(),
		Telepon:      gofakeit.Phone(),
		Alamat:       gofakeit.Address().Address,
		JenisKelamin: []string{"L", "P"}[rand.Intn(2)],
		TanggalLahir: &birth,
		TempatLahir:  gofakeit.City(),
		ProdiID:      program.ID,
		Angkatan:     angkatan,
		Status:       models.StudentStatusAktif,
	}

	for _, override := range overrides {
		override(student)
	}

	if f.opts.DryRun {
		f.nextID++
		student.ID = f.nextID
		log.Printf("[dry-run] CreateStudent: %s (%s)", student.Nama, student.NIM)
		return student, nil
	}

	if err := f.db.Create(student).Error; err != nil {
		return nil, err
	}
	return student, nil
}

// CreateWork constructs and persists a student work submission. It starts
// pending and unpublished; use the override to approve or reject it, keeping
// the publication invariant in mind.
func (f *Factory) CreateWork(student *models.Student, author *models.User, overrides ...func(*models.WorkItem)) (*models.WorkItem, error) {
	judul := campusHeadline()
	work := &models.WorkItem{
		Judul:       judul,
		Slug:        service.Slugify(judul),
		Deskripsi:   gofakeit.Paragraph(2, 4, 10, "\n"),
		MahasiswaID: student.ID,
		UserID:      author.ID,
		Jenis:       workJenisList[rand.Intn(len(workJenisList))],
		URL:         gofakeit.URL(),
		CreatedAt:   f.pastTime(),
	}

	for _, override := range overrides {
		override(work)
	}

	if f.opts.DryRun {
		f.nextID++
		work.ID = f.nextID
		log.Printf("[dry-run] CreateWork: %q jenis=%s mahasiswa=%d", work.Judul, work.Jenis, work.MahasiswaID)
		return work, nil
	}

	if err := f.db.Create(work).Error; err != nil {
		return nil, err
	}
	return work, nil
}

// CreateNews constructs and persists a news article authored by the given user.
func (f *Factory) CreateNews(author *models.User, overrides ...func(*models.News)) (*models.News, error) {
	judul := campusHeadline()
	createdAt := f.pastTime()
	news := &models.News{
		Judul:       judul,
		Slug:        service.Slugify(judul),
		Konten:      gofakeit.Paragraph(3, 5, 12, "\n\n"),
		UserID:      author.ID,
		IsPublished: true,
		PublishedAt: &createdAt,
		Views:       int64(rand.Intn(500)),
		CreatedAt:   createdAt,
	}

	for _, override := range overrides {
		override(news)
	}
	if !news.IsPublished {
		news.PublishedAt = nil
	}

	if f.opts.DryRun {
		f.nextID++
		news.ID = f.nextID
		log.Printf("[dry-run] CreateNews: %q published=%t", news.Judul, news.IsPublished)
		return news, nil
	}

	if err := f.db.Create(news).Error; err != nil {
		return nil, err
	}
	return news, nil
}

// CreateAnnouncement constructs and persists an announcement with a display
// window starting in the recent past.
func (f *Factory) CreateAnnouncement(author *models.User, overrides ...func(*models.Announcement)) (*models.Announcement, error) {
	judul := "Pengumuman " + headlineTopics[rand.Intn(len(headlineTopics))]
	start := f.pastTime()
	announcement := &models.Announcement{
		Judul:        judul,
		Slug:         service.Slugify(judul),
		Konten:       gofakeit.Paragraph(1, 4, 10, "\n"),
		UserID:       author.ID,
		IsPublished:  true,
		TanggalMulai: start,
		Tipe:         announcementTipeList[rand.Intn(len(announcementTipeList))],
	}
	if rand.Intn(2) == 0 {
		end := start.AddDate(0, 1, 0)
		announcement.TanggalSelesai = &end
	}

	for _, override := range overrides {
		override(announcement)
	}

	if f.opts.DryRun {
		f.nextID++
		announcement.ID = f.nextID
		log.Printf("[dry-run] CreateAnnouncement: %q tipe=%s", announcement.Judul, announcement.Tipe)
		return announcement, nil
	}

	if err := f.db.Create(announcement).Error; err != nil {
		return nil, err
	}
	return announcement, nil
}

// CreateEvent constructs and persists a campus event. Roughly half the
// generated events are upcoming so the public calendar has content.
func (f *Factory) CreateEvent(author *models.User, overrides ...func(*models.Event)) (*models.Event, error) {
	judul := headlineTopics[rand.Intn(len(headlineTopics))]
	start := f.pastTime()
	if rand.Intn(2) == 0 {
		start = time.Now().AddDate(0, 0, 1+rand.Intn(60))
	}
	end := start.Add(time.Duration(2+rand.Intn(6)) * time.Hour)
	event := &models.Event{
		Judul:        judul,
		Slug:         service.Slugify(judul),
		Deskripsi:    gofakeit.Paragraph(1, 3, 10, "\n"),
		Lokasi:       []string{"Aula Utama", "Gedung Rektorat", "Lapangan Kampus", "Laboratorium Terpadu", "Auditorium"}[rand.Intn(5)],
		WaktuMulai:   start,
		WaktuSelesai: &end,
		UserID:       author.ID,
		IsPublished:  true,
	}

	for _, override := range overrides {
		override(event)
	}

	if f.opts.DryRun {
		f.nextID++
		event.ID = f.nextID
		log.Printf("[dry-run] CreateEvent: %q at %s", event.Judul, event.WaktuMulai.Format(time.DateOnly))
		return event, nil
	}

	if err := f.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// CreatePartnership constructs and persists a partnership entry.
func (f *Factory) CreatePartnership(overrides ...func(*models.Partnership)) (*models.Partnership, error) {
	nama := "PT " + gofakeit.Company()
	start := f.pastTime().AddDate(-1, 0, 0)
	end := start.AddDate(3, 0, 0)
	partnership := &models.Partnership{
		NamaInstansi:   nama,
		Slug:           service.Slugify(nama),
		Deskripsi:      gofakeit.Paragraph(1, 3, 8, "\n"),
		Jenis:          partnershipJenisList[rand.Intn(len(partnershipJenisList))],
		TanggalMulai:   &start,
		TanggalSelesai: &end,
		Manfaat:        gofakeit.Sentence(12),
		IsActive:       true,
	}

	for _, override := range overrides {
		override(partnership)
	}

	if f.opts.DryRun {
		f.nextID++
		partnership.ID = f.nextID
		log.Printf("[dry-run] CreatePartnership: %s jenis=%s", partnership.NamaInstansi, partnership.Jenis)
		return partnership, nil
	}

	if err := f.db.Create(partnership).Error; err != nil {
		return nil, err
	}
	return partnership, nil
}
