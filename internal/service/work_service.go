// Package service implements the domain rules on top of the repositories.
package service

import (
	"context"
	"time"

	"campushub/internal/models"
	"campushub/internal/observability"
	"campushub/internal/repository"
	"campushub/internal/storage"
)

// Actor identifies who is performing a work item operation.
type Actor struct {
	UserID  uint
	IsAdmin bool
	// StudentID is the mahasiswa record backing the account, 0 when the
	// account has none (plain admin staff).
	StudentID uint
}

// WorkService enforces the submission and approval lifecycle for student works.
//
// The rules, in short: student submissions start unpublished and unapproved;
// only admins decide. Approval stamps approved_by/approved_at and publishes.
// Rejection clears the stamp, unpublishes, and records a reason. Once an item
// is approved the owner can no longer flip its publish flag or delete it.
type WorkService struct {
	workRepo    repository.WorkRepository
	studentRepo repository.StudentRepository
	store       *storage.Local
	log         *observability.StructuredLogger
}

// NewWorkService returns a WorkService wired to its repositories.
func NewWorkService(workRepo repository.WorkRepository, studentRepo repository.StudentRepository, store *storage.Local) *WorkService {
	return &WorkService{
		workRepo:    workRepo,
		studentRepo: studentRepo,
		store:       store,
		log:         observability.NewStructuredLogger(),
	}
}

// CreateWorkInput carries a new submission. Thumbnail and File are storage
// paths already saved by the handler.
type CreateWorkInput struct {
	Judul       string
	Deskripsi   string
	Jenis       string
	URL         string
	Thumbnail   string
	File        string
	MahasiswaID uint
	IsPublished *bool
}

// UpdateWorkInput carries a partial update; nil pointers leave fields as-is.
type UpdateWorkInput struct {
	Judul       *string
	Deskripsi   *string
	Jenis       *string
	URL         *string
	Thumbnail   *string
	File        *string
	IsPublished *bool
}

// Create inserts a new work item. Students always submit into the pending
// state; admins may publish immediately, which stamps the approval atomically
// with the insert so a published row is never unapproved.
func (s *WorkService) Create(ctx context.Context, actor Actor, in CreateWorkInput) (*models.WorkItem, error) {
	mahasiswaID := in.MahasiswaID
	if !actor.IsAdmin {
		if actor.StudentID == 0 {
			return nil, models.NewForbiddenError("Akun ini tidak memiliki data mahasiswa")
		}
		// Students can only submit under their own record.
		mahasiswaID = actor.StudentID
	}
	if mahasiswaID == 0 {
		return nil, models.NewFieldValidationError(map[string][]string{
			"mahasiswa_id": {"The mahasiswa_id field is required."},
		})
	}
	if _, err := s.studentRepo.GetByID(ctx, mahasiswaID); err != nil {
		return nil, err
	}

	item := &models.WorkItem{
		Judul:       in.Judul,
		Slug:        Slugify(in.Judul),
		Deskripsi:   in.Deskripsi,
		MahasiswaID: mahasiswaID,
		UserID:      actor.UserID,
		Jenis:       in.Jenis,
		Thumbnail:   in.Thumbnail,
		File:        in.File,
		URL:         in.URL,
	}

	if actor.IsAdmin {
		publish := true
		if in.IsPublished != nil {
			publish = *in.IsPublished
		}
		if publish {
			now := time.Now()
			item.IsPublished = true
			item.ApprovedByID = &actor.UserID
			item.ApprovedAt = &now
		}
	}

	if err := s.workRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	observability.RecordWorkSubmission(item.Jenis)
	return s.workRepo.GetByID(ctx, item.ID)
}

// Get returns the item by slug. Unpublished items are only visible to admins
// and the owning student.
func (s *WorkService) Get(ctx context.Context, actor Actor, slug string) (*models.WorkItem, error) {
	item, err := s.workRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !item.IsPublished && !s.canManage(actor, item) {
		return nil, models.NewNotFoundError("Karya", slug)
	}
	return item, nil
}

// Update applies a partial update under the ownership rules: admins may edit
// anything; owners may edit their own items but lose control of the publish
// flag once the item is approved.
func (s *WorkService) Update(ctx context.Context, actor Actor, id uint, in UpdateWorkInput) (*models.WorkItem, error) {
	item, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, item) {
		return nil, models.NewForbiddenError("Anda tidak berhak mengubah karya ini")
	}

	if in.Judul != nil && *in.Judul != item.Judul {
		item.Judul = *in.Judul
		item.Slug = Slugify(*in.Judul)
	}
	if in.Deskripsi != nil {
		item.Deskripsi = *in.Deskripsi
	}
	if in.Jenis != nil {
		item.Jenis = *in.Jenis
	}
	if in.URL != nil {
		item.URL = *in.URL
	}
	if in.Thumbnail != nil {
		s.replaceFile(item.Thumbnail, *in.Thumbnail)
		item.Thumbnail = *in.Thumbnail
	}
	if in.File != nil {
		s.replaceFile(item.File, *in.File)
		item.File = *in.File
	}

	if in.IsPublished != nil {
		switch {
		case actor.IsAdmin:
			item.IsPublished = *in.IsPublished
			if *in.IsPublished && !item.IsApproved() {
				// Publishing by an admin is an implicit approval.
				now := time.Now()
				item.ApprovedByID = &actor.UserID
				item.ApprovedAt = &now
				item.RejectionReason = ""
			}
		case item.IsApproved():
			return nil, models.NewForbiddenError("Status publikasi karya yang sudah disetujui hanya dapat diubah admin")
		default:
			// Unapproved items never go live; a student publish request
			// waits for the approval decision.
			item.IsPublished = false
		}
	}

	if err := s.workRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.workRepo.GetByID(ctx, item.ID)
}

// Approve publishes the item and stamps the decision. Approving an already
// approved item is a no-op so concurrent admin clicks cannot double-stamp.
func (s *WorkService) Approve(ctx context.Context, actor Actor, id uint) (*models.WorkItem, error) {
	if !actor.IsAdmin {
		return nil, models.NewForbiddenError("Hanya admin yang dapat menyetujui karya")
	}

	item, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsApproved() {
		return item, nil
	}

	now := time.Now()
	item.ApprovedByID = &actor.UserID
	item.ApprovedAt = &now
	item.IsPublished = true
	item.RejectionReason = ""

	if err := s.workRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	observability.RecordApprovalDecision("approve")
	s.log.LogServiceCall(ctx, "WorkService", "Approve", map[string]interface{}{
		"karya_id": item.ID, "admin_id": actor.UserID,
	})
	return s.workRepo.GetByID(ctx, item.ID)
}

// Reject unpublishes the item, clears any approval stamp, and records the
// reason shown to the student.
func (s *WorkService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.WorkItem, error) {
	if !actor.IsAdmin {
		return nil, models.NewForbiddenError("Hanya admin yang dapat menolak karya")
	}
	if reason == "" {
		return nil, models.NewFieldValidationError(map[string][]string{
			"reason": {"The reason field is required."},
		})
	}
	if len(reason) > 255 {
		return nil, models.NewFieldValidationError(map[string][]string{
			"reason": {"The reason may not be greater than 255 characters."},
		})
	}

	item, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.ApprovedByID = nil
	item.ApprovedAt = nil
	item.IsPublished = false
	item.RejectionReason = reason

	if err := s.workRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	observability.RecordApprovalDecision("reject")
	s.log.LogServiceCall(ctx, "WorkService", "Reject", map[string]interface{}{
		"karya_id": item.ID, "admin_id": actor.UserID,
	})
	return s.workRepo.GetByID(ctx, item.ID)
}

// Delete removes the item and its stored files. Owners may only delete while
// the item is still unapproved; admins may always delete.
func (s *WorkService) Delete(ctx context.Context, actor Actor, id uint) error {
	item, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, item) {
		return models.NewForbiddenError("Anda tidak berhak menghapus karya ini")
	}
	if !actor.IsAdmin && item.IsApproved() {
		return models.NewForbiddenError("Karya yang sudah disetujui hanya dapat dihapus admin")
	}

	if err := s.workRepo.Delete(ctx, item); err != nil {
		return err
	}

	if s.store != nil {
		s.store.Remove(item.Thumbnail)
		s.store.Remove(item.File)
	}
	return nil
}

// List applies visibility scoping before delegating to the repository:
// non-admin viewers only see published items, except for their own.
func (s *WorkService) List(ctx context.Context, actor Actor, f repository.WorkFilter, myKarya bool) (*repository.Page, error) {
	if myKarya {
		if actor.StudentID == 0 {
			return repository.NewPage([]models.WorkItem{}, 1, f.PerPage, 0), nil
		}
		f.MahasiswaID = actor.StudentID
	} else if !actor.IsAdmin {
		if f.MahasiswaID == 0 || f.MahasiswaID != actor.StudentID {
			published := true
			f.IsPublished = &published
		}
	}
	return s.workRepo.List(ctx, f)
}

// replaceFile drops the previously stored file when an update points the
// field at a new path.
func (s *WorkService) replaceFile(old, replacement string) {
	if s.store != nil && old != "" && old != replacement {
		s.store.Remove(old)
	}
}

func (s *WorkService) canManage(actor Actor, item *models.WorkItem) bool {
	if actor.IsAdmin {
		return true
	}
	return actor.StudentID != 0 && actor.StudentID == item.MahasiswaID
}
