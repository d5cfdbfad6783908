package repository

import (
	"context"
	"errors"
	"strings"

	"campushub/internal/models"
	"campushub/internal/observability"

	"gorm.io/gorm"
)

// StudentFilter narrows the student listing.
type StudentFilter struct {
	ProdiID  uint
	Status   string
	Angkatan int
	Search   string
	Page     int
	PerPage  int
}

// StudentRepository defines persistence operations for student records.
// The WithUser variants keep the mahasiswa row and its login account in one
// transaction so a failure on either side rolls back both.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByNIM(ctx context.Context, nim string) (*models.Student, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Student, error)
	List(ctx context.Context, f StudentFilter) (*Page, error)
	CreateWithUser(ctx context.Context, student *models.Student, user *models.User) error
	UpdateWithUser(ctx context.Context, student *models.Student, mutateUser func(tx *gorm.DB, u *models.User) error) error
	DeleteWithUser(ctx context.Context, id uint) error
}

type studentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewStudentRepository returns a new StudentRepository implementation.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{
		db:  db,
		log: observability.NewRepoLogger("mahasiswas"),
	}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Preload("Prodi").
		Preload("User").
		First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Mahasiswa", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &student, nil
}

func (r *studentRepository) GetByNIM(ctx context.Context, nim string) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Preload("Prodi").
		Where("nim = ?", nim).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Mahasiswa", nim)
		}
		return nil, models.NewInternalError(err)
	}
	return &student, nil
}

// GetByUserID resolves the student record backing an authenticated account.
// Returns nil without error when the account has no student record.
func (r *studentRepository) GetByUserID(ctx context.Context, userID uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Preload("Prodi").
		Where("user_id = ?", userID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, f StudentFilter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}

	q := r.db.WithContext(ctx).Model(&models.Student{})

	if f.ProdiID != 0 {
		q = q.Where("prodi_id = ?", f.ProdiID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Angkatan != 0 {
		q = q.Where("angkatan = ?", f.Angkatan)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(nama) LIKE ? OR LOWER(nim) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var students []models.Student
	if err := q.
		Preload("Prodi").
		Order("nama ASC").
		Limit(f.PerPage).
		Offset((f.Page - 1) * f.PerPage).
		Find(&students).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return NewPage(students, f.Page, f.PerPage, total), nil
}

func (r *studentRepository) CreateWithUser(ctx context.Context, student *models.Student, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user != nil {
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			var role models.Role
			if err := tx.Where(models.Role{Name: models.RoleMahasiswa}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
			if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
				return err
			}
			student.UserID = &user.ID
		}
		return tx.Create(student).Error
	})
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("NIM or email already registered")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{
		"id": student.ID, "nim": student.NIM, "with_account": user != nil,
	})
	return nil
}

func (r *studentRepository) UpdateWithUser(ctx context.Context, student *models.Student, mutateUser func(tx *gorm.DB, u *models.User) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(student).Error; err != nil {
			return err
		}
		if mutateUser == nil || student.UserID == nil {
			return nil
		}
		var user models.User
		if err := tx.First(&user, *student.UserID).Error; err != nil {
			return err
		}
		if err := mutateUser(tx, &user); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("NIM or email already registered")
		}
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": student.ID, "nim": student.NIM})
	return nil
}

func (r *studentRepository) DeleteWithUser(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Student{}, id).Error; err != nil {
			return err
		}
		if student.UserID != nil {
			if err := tx.Delete(&models.User{}, *student.UserID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Mahasiswa", id)
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}
