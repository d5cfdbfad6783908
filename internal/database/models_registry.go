package database

import "campushub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.Program{},
		&models.Student{},
		&models.WorkItem{},
		&models.News{},
		&models.Announcement{},
		&models.Event{},
		&models.Partnership{},
		&models.Media{},
		&models.CampusProfile{},
	}
}
