// Package main provides admin account management utilities for the campus CMS.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"campushub/internal/config"
	"campushub/internal/database"
	"campushub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go create <name> <email> <password>  - Create an admin account")
		fmt.Println("  go run ./cmd/admin/main.go promote <email>                   - Grant the admin role")
		fmt.Println("  go run ./cmd/admin/main.go demote <email>                    - Revoke the admin role")
		fmt.Println("  go run ./cmd/admin/main.go list-admins                       - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch command := os.Args[1]; command {
	case "create":
		if len(os.Args) < 5 {
			fmt.Println("Usage: go run ./cmd/admin/main.go create <name> <email> <password>")
			os.Exit(1)
		}
		createAdmin(db, os.Args[2], os.Args[3], os.Args[4])

	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go promote <email>")
			os.Exit(1)
		}
		setAdminRole(db, os.Args[2], true)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go demote <email>")
			os.Exit(1)
		}
		setAdminRole(db, os.Args[2], false)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func adminRole(db *gorm.DB) (*models.Role, error) {
	var role models.Role
	err := db.Where("name = ?", models.RoleAdmin).
		FirstOrCreate(&role, models.Role{Name: models.RoleAdmin}).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func createAdmin(db *gorm.DB, name, email, password string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{Name: name, Email: email, Password: string(hashed)}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	role, err := adminRole(db)
	if err != nil {
		log.Fatalf("Failed to load admin role: %v", err)
	}
	if err := db.Model(&user).Association("Roles").Append(role); err != nil {
		log.Fatalf("Failed to attach admin role: %v", err)
	}
	fmt.Printf("Admin account created: %s <%s> (id=%d)\n", user.Name, user.Email, user.ID)
}

func setAdminRole(db *gorm.DB, email string, grant bool) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("No user with email %s", email)
		}
		log.Fatalf("Failed to look up user: %v", err)
	}

	role, err := adminRole(db)
	if err != nil {
		log.Fatalf("Failed to load admin role: %v", err)
	}

	if grant {
		if err := db.Model(&user).Association("Roles").Append(role); err != nil {
			log.Fatalf("Failed to grant admin role: %v", err)
		}
		fmt.Printf("Granted admin to %s\n", email)
		return
	}
	if err := db.Model(&user).Association("Roles").Delete(role); err != nil {
		log.Fatalf("Failed to revoke admin role: %v", err)
	}
	fmt.Printf("Revoked admin from %s\n", email)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	err := db.Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", models.RoleAdmin).
		Find(&admins).Error
	if err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admin accounts found")
		return
	}
	for _, a := range admins {
		fmt.Printf("%d\t%s\t%s\n", a.ID, a.Name, a.Email)
	}
}
