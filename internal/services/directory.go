package services

import (
	"gorm.io/gorm"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
)

// UserDirectory resolves user IDs to profiles. Account management lives in
// the identity service; this is a read-only view of it.
type UserDirectory interface {
	FindByID(id string) (*models.User, error)
}

type dbUserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) UserDirectory {
	return &dbUserDirectory{db: db}
}

func (d *dbUserDirectory) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Failed to look up user")
	}
	return &user, nil
}
