package models

import (
	"gorm.io/gorm"
)

// GetUserByID retrieves an active, non-deleted user by id
func GetUserByID(id string, db *gorm.DB) (*User, error) {
	user := &User{}
	if err := db.Where("id = ? AND is_deleted = false", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetFileByID(id string, db *gorm.DB) (*File, error) {
	file := &File{}
	if err := db.Where("id = ? AND is_deleted = false", id).First(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}
