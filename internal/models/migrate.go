package models

import "gorm.io/gorm"

// Migrate creates or updates every table, parents first.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Profile{},
		&Follower{},
		&Post{},
		&Like{},
	)
}
