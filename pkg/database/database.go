package database

import (
	"fmt"
	"log"
	"readaloud_backend/internal/config"
	"readaloud_backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建库连接。release 模式默认跳过自动迁移，
// 需要 -migrate / -migrate-only 显式触发
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
		cfg.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.Profile{},
		&model.Class{},
		&model.Assignment{},
		&model.Recording{},
		&model.RecordingSubmission{},
		&model.VisualPassword{},
		&model.ClassSession{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 图片密码目录为空时播种默认项
	var count int64
	db.Model(&model.VisualPassword{}).Count(&count)
	if count == 0 {
		defaults := []model.VisualPassword{
			{Name: "cat", Emoji: "🐱", Category: "animals", DisplayOrder: 1, IsActive: true},
			{Name: "dog", Emoji: "🐶", Category: "animals", DisplayOrder: 2, IsActive: true},
			{Name: "rabbit", Emoji: "🐰", Category: "animals", DisplayOrder: 3, IsActive: true},
			{Name: "panda", Emoji: "🐼", Category: "animals", DisplayOrder: 4, IsActive: true},
			{Name: "lion", Emoji: "🦁", Category: "animals", DisplayOrder: 5, IsActive: true},
			{Name: "apple", Emoji: "🍎", Category: "food", DisplayOrder: 6, IsActive: true},
			{Name: "banana", Emoji: "🍌", Category: "food", DisplayOrder: 7, IsActive: true},
			{Name: "pizza", Emoji: "🍕", Category: "food", DisplayOrder: 8, IsActive: true},
			{Name: "cake", Emoji: "🎂", Category: "food", DisplayOrder: 9, IsActive: true},
			{Name: "star", Emoji: "⭐", Category: "objects", DisplayOrder: 10, IsActive: true},
			{Name: "rocket", Emoji: "🚀", Category: "objects", DisplayOrder: 11, IsActive: true},
			{Name: "rainbow", Emoji: "🌈", Category: "objects", DisplayOrder: 12, IsActive: true},
		}
		for _, vp := range defaults {
			db.Create(&vp)
		}
	}

	return db, nil
}
