// 旧表回填脚本
//
// 早期版本只写 recording_submissions，新版以 recordings 为准、
// 提交时双写。此脚本把没有对应 recordings 行的旧提交补进新表，
// 部署新版前手动执行一次即可。
//
// 用法: go run scripts/backfill_recordings.go

package main

import (
	"log"
	"os"

	"readaloud_backend/internal/config"
	"readaloud_backend/internal/model"
	"readaloud_backend/pkg/database"
	"readaloud_backend/pkg/logger"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var orphans []model.RecordingSubmission
	if err := db.Where("recording_id IS NULL").Find(&orphans).Error; err != nil {
		log.Fatalf("读取旧提交失败: %v", err)
	}

	log.Printf("待回填 %d 条旧提交...", len(orphans))

	migrated := 0
	for _, sub := range orphans {
		recording := &model.Recording{
			StudentID:       sub.StudentID,
			ClassID:         sub.ClassID,
			AssignmentID:    sub.AssignmentID,
			StoryID:         sub.StoryID,
			Attempt:         1,
			FilePath:        sub.FilePath,
			DurationSeconds: sub.DurationSeconds,
			Status:          model.RecordingStatus(sub.Status),
			Archived:        sub.Archived,
			SubmittedAt:     sub.SubmittedAt,
		}
		if recording.Status == "" {
			recording.Status = model.RecordingUploaded
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(recording).Error; err != nil {
				return err
			}
			return tx.Model(&model.RecordingSubmission{}).
				Where("id = ?", sub.ID).
				Update("recording_id", recording.ID).Error
		})
		if err != nil {
			log.Printf("回填失败 submission=%s: %v", sub.ID, err)
			continue
		}
		migrated++
	}

	log.Printf("完成，回填 %d/%d 条", migrated, len(orphans))
}
