// Package models contains all data models for the edurank application
package models

import (
	"gorm.io/gorm"
)

// AllModels returns a slice of all model types for database migrations
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserInterest{},
		&ContentItem{},
		&ContentInteraction{},
		&ContentSimilarity{},
		&Recommendation{},
		&AssessmentResult{},
		&AssessmentContentLink{},
		&Publication{},
		&PublicationAuthor{},
		&Citation{},
		&ImpactMetricRecord{},
		&MetricValue{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
