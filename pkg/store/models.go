package store

import "time"

// GORM models used for persistence. Table names follow the portal
// schema: branches, classes, students, events, documents.
type BranchModel struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (BranchModel) TableName() string { return "branches" }

type ClassModel struct {
	ID       string `gorm:"primaryKey"`
	BranchID string `gorm:"not null;index"`
	Name     string `gorm:"not null"`
}

func (ClassModel) TableName() string { return "classes" }

type StudentModel struct {
	ID      string `gorm:"primaryKey"`
	ClassID string `gorm:"not null;index"`
	Name    string `gorm:"not null"`
	Email   string `gorm:"not null"`
}

func (StudentModel) TableName() string { return "students" }

type EventModel struct {
	ID          string    `gorm:"primaryKey"`
	ClassID     string    `gorm:"not null;index"`
	Title       string    `gorm:"not null"`
	StartTime   time.Time `gorm:"not null;index"`
	EndTime     time.Time `gorm:"not null"`
	Description string
}

func (EventModel) TableName() string { return "events" }

type DocumentModel struct {
	ID         string `gorm:"primaryKey"`
	ClassID    string `gorm:"not null;index"`
	Title      string `gorm:"not null"`
	FileURL    string `gorm:"not null"`
	FilePath   string `gorm:"not null"`
	UploadedBy string
	UploadedAt time.Time `gorm:"not null;index"`
}

func (DocumentModel) TableName() string { return "documents" }
