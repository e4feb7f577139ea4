package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"facultyportal/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&BranchModel{}, &ClassModel{}, &StudentModel{}, &EventModel{}, &DocumentModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// ListBranches returns all branches ordered by name.
func (s *GormStore) ListBranches() ([]domain.Branch, error) {
	var models []BranchModel
	if err := s.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Branch, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Branch{ID: m.ID, Name: m.Name})
	}
	return res, nil
}

// GetBranch returns a branch by ID.
func (s *GormStore) GetBranch(id string) (domain.Branch, bool, error) {
	var m BranchModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Branch{}, false, nil
		}
		return domain.Branch{}, false, err
	}
	return domain.Branch{ID: m.ID, Name: m.Name}, true, nil
}

// CreateBranch inserts a branch and returns the stored row.
func (s *GormStore) CreateBranch(b domain.Branch) (domain.Branch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m := BranchModel{ID: b.ID, Name: b.Name}
	if err := s.db.Create(&m).Error; err != nil {
		return domain.Branch{}, err
	}
	return domain.Branch{ID: m.ID, Name: m.Name}, nil
}

// DeleteBranch removes a branch by ID.
func (s *GormStore) DeleteBranch(id string) error {
	return s.db.Delete(&BranchModel{}, "id = ?", id).Error
}

// ListClasses returns a branch's classes ordered by name.
func (s *GormStore) ListClasses(branchID string) ([]domain.Class, error) {
	var models []ClassModel
	if err := s.db.Where("branch_id = ?", branchID).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Class, 0, len(models))
	for _, m := range models {
		res = append(res, classFromModel(m))
	}
	return res, nil
}

// GetClass returns a class by ID.
func (s *GormStore) GetClass(id string) (domain.Class, bool, error) {
	var m ClassModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Class{}, false, nil
		}
		return domain.Class{}, false, err
	}
	return classFromModel(m), true, nil
}

// CreateClass inserts a class and returns the stored row.
func (s *GormStore) CreateClass(c domain.Class) (domain.Class, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m := ClassModel{ID: c.ID, BranchID: c.BranchID, Name: c.Name}
	if err := s.db.Create(&m).Error; err != nil {
		return domain.Class{}, err
	}
	return classFromModel(m), nil
}

// DeleteClass removes a class by ID.
func (s *GormStore) DeleteClass(id string) error {
	return s.db.Delete(&ClassModel{}, "id = ?", id).Error
}

// ListStudents returns a class's students ordered by name.
func (s *GormStore) ListStudents(classID string) ([]domain.Student, error) {
	var models []StudentModel
	if err := s.db.Where("class_id = ?", classID).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Student, 0, len(models))
	for _, m := range models {
		res = append(res, studentFromModel(m))
	}
	return res, nil
}

// CreateStudent inserts a student and returns the stored row.
func (s *GormStore) CreateStudent(st domain.Student) (domain.Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	m := StudentModel{ID: st.ID, ClassID: st.ClassID, Name: st.Name, Email: st.Email}
	if err := s.db.Create(&m).Error; err != nil {
		return domain.Student{}, err
	}
	return studentFromModel(m), nil
}

// DeleteStudent removes a student by ID.
func (s *GormStore) DeleteStudent(id string) error {
	return s.db.Delete(&StudentModel{}, "id = ?", id).Error
}

// ListEvents returns a class's events ordered by start time.
func (s *GormStore) ListEvents(classID string) ([]domain.Event, error) {
	var models []EventModel
	if err := s.db.Where("class_id = ?", classID).Order("start_time ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Event, 0, len(models))
	for _, m := range models {
		res = append(res, eventFromModel(m))
	}
	return res, nil
}

// CreateEvent inserts an event and returns the stored row.
func (s *GormStore) CreateEvent(e domain.Event) (domain.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m := eventToModel(e)
	if err := s.db.Create(&m).Error; err != nil {
		return domain.Event{}, err
	}
	return eventFromModel(m), nil
}

// DeleteEvent removes an event by ID.
func (s *GormStore) DeleteEvent(id string) error {
	return s.db.Delete(&EventModel{}, "id = ?", id).Error
}

// ListDocuments returns a class's documents, most recent first.
func (s *GormStore) ListDocuments(classID string) ([]domain.Document, error) {
	var models []DocumentModel
	if err := s.db.Where("class_id = ?", classID).Order("uploaded_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Document, 0, len(models))
	for _, m := range models {
		res = append(res, documentFromModel(m))
	}
	return res, nil
}

// GetDocument retrieves a document by ID.
func (s *GormStore) GetDocument(id string) (domain.Document, bool, error) {
	var m DocumentModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Document{}, false, nil
		}
		return domain.Document{}, false, err
	}
	return documentFromModel(m), true, nil
}

// CreateDocument inserts a document record and returns the stored row
// with the server-assigned ID and upload timestamp.
func (s *GormStore) CreateDocument(d domain.Document) (domain.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	m := documentToModel(d)
	if err := s.db.Create(&m).Error; err != nil {
		return domain.Document{}, err
	}
	return documentFromModel(m), nil
}

// DeleteDocument removes a document record by ID.
func (s *GormStore) DeleteDocument(id string) error {
	return s.db.Delete(&DocumentModel{}, "id = ?", id).Error
}

func classFromModel(m ClassModel) domain.Class {
	return domain.Class{ID: m.ID, BranchID: m.BranchID, Name: m.Name}
}

func studentFromModel(m StudentModel) domain.Student {
	return domain.Student{ID: m.ID, ClassID: m.ClassID, Name: m.Name, Email: m.Email}
}

func eventToModel(e domain.Event) EventModel {
	return EventModel{
		ID:          e.ID,
		ClassID:     e.ClassID,
		Title:       e.Title,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Description: e.Description,
	}
}

func eventFromModel(m EventModel) domain.Event {
	return domain.Event{
		ID:          m.ID,
		ClassID:     m.ClassID,
		Title:       m.Title,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Description: m.Description,
	}
}

func documentToModel(d domain.Document) DocumentModel {
	return DocumentModel{
		ID:         d.ID,
		ClassID:    d.ClassID,
		Title:      d.Title,
		FileURL:    d.FileURL,
		FilePath:   d.FilePath,
		UploadedBy: d.UploadedBy,
		UploadedAt: d.UploadedAt,
	}
}

func documentFromModel(m DocumentModel) domain.Document {
	return domain.Document{
		ID:         m.ID,
		ClassID:    m.ClassID,
		Title:      m.Title,
		FileURL:    m.FileURL,
		FilePath:   m.FilePath,
		UploadedBy: m.UploadedBy,
		UploadedAt: m.UploadedAt,
	}
}
