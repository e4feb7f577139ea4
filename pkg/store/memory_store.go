package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"facultyportal/pkg/domain"
)

// MemoryStore keeps portal data in-process. It mirrors the Postgres
// store's filter and ordering semantics so tests exercise the same
// observable behavior.
type MemoryStore struct {
	mu        sync.RWMutex
	branches  map[string]domain.Branch
	classes   map[string]domain.Class
	students  map[string]domain.Student
	events    map[string]domain.Event
	documents map[string]domain.Document
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		branches:  make(map[string]domain.Branch),
		classes:   make(map[string]domain.Class),
		students:  make(map[string]domain.Student),
		events:    make(map[string]domain.Event),
		documents: make(map[string]domain.Document),
	}
}

// ListBranches returns all branches ordered by name.
func (m *MemoryStore) ListBranches() ([]domain.Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Branch, 0, len(m.branches))
	for _, b := range m.branches {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// GetBranch returns a branch by ID.
func (m *MemoryStore) GetBranch(id string) (domain.Branch, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.branches[id]
	return b, ok, nil
}

// CreateBranch inserts a branch, assigning an ID when absent.
func (m *MemoryStore) CreateBranch(b domain.Branch) (domain.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.branches[b.ID] = b
	return b, nil
}

// DeleteBranch removes a branch by ID.
func (m *MemoryStore) DeleteBranch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.branches, id)
	return nil
}

// ListClasses returns a branch's classes ordered by name.
func (m *MemoryStore) ListClasses(branchID string) ([]domain.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Class, 0)
	for _, c := range m.classes {
		if c.BranchID == branchID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// GetClass returns a class by ID.
func (m *MemoryStore) GetClass(id string) (domain.Class, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[id]
	return c, ok, nil
}

// CreateClass inserts a class, assigning an ID when absent.
func (m *MemoryStore) CreateClass(c domain.Class) (domain.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.classes[c.ID] = c
	return c, nil
}

// DeleteClass removes a class by ID.
func (m *MemoryStore) DeleteClass(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.classes, id)
	return nil
}

// ListStudents returns a class's students ordered by name.
func (m *MemoryStore) ListStudents(classID string) ([]domain.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Student, 0)
	for _, s := range m.students {
		if s.ClassID == classID {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// CreateStudent inserts a student, assigning an ID when absent.
func (m *MemoryStore) CreateStudent(s domain.Student) (domain.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.students[s.ID] = s
	return s, nil
}

// DeleteStudent removes a student by ID.
func (m *MemoryStore) DeleteStudent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.students, id)
	return nil
}

// ListEvents returns a class's events ordered by start time.
func (m *MemoryStore) ListEvents(classID string) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Event, 0)
	for _, e := range m.events {
		if e.ClassID == classID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartTime.Before(res[j].StartTime) })
	return res, nil
}

// CreateEvent inserts an event, assigning an ID when absent.
func (m *MemoryStore) CreateEvent(e domain.Event) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.events[e.ID] = e
	return e, nil
}

// DeleteEvent removes an event by ID.
func (m *MemoryStore) DeleteEvent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

// ListDocuments returns a class's documents, most recent first.
func (m *MemoryStore) ListDocuments(classID string) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Document, 0)
	for _, d := range m.documents {
		if d.ClassID == classID {
			res = append(res, d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UploadedAt.After(res[j].UploadedAt) })
	return res, nil
}

// GetDocument retrieves a document by ID.
func (m *MemoryStore) GetDocument(id string) (domain.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	return d, ok, nil
}

// CreateDocument inserts a document record, assigning ID and timestamp
// when absent.
func (m *MemoryStore) CreateDocument(d domain.Document) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	m.documents[d.ID] = d
	return d, nil
}

// DeleteDocument removes a document record by ID.
func (m *MemoryStore) DeleteDocument(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, id)
	return nil
}
