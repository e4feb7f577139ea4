package store

import "facultyportal/pkg/domain"

// Store defines persistence operations for the portal entities.
// List calls return rows already filtered by parent key and in display
// order: branches, classes, and students by name ascending, events by
// start time ascending, documents most-recent-first.
type Store interface {
	// branches
	ListBranches() ([]domain.Branch, error)
	GetBranch(id string) (domain.Branch, bool, error)
	CreateBranch(b domain.Branch) (domain.Branch, error)
	DeleteBranch(id string) error

	// classes
	ListClasses(branchID string) ([]domain.Class, error)
	GetClass(id string) (domain.Class, bool, error)
	CreateClass(c domain.Class) (domain.Class, error)
	DeleteClass(id string) error

	// students
	ListStudents(classID string) ([]domain.Student, error)
	CreateStudent(s domain.Student) (domain.Student, error)
	DeleteStudent(id string) error

	// events
	ListEvents(classID string) ([]domain.Event, error)
	CreateEvent(e domain.Event) (domain.Event, error)
	DeleteEvent(id string) error

	// documents
	ListDocuments(classID string) ([]domain.Document, error)
	GetDocument(id string) (domain.Document, bool, error)
	CreateDocument(d domain.Document) (domain.Document, error)
	DeleteDocument(id string) error
}

// SessionStore binds opaque tokens to signed-in identities.
// DeleteSession of an unknown token is a no-op, so sign-out stays
// idempotent.
type SessionStore interface {
	NewSession(s domain.Session) (string, error)
	SessionByToken(token string) (domain.Session, bool, error)
	DeleteSession(token string) error
}
