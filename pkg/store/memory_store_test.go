package store

import (
	"testing"
	"time"

	"facultyportal/pkg/domain"
)

func TestListStudentsSortedByName(t *testing.T) {
	s := NewMemoryStore()
	for _, name := range []string{"Bob", "Ann"} {
		if _, err := s.CreateStudent(domain.Student{ClassID: "c1", Name: name, Email: name + "@uni.com"}); err != nil {
			t.Fatalf("create student %s: %v", name, err)
		}
	}
	students, err := s.ListStudents("c1")
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 || students[0].Name != "Ann" || students[1].Name != "Bob" {
		t.Fatalf("students = %+v, want [Ann Bob]", students)
	}
}

func TestListEventsSortedByStartTime(t *testing.T) {
	s := NewMemoryStore()
	t1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	// Insert later event first.
	for _, start := range []time.Time{t2, t1} {
		if _, err := s.CreateEvent(domain.Event{ClassID: "c1", Title: "Lecture", StartTime: start, EndTime: start.Add(time.Hour)}); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}
	events, err := s.ListEvents("c1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || !events[0].StartTime.Equal(t1) || !events[1].StartTime.Equal(t2) {
		t.Fatalf("events out of order: %+v", events)
	}
}

func TestListClassesFiltersByBranch(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.CreateClass(domain.Class{BranchID: "3", Name: "Algebra"}); err != nil {
		t.Fatalf("create class: %v", err)
	}
	if _, err := s.CreateClass(domain.Class{BranchID: "4", Name: "Biology"}); err != nil {
		t.Fatalf("create class: %v", err)
	}
	classes, err := s.ListClasses("3")
	if err != nil {
		t.Fatalf("list classes: %v", err)
	}
	if len(classes) != 1 || classes[0].BranchID != "3" {
		t.Fatalf("classes = %+v, want only branch 3", classes)
	}
}

func TestListDocumentsMostRecentFirst(t *testing.T) {
	s := NewMemoryStore()
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	for _, d := range []domain.Document{
		{ClassID: "c1", Title: "Syllabus", FilePath: "documents/c1/a.pdf", UploadedAt: older},
		{ClassID: "c1", Title: "Notes", FilePath: "documents/c1/b.pdf", UploadedAt: newer},
	} {
		if _, err := s.CreateDocument(d); err != nil {
			t.Fatalf("create document: %v", err)
		}
	}
	docs, err := s.ListDocuments("c1")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 2 || docs[0].Title != "Notes" || docs[1].Title != "Syllabus" {
		t.Fatalf("documents = %+v, want newest first", docs)
	}
}

func TestCreateAssignsServerIDs(t *testing.T) {
	s := NewMemoryStore()
	b, err := s.CreateBranch(domain.Branch{Name: "North"})
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if b.ID == "" {
		t.Fatalf("expected server-assigned branch ID")
	}
	doc, err := s.CreateDocument(domain.Document{ClassID: "c1", Title: "T", FilePath: "k"})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if doc.ID == "" || doc.UploadedAt.IsZero() {
		t.Fatalf("expected server-assigned document ID and timestamp, got %+v", doc)
	}
}
