package portal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"facultyportal/pkg/domain"
	"facultyportal/pkg/storage"
	"facultyportal/pkg/store"
)

func newTestApp(t *testing.T, dataStore store.Store, objects *storage.MemoryObjectStore) *App {
	t.Helper()
	if dataStore == nil {
		dataStore = store.NewMemoryStore()
	}
	if objects == nil {
		objects = storage.NewMemoryObjectStore()
	}
	app, err := New(Config{
		Store:    dataStore,
		Sessions: store.NewMemorySessionStore(),
		Objects:  objects,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func TestSignInAndSignOut(t *testing.T) {
	app := newTestApp(t, nil, nil)

	sess, token, err := app.SignIn("faculty@uni.com", "password123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if token == "" || sess.Role != domain.RoleFaculty {
		t.Fatalf("sign in = (%+v, %q)", sess, token)
	}
	if got, ok := app.SessionFromToken(token); !ok || got != sess {
		t.Fatalf("session from token = (%+v, %v)", got, ok)
	}

	if err := app.SignOut(token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, ok := app.SessionFromToken(token); ok {
		t.Fatalf("token still valid after sign out")
	}
	// Idempotent.
	if err := app.SignOut(token); err != nil {
		t.Fatalf("repeated sign out: %v", err)
	}
}

func TestSignInFailureIssuesNoToken(t *testing.T) {
	app := newTestApp(t, nil, nil)
	_, token, err := app.SignIn("faculty@uni.com", "wrong")
	if err == nil || token != "" {
		t.Fatalf("expected failure without token, got token=%q err=%v", token, err)
	}
}

func TestCreateStudentValidation(t *testing.T) {
	mem := store.NewMemoryStore()
	app := newTestApp(t, mem, nil)

	_, err := app.CreateStudent(CreateStudentInput{ClassID: "c1", Name: "  ", Email: "ann@uni.com"})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for blank name, got %v", err)
	}
	_, err = app.CreateStudent(CreateStudentInput{ClassID: "c1", Name: "Ann", Email: ""})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for blank email, got %v", err)
	}
	// Nothing was written.
	students, err := mem.ListStudents("c1")
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("store has %d students after rejected creates", len(students))
	}
}

func TestCreateEventAcceptsReversedRange(t *testing.T) {
	app := newTestApp(t, nil, nil)
	end := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	start := end.Add(2 * time.Hour)
	if _, err := app.CreateEvent(CreateEventInput{ClassID: "c1", Title: "Exam", StartTime: start, EndTime: end}); err != nil {
		t.Fatalf("reversed range was rejected: %v", err)
	}
}

func TestCreateClassRequiresExistingBranch(t *testing.T) {
	mem := store.NewMemoryStore()
	app := newTestApp(t, mem, nil)

	if _, err := app.CreateClass(CreateClassInput{BranchID: "missing", Name: "Algebra"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	branch, err := mem.CreateBranch(domain.Branch{Name: "North"})
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	class, err := app.CreateClass(CreateClassInput{BranchID: branch.ID, Name: "Algebra"})
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	if class.ID == "" || class.BranchID != branch.ID {
		t.Fatalf("class = %+v", class)
	}
}

func TestBranchClasses(t *testing.T) {
	mem := store.NewMemoryStore()
	app := newTestApp(t, mem, nil)
	branch, _ := mem.CreateBranch(domain.Branch{Name: "North"})
	_, _ = mem.CreateClass(domain.Class{BranchID: branch.ID, Name: "Biology"})
	_, _ = mem.CreateClass(domain.Class{BranchID: branch.ID, Name: "Algebra"})
	_, _ = mem.CreateClass(domain.Class{BranchID: "other", Name: "Chemistry"})

	got, classes, err := app.BranchClasses(context.Background(), branch.ID)
	if err != nil {
		t.Fatalf("branch classes: %v", err)
	}
	if got.Name != "North" {
		t.Fatalf("branch = %+v", got)
	}
	if len(classes) != 2 || classes[0].Name != "Algebra" || classes[1].Name != "Biology" {
		t.Fatalf("classes = %+v, want [Algebra Biology]", classes)
	}

	if _, _, err := app.BranchClasses(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPortalInfo(t *testing.T) {
	mem := store.NewMemoryStore()
	app := newTestApp(t, mem, nil)
	branch, _ := mem.CreateBranch(domain.Branch{Name: "North"})
	class, _ := mem.CreateClass(domain.Class{BranchID: branch.ID, Name: "Algebra"})

	got, branchName, err := app.PortalInfo(class.ID)
	if err != nil {
		t.Fatalf("portal info: %v", err)
	}
	if got.Name != "Algebra" || branchName != "North" {
		t.Fatalf("portal info = (%+v, %q)", got, branchName)
	}
	if _, _, err := app.PortalInfo("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	objects := storage.NewMemoryObjectStore()
	app := newTestApp(t, nil, objects)

	doc, err := app.UploadDocument(context.Background(), UploadDocumentInput{
		ClassID:    "5",
		Title:      "Syllabus",
		UploadedBy: "u1",
		Filename:   "syllabus.pdf",
		Size:       4,
		File:       strings.NewReader("%PDF"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ID == "" || doc.FileURL == "" || doc.UploadedAt.IsZero() {
		t.Fatalf("doc = %+v", doc)
	}
	if !strings.HasPrefix(doc.FilePath, "documents/5/") || !strings.HasSuffix(doc.FilePath, ".pdf") {
		t.Fatalf("file path = %q, want documents/5/{ts}-{random}.pdf", doc.FilePath)
	}
	if _, ok := objects.Get(doc.FilePath); !ok {
		t.Fatalf("blob missing after upload")
	}

	docs, err := app.ListDocuments("5")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Syllabus" {
		t.Fatalf("documents = %+v", docs)
	}

	if err := app.DeleteDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	docs, _ = app.ListDocuments("5")
	if len(docs) != 0 {
		t.Fatalf("document still listed after delete")
	}
	if _, ok := objects.Get(doc.FilePath); ok {
		t.Fatalf("blob still retrievable after delete")
	}
}

// failingDocStore rejects document inserts to reproduce the orphan-blob
// asymmetry.
type failingDocStore struct {
	*store.MemoryStore
}

func (s *failingDocStore) CreateDocument(domain.Document) (domain.Document, error) {
	return domain.Document{}, errors.New("insert failed")
}

func TestUploadFailureLeavesNoRecord(t *testing.T) {
	objects := storage.NewMemoryObjectStore()
	app := newTestApp(t, &failingDocStore{store.NewMemoryStore()}, objects)

	_, err := app.UploadDocument(context.Background(), UploadDocumentInput{
		ClassID:  "5",
		Title:    "Syllabus",
		Filename: "syllabus.pdf",
		Size:     4,
		File:     strings.NewReader("%PDF"),
	})
	if err == nil {
		t.Fatalf("expected insert failure")
	}
	docs, err := app.ListDocuments("5")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("record present after failed insert: %+v", docs)
	}
	// The blob is orphaned; the documented upload asymmetry.
	if got := objects.Len(); got != 1 {
		t.Fatalf("orphan blob count = %d, want 1", got)
	}
}

func TestUploadPutFailureCreatesNothing(t *testing.T) {
	mem := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore()
	objects.FailPut = true
	app := newTestApp(t, mem, objects)

	_, err := app.UploadDocument(context.Background(), UploadDocumentInput{
		ClassID:  "5",
		Title:    "Syllabus",
		Filename: "syllabus.pdf",
		Size:     4,
		File:     strings.NewReader("%PDF"),
	})
	if err == nil {
		t.Fatalf("expected put failure")
	}
	docs, _ := mem.ListDocuments("5")
	if len(docs) != 0 {
		t.Fatalf("record created despite failed blob write")
	}
}

func TestDeleteDocumentAbortsWhenBlobDeleteFails(t *testing.T) {
	objects := storage.NewMemoryObjectStore()
	app := newTestApp(t, nil, objects)

	doc, err := app.UploadDocument(context.Background(), UploadDocumentInput{
		ClassID:  "5",
		Title:    "Syllabus",
		Filename: "syllabus.pdf",
		Size:     4,
		File:     strings.NewReader("%PDF"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	objects.FailDelete = true
	if err := app.DeleteDocument(context.Background(), doc.ID); err == nil {
		t.Fatalf("expected blob delete failure")
	}
	// The record must survive an aborted delete.
	docs, _ := app.ListDocuments("5")
	if len(docs) != 1 {
		t.Fatalf("record removed despite aborted delete")
	}
}
