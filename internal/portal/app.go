package portal

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"facultyportal/internal/util"
	"facultyportal/pkg/auth"
	"facultyportal/pkg/domain"
	"facultyportal/pkg/storage"
	"facultyportal/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string
	Minio         storage.Config

	// Injection points for tests.
	Store    store.Store
	Sessions store.SessionStore
	Objects  storage.ObjectStore
	Verifier auth.CredentialVerifier
}

// App wires the credential verifier, session store, relational store,
// and blob store behind the portal operations.
type App struct {
	store    store.Store
	sessions store.SessionStore
	objects  storage.ObjectStore
	verifier auth.CredentialVerifier
	validate *validator.Validate
}

// New constructs the application from config, falling back to Postgres
// and MinIO when no stores are injected.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	objects := cfg.Objects
	if objects == nil {
		var err error
		objects, err = storage.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
	}

	sessions := cfg.Sessions
	if sessions == nil {
		switch {
		case cfg.JWTSecret != "":
			sessions = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (jwtSecret or redisAddr)")
		}
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = auth.NewDemoVerifier()
	}

	return &App{
		store:    dataStore,
		sessions: sessions,
		objects:  objects,
		verifier: verifier,
		validate: validator.New(),
	}, nil
}

// SignIn validates credentials and issues a session token. A failed
// attempt issues nothing and touches no state.
func (a *App) SignIn(email, password string) (domain.Session, string, error) {
	sess, err := a.verifier.Verify(email, password)
	if err != nil {
		return domain.Session{}, "", err
	}
	token, err := a.sessions.NewSession(sess)
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("issue session: %w", err)
	}
	return sess, token, nil
}

// SignOut clears the session bound to the token. Idempotent: unknown
// tokens are not an error.
func (a *App) SignOut(token string) error {
	return a.sessions.DeleteSession(token)
}

// SessionFromToken resolves the identity a token was issued for.
func (a *App) SessionFromToken(token string) (domain.Session, bool) {
	sess, ok, err := a.sessions.SessionByToken(token)
	if err != nil || !ok {
		return domain.Session{}, false
	}
	return sess, true
}

// ListBranches returns all branches ordered by name.
func (a *App) ListBranches() ([]domain.Branch, error) {
	return a.store.ListBranches()
}

// CreateBranch inserts a branch and returns the stored row.
func (a *App) CreateBranch(in CreateBranchInput) (domain.Branch, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := a.check(in); err != nil {
		return domain.Branch{}, err
	}
	b, err := a.store.CreateBranch(domain.Branch{Name: in.Name})
	if err != nil {
		return domain.Branch{}, fmt.Errorf("save branch: %w", err)
	}
	return b, nil
}

// DeleteBranch removes a branch by ID.
func (a *App) DeleteBranch(id string) error {
	if err := a.store.DeleteBranch(id); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return nil
}

// BranchClasses resolves a branch and its classes, fetched
// concurrently. An unknown branch yields ErrNotFound.
func (a *App) BranchClasses(ctx context.Context, branchID string) (domain.Branch, []domain.Class, error) {
	var (
		branch  domain.Branch
		classes []domain.Class
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, ok, err := a.store.GetBranch(branchID)
		if err != nil {
			return fmt.Errorf("fetch branch: %w", err)
		}
		if !ok {
			return ErrNotFound
		}
		branch = b
		return nil
	})
	g.Go(func() error {
		cs, err := a.store.ListClasses(branchID)
		if err != nil {
			return fmt.Errorf("fetch classes: %w", err)
		}
		classes = cs
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Branch{}, nil, err
	}
	return branch, classes, nil
}

// CreateClass inserts a class after checking its branch exists.
func (a *App) CreateClass(in CreateClassInput) (domain.Class, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := a.check(in); err != nil {
		return domain.Class{}, err
	}
	_, ok, err := a.store.GetBranch(in.BranchID)
	if err != nil {
		return domain.Class{}, fmt.Errorf("fetch branch: %w", err)
	}
	if !ok {
		return domain.Class{}, ErrNotFound
	}
	c, err := a.store.CreateClass(domain.Class{BranchID: in.BranchID, Name: in.Name})
	if err != nil {
		return domain.Class{}, fmt.Errorf("save class: %w", err)
	}
	return c, nil
}

// DeleteClass removes a class by ID.
func (a *App) DeleteClass(id string) error {
	if err := a.store.DeleteClass(id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// PortalInfo resolves the class header shown above the portal tabs:
// the class plus its parent branch name.
func (a *App) PortalInfo(classID string) (domain.Class, string, error) {
	class, ok, err := a.store.GetClass(classID)
	if err != nil {
		return domain.Class{}, "", fmt.Errorf("fetch class: %w", err)
	}
	if !ok {
		return domain.Class{}, "", ErrNotFound
	}
	branch, ok, err := a.store.GetBranch(class.BranchID)
	if err != nil {
		return domain.Class{}, "", fmt.Errorf("fetch branch: %w", err)
	}
	if !ok {
		return domain.Class{}, "", ErrNotFound
	}
	return class, branch.Name, nil
}

// ListStudents returns a class's students ordered by name.
func (a *App) ListStudents(classID string) ([]domain.Student, error) {
	return a.store.ListStudents(classID)
}

// CreateStudent inserts a student and returns the stored row.
func (a *App) CreateStudent(in CreateStudentInput) (domain.Student, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := a.check(in); err != nil {
		return domain.Student{}, err
	}
	s, err := a.store.CreateStudent(domain.Student{ClassID: in.ClassID, Name: in.Name, Email: in.Email})
	if err != nil {
		return domain.Student{}, fmt.Errorf("save student: %w", err)
	}
	return s, nil
}

// DeleteStudent removes a student by ID.
func (a *App) DeleteStudent(id string) error {
	if err := a.store.DeleteStudent(id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// ListEvents returns a class's events ordered by start time.
func (a *App) ListEvents(classID string) ([]domain.Event, error) {
	return a.store.ListEvents(classID)
}

// CreateEvent inserts a calendar event and returns the stored row.
// TODO: decide whether start must precede end; the portal currently
// accepts reversed ranges.
func (a *App) CreateEvent(in CreateEventInput) (domain.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := a.check(in); err != nil {
		return domain.Event{}, err
	}
	e, err := a.store.CreateEvent(domain.Event{
		ClassID:     in.ClassID,
		Title:       in.Title,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("save event: %w", err)
	}
	return e, nil
}

// DeleteEvent removes an event by ID.
func (a *App) DeleteEvent(id string) error {
	if err := a.store.DeleteEvent(id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListDocuments returns a class's documents, most recent first.
func (a *App) ListDocuments(classID string) ([]domain.Document, error) {
	return a.store.ListDocuments(classID)
}

// UploadDocument stores the file bytes, then inserts the record. When
// the blob write fails no record is created. When the record insert
// fails the blob is left behind.
// TODO: reconciliation sweep for blobs orphaned by a failed insert.
func (a *App) UploadDocument(ctx context.Context, in UploadDocumentInput) (domain.Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := a.check(in); err != nil {
		return domain.Document{}, err
	}
	key := buildDocumentKey(in.ClassID, in.Filename)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(in.Filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.objects.Put(ctx, key, in.File, in.Size, contentType); err != nil {
		return domain.Document{}, fmt.Errorf("store file: %w", err)
	}
	doc, err := a.store.CreateDocument(domain.Document{
		ClassID:    in.ClassID,
		Title:      in.Title,
		FileURL:    a.objects.URL(key),
		FilePath:   key,
		UploadedBy: in.UploadedBy,
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes the blob first, then the record. A failed blob
// delete aborts the whole operation and the record survives.
func (a *App) DeleteDocument(ctx context.Context, id string) error {
	doc, ok, err := a.store.GetDocument(id)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := a.objects.Delete(ctx, doc.FilePath); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if err := a.store.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// check runs required-field validation and converts failures into
// ValidationError before any remote call is made.
func (a *App) check(in any) error {
	err := a.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return &ValidationError{Field: field, Message: strings.ToLower(field) + " is required"}
	}
	return &ValidationError{Message: err.Error()}
}

func buildDocumentKey(classID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("documents/%s/%d-%s%s", classID, time.Now().UnixMilli(), util.NewID(), ext)
}
