package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"facultyportal/internal/portal"
	"facultyportal/internal/ratelimit"
	"facultyportal/internal/util"
	"facultyportal/pkg/auth"
	"facultyportal/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                     *portal.App
	RedisAddr               string
	RedisPassword           string
	LoginRateLimitPerMinute int
	MaxUploadBytes          int64
	AllowedExtensions       []string
}

// Server exposes the portal HTTP endpoints.
type Server struct {
	app               *portal.App
	mux               *http.ServeMux
	maxUploadBytes    int64
	allowedExtensions map[string]struct{}
	loginLimiter      *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("portal app is required")
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	loginLimiter, err := ratelimit.NewRedisFixedWindowLimiter(
		cfg.RedisAddr, cfg.RedisPassword, "portal:ratelimit:login", loginLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init login limiter: %w", err)
	}
	s := &Server{
		app:               cfg.App,
		mux:               http.NewServeMux(),
		maxUploadBytes:    normalizeMaxBytes(cfg.MaxUploadBytes),
		allowedExtensions: normalizeExtensions(cfg.AllowedExtensions),
		loginLimiter:      loginLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// branches, classes, portal resources (auth required)
	s.mux.Handle("/api/branches", s.authenticated(s.handleBranches))
	s.mux.Handle("/api/branches/", s.authenticated(s.handleBranchByID))
	s.mux.Handle("/api/classes", s.authenticated(s.handleClasses))
	s.mux.Handle("/api/classes/", s.authenticated(s.handleClassByID))
	s.mux.Handle("/api/students/", s.authenticated(s.handleStudentByID))
	s.mux.Handle("/api/events/", s.authenticated(s.handleEventByID))
	s.mux.Handle("/api/documents/", s.authenticated(s.handleDocumentByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type sessionHandler func(http.ResponseWriter, *http.Request, domain.Session)

func (s *Server) authenticated(next sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.authorize(r)
		if !ok {
			s.audit(r, "portal.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, sess)
	})
}

// requireMutate rejects read-only roles before a write is attempted.
func (s *Server) requireMutate(w http.ResponseWriter, r *http.Request, sess domain.Session) bool {
	if auth.CanMutate(sess.Role) {
		return true
	}
	s.audit(r, "portal.mutate", "fail", "user_id", sess.ID, "role", string(sess.Role))
	writeError(w, http.StatusForbidden, "forbidden")
	return false
}

func (s *Server) authorize(r *http.Request) (domain.Session, bool) {
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "portal.token.verify", "fail", "reason", "missing_token")
		return domain.Session{}, false
	}
	sess, ok := s.app.SessionFromToken(token)
	if !ok {
		s.audit(r, "portal.token.verify", "fail", "reason", "invalid_token")
		return domain.Session{}, false
	}
	return sess, true
}

// auth handlers
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "portal.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "portal.login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sess, token, err := s.app.SignIn(req.Email, req.Password)
	if err != nil {
		s.audit(r, "portal.login", "fail", "reason", err.Error())
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.login", "success", "user_id", sess.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: sess})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "portal.logout", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.SignOut(token); err != nil {
		s.audit(r, "portal.logout", "fail", "reason", err.Error())
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// /api/branches
func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		branches, err := s.app.ListBranches()
		if err != nil {
			writePortalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": branches,
			"count": len(branches),
		})
	case http.MethodPost:
		if !s.requireMutate(w, r, sess) {
			return
		}
		var in portal.CreateBranchInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		branch, err := s.app.CreateBranch(in)
		if err != nil {
			writePortalError(w, err)
			return
		}
		s.audit(r, "portal.branch.create", "success", "user_id", sess.ID, "branch_id", branch.ID)
		writeJSON(w, http.StatusCreated, branch)
	default:
		methodNotAllowed(w)
	}
}

// /api/branches/{id} or /api/branches/{id}/classes
func (s *Server) handleBranchByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	path := strings.TrimPrefix(r.URL.Path, "/api/branches/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 2 && parts[1] == "classes" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		branch, classes, err := s.app.BranchClasses(r.Context(), id)
		if err != nil {
			writePortalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"branch": branch,
			"items":  classes,
			"count":  len(classes),
		})
		return
	}
	if len(parts) == 2 {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if !s.requireMutate(w, r, sess) {
		return
	}
	if err := s.app.DeleteBranch(id); err != nil {
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.branch.delete", "success", "user_id", sess.ID, "branch_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// /api/classes
func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.requireMutate(w, r, sess) {
		return
	}
	var in portal.CreateClassInput
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	class, err := s.app.CreateClass(in)
	if err != nil {
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.class.create", "success", "user_id", sess.ID, "class_id", class.ID)
	writeJSON(w, http.StatusCreated, class)
}

// /api/classes/{id} or /api/classes/{id}/{students|events|documents}
func (s *Server) handleClassByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	path := strings.TrimPrefix(r.URL.Path, "/api/classes/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "students":
			s.handleClassStudents(w, r, sess, id)
		case "events":
			s.handleClassEvents(w, r, sess, id)
		case "documents":
			s.handleClassDocuments(w, r, sess, id)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		class, branchName, err := s.app.PortalInfo(id)
		if err != nil {
			writePortalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"class":      class,
			"branchName": branchName,
		})
	case http.MethodDelete:
		if !s.requireMutate(w, r, sess) {
			return
		}
		if err := s.app.DeleteClass(id); err != nil {
			writePortalError(w, err)
			return
		}
		s.audit(r, "portal.class.delete", "success", "user_id", sess.ID, "class_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClassStudents(w http.ResponseWriter, r *http.Request, sess domain.Session, classID string) {
	switch r.Method {
	case http.MethodGet:
		students, err := s.app.ListStudents(classID)
		if err != nil {
			writePortalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": students,
			"count": len(students),
		})
	case http.MethodPost:
		if !s.requireMutate(w, r, sess) {
			return
		}
		var in portal.CreateStudentInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		in.ClassID = classID
		student, err := s.app.CreateStudent(in)
		if err != nil {
			writePortalError(w, err)
			return
		}
		s.audit(r, "portal.student.create", "success", "user_id", sess.ID, "student_id", student.ID)
		writeJSON(w, http.StatusCreated, student)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClassEvents(w http.ResponseWriter, r *http.Request, sess domain.Session, classID string) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.app.ListEvents(classID)
		if err != nil {
			writePortalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": events,
			"count": len(events),
		})
	case http.MethodPost:
		if !s.requireMutate(w, r, sess) {
			return
		}
		var in portal.CreateEventInput
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		in.ClassID = classID
		event, err := s.app.CreateEvent(in)
		if err != nil {
			writePortalError(w, err)
			return
		}
		s.audit(r, "portal.event.create", "success", "user_id", sess.ID, "event_id", event.ID)
		writeJSON(w, http.StatusCreated, event)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClassDocuments(w http.ResponseWriter, r *http.Request, sess domain.Session, classID string) {
	switch r.Method {
	case http.MethodGet:
		docs, err := s.app.ListDocuments(classID)
		if err != nil {
			writePortalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": docs,
			"count": len(docs),
		})
	case http.MethodPost:
		if !s.requireMutate(w, r, sess) {
			return
		}
		s.handleUploadDocument(w, r, sess, classID)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request, sess domain.Session, classID string) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	if !s.isExtensionAllowed(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}
	doc, err := s.app.UploadDocument(r.Context(), portal.UploadDocumentInput{
		ClassID:    classID,
		Title:      r.FormValue("title"),
		Filename:   header.Filename,
		Size:       header.Size,
		File:       file,
		UploadedBy: sess.Email,
	})
	if err != nil {
		s.audit(r, "portal.document.upload", "fail", "user_id", sess.ID, "reason", err.Error())
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.document.upload", "success", "user_id", sess.ID, "document_id", doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

// /api/students/{id}
func (s *Server) handleStudentByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	id, ok := trailingID(w, r, "/api/students/")
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if !s.requireMutate(w, r, sess) {
		return
	}
	if err := s.app.DeleteStudent(id); err != nil {
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.student.delete", "success", "user_id", sess.ID, "student_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// /api/events/{id}
func (s *Server) handleEventByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	id, ok := trailingID(w, r, "/api/events/")
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if !s.requireMutate(w, r, sess) {
		return
	}
	if err := s.app.DeleteEvent(id); err != nil {
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.event.delete", "success", "user_id", sess.ID, "event_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// /api/documents/{id}
func (s *Server) handleDocumentByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	id, ok := trailingID(w, r, "/api/documents/")
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if !s.requireMutate(w, r, sess) {
		return
	}
	if err := s.app.DeleteDocument(r.Context(), id); err != nil {
		s.audit(r, "portal.document.delete", "fail", "user_id", sess.ID, "document_id", id, "reason", err.Error())
		writePortalError(w, err)
		return
	}
	s.audit(r, "portal.document.delete", "success", "user_id", sess.ID, "document_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func trailingID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return "", false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  domain.Session `json:"user"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		slog.Warn("missing bearer prefix", "path", r.URL.Path)
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		slog.Warn("empty bearer token", "path", r.URL.Path)
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePortalError(w http.ResponseWriter, err error) {
	var verr *portal.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, portal.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid login credentials")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 25 * 1024 * 1024
	}
	return value
}

func normalizeExtensions(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = struct{}{}
	}
	return out
}

func (s *Server) isExtensionAllowed(filename string) bool {
	if len(s.allowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := s.allowedExtensions[ext]
	return ok
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", clientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + clientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
