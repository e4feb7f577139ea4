package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleFaculty Role = "Faculty"
	RoleStudent Role = "Student"
)

// Session is the authenticated identity bound to a token.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Branch struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Class struct {
	ID       string `json:"id"`
	BranchID string `json:"branchId"`
	Name     string `json:"name"`
}

type Student struct {
	ID      string `json:"id"`
	ClassID string `json:"classId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type Event struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"classId"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Description string    `json:"description,omitempty"`
}

// Document spans two stores: the record below and a blob at FilePath.
// FileURL resolves only while the blob exists.
type Document struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"classId"`
	Title      string    `json:"title"`
	FileURL    string    `json:"fileUrl"`
	FilePath   string    `json:"-"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}
