package portal

import (
	"io"
	"time"
)

// Create inputs. Required-field rules match the portal forms: every
// name/title and the student email must be non-empty, event times must
// be set.
type CreateBranchInput struct {
	Name string `json:"name" validate:"required"`
}

type CreateClassInput struct {
	BranchID string `json:"branchId" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type CreateStudentInput struct {
	ClassID string `json:"classId" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
}

type CreateEventInput struct {
	ClassID     string    `json:"classId" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required"`
	Description string    `json:"description"`
}

// UploadDocumentInput carries the multipart upload. Size must match the
// reader's length for the blob store.
type UploadDocumentInput struct {
	ClassID    string `validate:"required"`
	Title      string `validate:"required"`
	UploadedBy string
	Filename   string
	Size       int64
	File       io.Reader
}
