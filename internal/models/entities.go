package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is an authenticated member of the organization.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         UserRole  `json:"role"`
	ProfilePhoto *string   `json:"profile_photo,omitempty"`
	Airport      Airport   `json:"airport"`
	IsActive     bool      `json:"is_active"`
	Phone        *string   `json:"phone,omitempty"`
	Department   *string   `json:"department,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FormField describes one input of a downloadable form template.
type FormField struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Placeholder *string  `json:"placeholder,omitempty"`
	Validation  *string  `json:"validation,omitempty"`
}

// FormulaireDoc is a form template that users fill in or download.
type FormulaireDoc struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Template       string      `json:"template"`
	Fields         []FormField `json:"fields"`
	IsDownloadable bool        `json:"is_downloadable"`
	Category       string      `json:"category"`
	FilePath       *string     `json:"file_path,omitempty"`
	FileType       *string     `json:"file_type,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Correspondance is an incoming or outgoing letter.
type Correspondance struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	AuthorID       uuid.UUID `json:"author_id"`
	QRCode         string    `json:"qr_code"`
	FilePath       *string   `json:"file_path,omitempty"`
	FileType       *string   `json:"file_type,omitempty"`
	Version        int       `json:"version"`
	ViewsCount     int       `json:"views_count"`
	DownloadsCount int       `json:"downloads_count"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Subject        string    `json:"subject"`
	Content        string    `json:"content"`
	Attachments    []string  `json:"attachments"`
	Actions        []Action  `json:"actions"`
	Priority       Priority  `json:"priority"`
	Status         string    `json:"status"`
	Airport        Airport   `json:"airport"`
	Direction      string    `json:"type"`
	Code           *string   `json:"code,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProcesVerbal records the minutes of a meeting.
type ProcesVerbal struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	AuthorID        uuid.UUID  `json:"author_id"`
	QRCode          string     `json:"qr_code"`
	FilePath        *string    `json:"file_path,omitempty"`
	FileType        *string    `json:"file_type,omitempty"`
	Version         int        `json:"version"`
	ViewsCount      int        `json:"views_count"`
	DownloadsCount  int        `json:"downloads_count"`
	MeetingDate     time.Time  `json:"meeting_date"`
	Participants    []string   `json:"participants"`
	Agenda          string     `json:"agenda"`
	Decisions       string     `json:"decisions"`
	Actions         []Action   `json:"actions"`
	NextMeetingDate *time.Time `json:"next_meeting_date,omitempty"`
	Location        string     `json:"location"`
	MeetingType     string     `json:"meeting_type"`
	Airport         Airport    `json:"airport"`
}

// Action is a follow-up item raised from a document, letter or meeting.
type Action struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	AssignedTo       []string     `json:"assigned_to"`
	DueDate          time.Time    `json:"due_date"`
	Status           ActionStatus `json:"status"`
	Priority         Priority     `json:"priority"`
	ParentDocumentID uuid.UUID    `json:"parent_document_id"`
	Tasks            []Task       `json:"tasks"`
	Progress         int          `json:"progress"`
	EstimatedHours   *float64     `json:"estimated_hours,omitempty"`
	ActualHours      *float64     `json:"actual_hours,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Task is a unit of work within an Action.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Completed      bool       `json:"completed"`
	AssignedTo     string     `json:"assigned_to"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ActionID       uuid.UUID  `json:"action_id"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
}

// ActivityLog is an audit trail entry.
type ActivityLog struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Action     string     `json:"action"`
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Details    string     `json:"details"`
	Timestamp  time.Time  `json:"timestamp"`
	IPAddress  *string    `json:"ip_address,omitempty"`
	UserAgent  *string    `json:"user_agent,omitempty"`
}

// DocumentHistory is one event in the life of a document. Changes holds the
// field values written by the event.
type DocumentHistory struct {
	ID         uuid.UUID       `json:"id"`
	DocumentID uuid.UUID       `json:"document_id"`
	Action     HistoryAction   `json:"action"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	Comment    *string         `json:"comment,omitempty"`
	Version    int             `json:"version"`
}

// QRCodeData tracks usage of a document's printed code.
type QRCodeData struct {
	ID            uuid.UUID  `json:"id"`
	DocumentID    uuid.UUID  `json:"document_id"`
	QRCode        string     `json:"qr_code"`
	GeneratedAt   time.Time  `json:"generated_at"`
	DownloadCount int        `json:"download_count"`
	LastAccessed  *time.Time `json:"last_accessed,omitempty"`
}

// ReportConfig defines a scheduled report.
type ReportConfig struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Filters    map[string]any `json:"filters"`
	Schedule   *string        `json:"schedule,omitempty"`
	Recipients []string       `json:"recipients"`
	CreatedBy  uuid.UUID      `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AirportSite is the contact sheet of one airport in AppSettings.
type AirportSite struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// EmailSettings holds outbound mail parameters.
type EmailSettings struct {
	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	Username string `json:"username"`
	UseSSL   bool   `json:"use_ssl"`
}

// AppSettings is the organization-wide application configuration.
type AppSettings struct {
	ID                    uuid.UUID     `json:"id"`
	CompanyName           string        `json:"company_name"`
	CompanyLogo           *string       `json:"company_logo,omitempty"`
	Airports              []AirportSite `json:"airports"`
	Email                 EmailSettings `json:"email_settings"`
	DocumentRetentionDays int           `json:"document_retention_days"`
	MaxFileSize           int           `json:"max_file_size"`
	AllowedFileTypes      []string      `json:"allowed_file_types"`
	Theme                 string        `json:"theme"`
	Language              string        `json:"language"`
}
