// Package models declares the business entities shared across the
// document management domains: users, documents and their history,
// correspondence, meeting minutes, actions and tasks.
package models

import (
	"errors"
	"slices"
)

// ErrInvalidValue is returned when a string does not name a known enum value.
var ErrInvalidValue = errors.New("invalid enum value")

// UserRole is the authorization level of a user.
type UserRole string

const (
	RoleSuperAdmin       UserRole = "SUPER_ADMIN"
	RoleAdministrator    UserRole = "ADMINISTRATOR"
	RoleApprover         UserRole = "APPROVER"
	RoleUser             UserRole = "USER"
	RoleVisitor          UserRole = "VISITOR"
	RoleAgentBureauOrdre UserRole = "AGENT_BUREAU_ORDRE"
)

var userRoles = []UserRole{
	RoleSuperAdmin,
	RoleAdministrator,
	RoleApprover,
	RoleUser,
	RoleVisitor,
	RoleAgentBureauOrdre,
}

func (r UserRole) Valid() bool { return slices.Contains(userRoles, r) }

func ParseUserRole(s string) (UserRole, error) { return parse(s, UserRole.Valid) }

// ActionStatus tracks the progress of an Action.
type ActionStatus string

const (
	ActionPending    ActionStatus = "PENDING"
	ActionInProgress ActionStatus = "IN_PROGRESS"
	ActionCompleted  ActionStatus = "COMPLETED"
	ActionCancelled  ActionStatus = "CANCELLED"
)

var actionStatuses = []ActionStatus{
	ActionPending,
	ActionInProgress,
	ActionCompleted,
	ActionCancelled,
}

func (s ActionStatus) Valid() bool { return slices.Contains(actionStatuses, s) }

func ParseActionStatus(s string) (ActionStatus, error) { return parse(s, ActionStatus.Valid) }

// Priority ranks actions and correspondence.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var priorities = []Priority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityUrgent,
}

func (p Priority) Valid() bool { return slices.Contains(priorities, p) }

func ParsePriority(s string) (Priority, error) { return parse(s, Priority.Valid) }

// DocumentCategory is the storage category of a quality document. Document
// type codes from the code configuration map onto one of these values.
type DocumentCategory string

const (
	CategoryFormulaire DocumentCategory = "FORMULAIRE_DOC"
	CategoryQualite    DocumentCategory = "QUALITE_DOC"
	CategoryNouveau    DocumentCategory = "NOUVEAU_DOC"
	CategoryGeneral    DocumentCategory = "GENERAL"
)

var categories = []DocumentCategory{
	CategoryFormulaire,
	CategoryQualite,
	CategoryNouveau,
	CategoryGeneral,
}

func (c DocumentCategory) Valid() bool { return slices.Contains(categories, c) }

// ParseDocumentCategory validates s as a known category.
func ParseDocumentCategory(s string) (DocumentCategory, error) {
	return parse(s, DocumentCategory.Valid)
}

// Airport is the organizational location a record belongs to.
type Airport string

const (
	AirportEnfidha  Airport = "ENFIDHA"
	AirportMonastir Airport = "MONASTIR"
	AirportGenerale Airport = "GENERALE"
)

var airports = []Airport{
	AirportEnfidha,
	AirportMonastir,
	AirportGenerale,
}

func (a Airport) Valid() bool { return slices.Contains(airports, a) }

func ParseAirport(s string) (Airport, error) { return parse(s, Airport.Valid) }

// Airports returns the known airports.
func Airports() []Airport { return airports }

// DocumentStatus is the publication state of a document.
type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "DRAFT"
	StatusActive   DocumentStatus = "ACTIVE"
	StatusArchived DocumentStatus = "ARCHIVED"
)

var documentStatuses = []DocumentStatus{
	StatusDraft,
	StatusActive,
	StatusArchived,
}

func (s DocumentStatus) Valid() bool { return slices.Contains(documentStatuses, s) }

// ParseDocumentStatus validates s as a known document status.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	return parse(s, DocumentStatus.Valid)
}

// EntityType identifies the kind of record an ActivityLog entry refers to.
type EntityType string

const (
	EntityUser           EntityType = "USER"
	EntityDocument       EntityType = "DOCUMENT"
	EntityAction         EntityType = "ACTION"
	EntityTask           EntityType = "TASK"
	EntityCorrespondance EntityType = "CORRESPONDANCE"
	EntityProcesVerbal   EntityType = "PROCES_VERBAL"
)

// HistoryAction is the event recorded by a DocumentHistory entry.
type HistoryAction string

const (
	HistoryCreated    HistoryAction = "CREATED"
	HistoryUpdated    HistoryAction = "UPDATED"
	HistoryApproved   HistoryAction = "APPROVED"
	HistoryRejected   HistoryAction = "REJECTED"
	HistoryArchived   HistoryAction = "ARCHIVED"
	HistoryDownloaded HistoryAction = "DOWNLOADED"
	HistoryViewed     HistoryAction = "VIEWED"
)

func parse[T ~string](s string, valid func(T) bool) (T, error) {
	if v := T(s); valid(v) {
		return v, nil
	}
	return "", ErrInvalidValue
}
