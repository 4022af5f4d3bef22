package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPending   DocumentStatus = "pending"
	StatusApproved  DocumentStatus = "approved"
	StatusCompleted DocumentStatus = "completed"
	StatusCancelled DocumentStatus = "cancelled"
)

var transitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:    {StatusPending, StatusCancelled},
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a document may move from one status to another.
func CanTransition(from, to DocumentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// NewDocumentNumber builds numbers like IN-20240131-1A2B3C4D.
func NewDocumentNumber(prefix string, t time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s-%s", prefix, t.Format("20060102"), strings.ToUpper(id[:8]))
}
