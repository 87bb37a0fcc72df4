package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	Organizer    primitive.ObjectID   `bson:"organizer" json:"organizer"`
	Date         time.Time            `bson:"date" json:"date"`
	Location     string               `bson:"location,omitempty" json:"location,omitempty"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
}

type Club struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Contact     string               `bson:"contact,omitempty" json:"contact,omitempty"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// IsMember reports whether id is in the member list.
func (c *Club) IsMember(id primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// Lost item states.
const (
	LostStatusLost     = "lost"
	LostStatusFound    = "found"
	LostStatusReturned = "returned"
)

type LostItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Contact     string             `bson:"contact,omitempty" json:"contact,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Status      string             `bson:"status" json:"status"`
	ReportedBy  primitive.ObjectID `bson:"reportedBy" json:"reportedBy"`
	ReportedAt  time.Time          `bson:"reportedAt" json:"reportedAt"`
}

// Issue states.
const (
	IssueOpen       = "open"
	IssueInProgress = "in-progress"
	IssueResolved   = "resolved"
	IssueClosed     = "closed"
)

// ValidIssueStatus reports whether s is a known issue state.
func ValidIssueStatus(s string) bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved, IssueClosed:
		return true
	}
	return false
}

// Issue is a feedback report. ReportedBy is nil for anonymous reports.
type Issue struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type       string              `bson:"type" json:"type"`
	Title      string              `bson:"title" json:"title"`
	Message    string              `bson:"message" json:"message"`
	Contact    string              `bson:"contact,omitempty" json:"contact,omitempty"`
	ReportedBy *primitive.ObjectID `bson:"reportedBy,omitempty" json:"reportedBy,omitempty"`
	Status     string              `bson:"status" json:"status"`
	Response   string              `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}
