package model

import "time"

const (
	EventTypeWedding    = "Wedding"
	EventTypeBirthday   = "Birthday"
	EventTypeCorporate  = "Corporate"
	EventTypeEngagement = "Engagement"
	EventTypeOther      = "Other"
)

const (
	EventStatusPlanning  = "planning"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

type EventBudget struct {
	Total float64 `json:"total" bson:"total" validate:"min=0"`
	Spent float64 `json:"spent" bson:"spent" validate:"min=0"`
}

type Event struct {
	ID        string      `json:"id" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string      `json:"user" bson:"user" validate:"required,mongodb"`
	Name      string      `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Type      string      `json:"type" bson:"type" validate:"required,oneof=Wedding Birthday Corporate Engagement Other"`
	Date      time.Time   `json:"date" bson:"date" validate:"required"`
	Guests    int         `json:"guests" bson:"guests" validate:"min=0,max=100000"`
	Location  string      `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=300"`
	Budget    EventBudget `json:"budget" bson:"budget"`
	Status    string      `json:"status" bson:"status" validate:"required,oneof=planning active completed cancelled"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}

type EventUpdate struct {
	Name     *string      `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Type     *string      `json:"type,omitempty" validate:"omitempty,oneof=Wedding Birthday Corporate Engagement Other"`
	Date     *string      `json:"date,omitempty"`
	Guests   *int         `json:"guests,omitempty" validate:"omitempty,min=0,max=100000"`
	Location *string      `json:"location,omitempty" validate:"omitempty,max=300"`
	Budget   *EventBudget `json:"budget,omitempty" validate:"omitempty"`
	Status   *string      `json:"status,omitempty" validate:"omitempty,oneof=planning active completed cancelled"`
}

type EventSummary struct {
	ID   string    `json:"id" bson:"_id"`
	Name string    `json:"name" bson:"name"`
	Date time.Time `json:"date" bson:"date"`
}

func (e *Event) Summary() *EventSummary {
	return &EventSummary{ID: e.ID, Name: e.Name, Date: e.Date}
}
