package model

import "time"

const (
	TimelineCategoryCeremony    = "Ceremony"
	TimelineCategoryCatering    = "Catering"
	TimelineCategoryPhotography = "Photography"
	TimelineCategoryMusic       = "Music"
	TimelineCategoryGeneral     = "General"
	TimelineCategoryLogistics   = "Logistics"
)

const (
	TimelineStatusPending   = "pending"
	TimelineStatusCompleted = "completed"
)

type TimelineItem struct {
	ID          string    `json:"id" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID      string    `json:"user" bson:"user" validate:"required,mongodb"`
	Title       string    `json:"title" bson:"title" validate:"required,min=1,max=200"`
	Time        string    `json:"time" bson:"time" validate:"required,len=5,datetime=15:04"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Category    string    `json:"category" bson:"category" validate:"required,oneof=Ceremony Catering Photography Music General Logistics"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending completed"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type TimelineItemUpdate struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Time        *string `json:"time,omitempty" validate:"omitempty,len=5,datetime=15:04"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,oneof=Ceremony Catering Photography Music General Logistics"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
}
