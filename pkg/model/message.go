package model

import "time"

type Message struct {
	ID        string    `json:"id" bson:"_id" validate:"required,uuid"`
	BookingID string    `json:"bookingId" bson:"booking" validate:"required,mongodb"`
	SenderID  string    `json:"senderId" bson:"sender" validate:"required,mongodb"`
	Content   string    `json:"content" bson:"content" validate:"required,min=1,max=2000"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// MessageView is what clients receive: the message with its sender resolved.
type MessageView struct {
	*Message
	Sender *AccountSummary `json:"sender"`
}
