package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeEntry is one participant's admission into one tier's drawing pool.
// At most one entry exists per (msisdn, tier); the entries collection
// carries a unique compound index over the pair.
type PrizeEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MSISDN        string             `bson:"msisdn" json:"msisdn"`
	DisplayName   string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	TierID        primitive.ObjectID `bson:"tierId" json:"tierId"`
	Score         int                `bson:"score" json:"score"`
	Tickets       int                `bson:"tickets" json:"tickets"`
	TicketNumbers []int              `bson:"ticketNumbers" json:"ticketNumbers"`
	Won           bool               `bson:"won" json:"won"`
	Origin        string             `bson:"origin,omitempty" json:"origin,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EntryReceipt is what a successful admission returns to the caller.
type EntryReceipt struct {
	Entry    *PrizeEntry `json:"entry"`
	TierName string      `json:"tierName"`
}
