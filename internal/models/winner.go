package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeWinner records one selected entry from one draw. Participant and
// prize fields are denormalized at draw time so later edits to the tier or
// entry never alter the historical record. ClaimCode is unique and
// single-use: Claimed flips false to true exactly once.
type PrizeWinner struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EntryID          primitive.ObjectID `bson:"entryId" json:"entryId"`
	TierID           primitive.ObjectID `bson:"tierId" json:"tierId"`
	DrawID           primitive.ObjectID `bson:"drawId" json:"drawId"`
	MSISDN           string             `bson:"msisdn" json:"msisdn"`
	DisplayName      string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	PrizeName        string             `bson:"prizeName" json:"prizeName"`
	PrizeDescription string             `bson:"prizeDescription,omitempty" json:"prizeDescription,omitempty"`
	DrawSequence     int                `bson:"drawSequence" json:"drawSequence"`
	ClaimCode        string             `bson:"claimCode" json:"claimCode"`
	Claimed          bool               `bson:"claimed" json:"claimed"`
	ClaimedAt        time.Time          `bson:"claimedAt,omitempty" json:"claimedAt,omitempty"`
	ClaimBranch      string             `bson:"claimBranch,omitempty" json:"claimBranch,omitempty"`
	ClaimedBy        string             `bson:"claimedBy,omitempty" json:"claimedBy,omitempty"`
	ClaimNotes       string             `bson:"claimNotes,omitempty" json:"claimNotes,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
