package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlgorithmWeightedTicket identifies the selection algorithm in use: each
// entry's odds are proportional to its ticket count, selection is without
// replacement at the entry level.
const AlgorithmWeightedTicket = "weighted-ticket-v1"

// PrizeDraw is the immutable record of one atomic drawing over a tier's
// un-won pool. The seed is forensic metadata: it seeded the selection RNG
// but does not promise bit-for-bit replayability.
type PrizeDraw struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	TierID          primitive.ObjectID   `bson:"tierId" json:"tierId"`
	TotalEntries    int                  `bson:"totalEntries" json:"totalEntries"`
	WinnersSelected int                  `bson:"winnersSelected" json:"winnersSelected"`
	Algorithm       string               `bson:"algorithm" json:"algorithm"`
	Seed            int64                `bson:"seed" json:"seed"`
	Operator        string               `bson:"operator" json:"operator"`
	WinnerIDs       []primitive.ObjectID `bson:"winnerIds" json:"winnerIds"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
}

// DrawResult is what a successful draw returns to the operator.
type DrawResult struct {
	Draw    *PrizeDraw     `json:"draw"`
	Winners []*PrizeWinner `json:"winners"`
}
