package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleType says how a tier's draw is triggered.
type ScheduleType string

const (
	ScheduleManual    ScheduleType = "MANUAL"
	ScheduleScheduled ScheduleType = "SCHEDULED"
)

// PrizeTier is a score-range-bound prize category with its own drawing pool.
// Among tiers with Active=true, score ranges are pairwise disjoint.
type PrizeTier struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	NameLocalized    map[string]string  `bson:"nameLocalized,omitempty" json:"nameLocalized,omitempty"`
	MinScore         int                `bson:"minScore" json:"minScore"`
	MaxScore         int                `bson:"maxScore" json:"maxScore"`
	PrizeName        string             `bson:"prizeName" json:"prizeName"`
	PrizeDescription string             `bson:"prizeDescription,omitempty" json:"prizeDescription,omitempty"`
	PrizeImageURL    string             `bson:"prizeImageUrl,omitempty" json:"prizeImageUrl,omitempty"`
	WinnersCount     int                `bson:"winnersCount" json:"winnersCount"`
	ScheduleType     ScheduleType       `bson:"scheduleType" json:"scheduleType"`
	DrawAt           time.Time          `bson:"drawAt,omitempty" json:"drawAt,omitempty"`
	DisplayOrder     int                `bson:"displayOrder" json:"displayOrder"`
	Active           bool               `bson:"active" json:"active"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContainsScore reports whether score falls inside the tier's inclusive range.
func (t *PrizeTier) ContainsScore(score int) bool {
	return score >= t.MinScore && score <= t.MaxScore
}

// Overlaps reports whether two inclusive score ranges intersect.
func (t *PrizeTier) Overlaps(other *PrizeTier) bool {
	return t.MinScore <= other.MaxScore && other.MinScore <= t.MaxScore
}

// PrizeTierUpdate carries the fields an operator is allowed to change.
// Absent (nil) fields are left untouched.
type PrizeTierUpdate struct {
	Name             *string            `json:"name,omitempty"`
	NameLocalized    *map[string]string `json:"nameLocalized,omitempty"`
	MinScore         *int               `json:"minScore,omitempty"`
	MaxScore         *int               `json:"maxScore,omitempty"`
	PrizeName        *string            `json:"prizeName,omitempty"`
	PrizeDescription *string            `json:"prizeDescription,omitempty"`
	PrizeImageURL    *string            `json:"prizeImageUrl,omitempty"`
	WinnersCount     *int               `json:"winnersCount,omitempty"`
	ScheduleType     *ScheduleType      `json:"scheduleType,omitempty"`
	DrawAt           *time.Time         `json:"drawAt,omitempty"`
	DisplayOrder     *int               `json:"displayOrder,omitempty"`
	Active           *bool              `json:"active,omitempty"`
}

// TouchesRange reports whether the update changes the score range or the
// active flag, either of which requires the overlap invariant to be
// re-checked.
func (u *PrizeTierUpdate) TouchesRange() bool {
	return u.MinScore != nil || u.MaxScore != nil || u.Active != nil
}

// TierSummary is a tier plus the aggregate counts shown in operator views.
type TierSummary struct {
	PrizeTier   `bson:",inline"`
	EntryCount  int64 `json:"entryCount"`
	WinnerCount int64 `json:"winnerCount"`
}

// TierEligibility annotates a tier with whether a participant already holds
// an entry in it.
type TierEligibility struct {
	Tier           *PrizeTier `json:"tier"`
	AlreadyEntered bool       `json:"alreadyEntered"`
}
