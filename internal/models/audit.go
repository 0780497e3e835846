package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction is the kind of mutating operation an audit entry records.
type AuditAction string

const (
	AuditTierCreated  AuditAction = "TIER_CREATED"
	AuditTierUpdated  AuditAction = "TIER_UPDATED"
	AuditTierDeleted  AuditAction = "TIER_DELETED"
	AuditEntryAdded   AuditAction = "ENTRY_ADDED"
	AuditDrawRun      AuditAction = "DRAW_RUN"
	AuditPrizeClaimed AuditAction = "PRIZE_CLAIMED"
)

// AuditLog is one append-only forensic record. Entries are never mutated
// or deleted by the engine.
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Action     AuditAction        `bson:"action" json:"action"`
	EntityType string             `bson:"entityType" json:"entityType"`
	EntityID   string             `bson:"entityId" json:"entityId"`
	Actor      string             `bson:"actor" json:"actor"`
	Before     interface{}        `bson:"before,omitempty" json:"before,omitempty"`
	After      interface{}        `bson:"after,omitempty" json:"after,omitempty"`
	Origin     string             `bson:"origin,omitempty" json:"origin,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
