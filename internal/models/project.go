package models

import "time"

type Project struct {
	ID             uint64    `gorm:"primarykey" bson:"_id" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Description    string    `gorm:"type:text" bson:"description" json:"description"`
	OwnerID        uint64    `gorm:"not null;index" bson:"owner_id" json:"owner_id"`
	LastEditedByID *uint64   `bson:"last_edited_by,omitempty" json:"last_edited_by_id"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"index" bson:"updated_at" json:"updated_at"`

	// MemberIDs is kept in project_members by the relational store and
	// inline by the document store.
	MemberIDs []uint64 `gorm:"-" bson:"member_ids" json:"member_ids"`
}

// HasMember reports whether userID is listed as a member. The owner is
// not implied.
func (p *Project) HasMember(userID uint64) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
