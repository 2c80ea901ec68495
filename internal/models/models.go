package models

import (
	"time"

	"gorm.io/datatypes"
)

// Account roles. Operators register visitors; admins additionally manage
// accounts and the department directory.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Account is a staff login record. Username uniqueness is checked
// case-insensitively at registration time; there is no database-level
// constraint, so a race between concurrent registrations is possible.
type Account struct {
	ID           uint      `gorm:"primaryKey"                     json:"id"`
	Username     string    `gorm:"type:varchar(255);index;not null" json:"name"`
	Email        string    `gorm:"type:varchar(255)"              json:"email"`
	PasswordHash string    `gorm:"not null"                       json:"-"` // bcrypt, never serialized
	Role         string    `gorm:"type:varchar(32);default:'operator'" json:"role"`
	CreatedAt    time.Time `                                      json:"createdAt"`
	UpdatedAt    time.Time `                                      json:"updatedAt"`
}

// Department is an admin-managed directory entry selectable during registration.
type Department struct {
	ID        uint      `gorm:"primaryKey"                     json:"id"`
	Name      string    `gorm:"type:varchar(255);not null"     json:"name"`
	CreatedAt time.Time `                                      json:"createdAt"`
}

// VisitRecord is one registered visit. Records are created once and never
// mutated or deleted; the client keeps only a transient copy to render the badge.
type VisitRecord struct {
	ID             uint           `gorm:"primaryKey"                 json:"id"`
	BadgeID        string         `gorm:"type:varchar(64);uniqueIndex" json:"badgeId"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Mobile         string         `gorm:"type:varchar(32);not null"  json:"mobile"`
	Address        string         `gorm:"type:text;not null"         json:"address"`
	IDProof        string         `gorm:"type:varchar(255);not null" json:"idProof"`
	PersonToMeet   string         `gorm:"type:varchar(255);not null" json:"personToMeet"`
	Designation    string         `gorm:"type:varchar(255)"          json:"designation"`
	Department     string         `gorm:"type:varchar(255);index"    json:"department"`
	MeetingPurpose string         `gorm:"type:text;not null"         json:"meetingPurpose"`
	PhotoURL       string         `gorm:"type:text"                  json:"photo"`
	QRData         datatypes.JSON `gorm:"type:json"                  json:"qrData"`
	CreatedAt      time.Time      `gorm:"index"                      json:"createdAt"`
}

// QRPayload is the serialized subset of visit fields embedded in the badge QR code.
type QRPayload struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	Address        string `json:"address"`
	IDProof        string `json:"idProof"`
	PersonToMeet   string `json:"personToMeet"`
	MeetingPurpose string `json:"meetingPurpose"`
}
