package models

// CourseEnrollment is a unique (user, course) pair. It is created on
// enrollment and never updated; the access it implies over the course's
// published assets is computed at query time, not materialized.
type CourseEnrollment struct {
	Base
	UserID   string  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"userId" validate:"required,uuid"`
	User     *User   `json:"user,omitempty"`
	CourseID string  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"courseId" validate:"required,uuid"`
	Course   *Course `json:"course,omitempty"`
}

// VideoAccess is a direct per-user-per-video grant, independent of
// enrollment and additive to it.
type VideoAccess struct {
	Base
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_video_access_user_video" json:"userId" validate:"required,uuid"`
	User      *User  `json:"user,omitempty"`
	VideoID   string `gorm:"type:uuid;not null;uniqueIndex:idx_video_access_user_video" json:"videoId" validate:"required,uuid"`
	Video     *Video `json:"video,omitempty"`
	GrantedBy string `gorm:"type:uuid" json:"grantedBy,omitempty"`
}

// AudioAccess mirrors VideoAccess for the audio media kind.
type AudioAccess struct {
	Base
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_audio_access_user_audio" json:"userId" validate:"required,uuid"`
	User      *User  `json:"user,omitempty"`
	AudioID   string `gorm:"type:uuid;not null;uniqueIndex:idx_audio_access_user_audio" json:"audioId" validate:"required,uuid"`
	Audio     *Audio `json:"audio,omitempty"`
	GrantedBy string `gorm:"type:uuid" json:"grantedBy,omitempty"`
}

type SalesTeam struct {
	Base
	Name      string            `gorm:"not null" json:"name" validate:"required,min=2"`
	ManagerID string            `gorm:"type:uuid;not null" json:"managerId" validate:"required,uuid"`
	Manager   *User             `json:"manager,omitempty"`
	Members   []SalesTeamMember `gorm:"foreignKey:TeamID;references:ID" json:"members,omitempty"`
}

// SalesTeamMember is a soft-revoked membership row. A salesperson may hold at
// most one ACTIVE row across all teams; the storage layer enforces this with
// a partial unique index on (sales_person_id) WHERE state = 'ACTIVE'.
type SalesTeamMember struct {
	Base
	TeamID        string     `gorm:"type:uuid;not null;index" json:"teamId" validate:"required,uuid"`
	Team          *SalesTeam `json:"team,omitempty"`
	SalesPersonID string     `gorm:"type:uuid;not null;index" json:"salesPersonId" validate:"required,uuid"`
	SalesPerson   *User      `json:"salesPerson,omitempty"`
	State         GrantState `gorm:"not null;default:'ACTIVE'" json:"state" validate:"required,grant_state"`
}

// SalesPersonWorkshopAccess is a unique (salesPerson, workshop) grant row.
// Revoking flips State to REVOKED; re-granting flips the same row back and
// refreshes GrantedBy, so the row count per pair never exceeds one.
type SalesPersonWorkshopAccess struct {
	Base
	SalesPersonID string     `gorm:"type:uuid;not null;uniqueIndex:idx_workshop_access_person_workshop" json:"salesPersonId" validate:"required,uuid"`
	SalesPerson   *User      `json:"salesPerson,omitempty"`
	WorkshopID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_workshop_access_person_workshop" json:"workshopId" validate:"required,uuid"`
	Workshop      *Workshop  `json:"workshop,omitempty"`
	State         GrantState `gorm:"not null;default:'ACTIVE'" json:"state" validate:"required,grant_state"`
	GrantedBy     string     `gorm:"type:uuid" json:"grantedBy,omitempty"`
}
