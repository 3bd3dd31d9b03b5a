package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/events"
)

type User struct {
	Base
	Email     string   `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password  string   `gorm:"not null" json:"-"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `gorm:"index" json:"phone,omitempty"`
	Role      UserRole `gorm:"not null;default:'USER'" json:"role" validate:"required,user_role"`
	IsActive  bool     `gorm:"not null;default:true" json:"isActive"`
}

type Course struct {
	Base
	Title       string  `gorm:"not null" json:"title" validate:"required,min=2"`
	Description string  `json:"description"`
	CoverPath   string  `json:"coverPath,omitempty"`
	Price       int64   `gorm:"default:0" json:"price"`
	Published   bool    `gorm:"not null;default:false" json:"published"`
	Videos      []Video `gorm:"foreignKey:CourseID;references:ID" json:"videos,omitempty"`
	Audios      []Audio `gorm:"foreignKey:CourseID;references:ID" json:"audios,omitempty"`
}

// Video is a streamable asset owned by exactly one course. Path is the
// storage key of the immutable media file.
type Video struct {
	Base
	Title       string  `gorm:"not null" json:"title" validate:"required"`
	Description string  `json:"description"`
	CourseID    string  `gorm:"type:uuid;not null;index" json:"courseId" validate:"required,uuid"`
	Course      *Course `json:"course,omitempty"`
	Path        string  `gorm:"not null" json:"-"`
	MimeType    string  `gorm:"not null;default:'video/mp4'" json:"mimeType"`
	Size        int64   `json:"size"`
	Duration    int64   `json:"duration"`
	Order       int     `gorm:"column:display_order;default:0" json:"order"`
	Published   bool    `gorm:"not null;default:false" json:"published"`

	// Virtual fields populated on read paths
	StreamURL  string     `gorm:"-" json:"streamUrl,omitempty"`
	AccessType AccessType `gorm:"-" json:"accessType,omitempty"`
}

// Audio mirrors Video for the audio media kind.
type Audio struct {
	Base
	Title       string  `gorm:"not null" json:"title" validate:"required"`
	Description string  `json:"description"`
	CourseID    string  `gorm:"type:uuid;not null;index" json:"courseId" validate:"required,uuid"`
	Course      *Course `json:"course,omitempty"`
	Path        string  `gorm:"not null" json:"-"`
	MimeType    string  `gorm:"not null;default:'audio/mpeg'" json:"mimeType"`
	Size        int64   `json:"size"`
	Duration    int64   `json:"duration"`
	Order       int     `gorm:"column:display_order;default:0" json:"order"`
	Published   bool    `gorm:"not null;default:false" json:"published"`

	StreamURL  string     `gorm:"-" json:"streamUrl,omitempty"`
	AccessType AccessType `gorm:"-" json:"accessType,omitempty"`
}

type Article struct {
	Base
	Title     string `gorm:"not null" json:"title" validate:"required"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug" validate:"required"`
	Body      string `gorm:"type:text" json:"body"`
	CoverPath string `json:"coverPath,omitempty"`
	AuthorID  string `gorm:"type:uuid" json:"authorId" validate:"omitempty,uuid"`
	Author    *User  `json:"author,omitempty"`
	Published bool   `gorm:"not null;default:false" json:"published"`
}

type Podcast struct {
	Base
	Title       string `gorm:"not null" json:"title" validate:"required"`
	Description string `json:"description"`
	Path        string `gorm:"not null" json:"-"`
	MimeType    string `gorm:"not null;default:'audio/mpeg'" json:"mimeType"`
	Size        int64  `json:"size"`
	Published   bool   `gorm:"not null;default:false" json:"published"`
}

type Slider struct {
	Base
	Title     string `json:"title"`
	ImagePath string `gorm:"not null" json:"imagePath" validate:"required"`
	LinkURL   string `json:"linkUrl" validate:"omitempty,url"`
	Order     int    `gorm:"column:display_order;default:0" json:"order"`
	Published bool   `gorm:"not null;default:true" json:"published"`
}

type Workshop struct {
	Base
	Title     string         `gorm:"not null" json:"title" validate:"required"`
	CreatorID string         `gorm:"type:uuid;not null" json:"creatorId" validate:"required,uuid"`
	Creator   *User          `json:"creator,omitempty"`
	Capacity  int            `gorm:"default:0" json:"capacity"`
	StartsAt  time.Time      `json:"startsAt"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// File is an uploaded object tracked in the relational store; the bytes live
// in the configured storage backend under Path.
type File struct {
	Base
	Path      string `gorm:"not null" json:"path" validate:"required"`
	UserID    string `gorm:"type:uuid;default:NULL" json:"userId" validate:"omitempty,uuid"`
	User      *User  `json:"user,omitempty"`
	Name      string `gorm:"not null" json:"name" validate:"required"`
	Size      int64  `gorm:"not null" json:"size" validate:"required,min=1"`
	Type      string `gorm:"not null" json:"type" validate:"required"`
	SignedURL string `gorm:"-" json:"signedUrl,omitempty"` // Virtual field
}

func (f *File) AfterFind(tx *gorm.DB) error {
	registryMu.RLock()
	generator := urlGenerator
	registryMu.RUnlock()

	if generator != nil {
		// Generate URL with 1-hour expiry
		url, err := generator.GetSignedURL(tx.Statement.Context, f.Path, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to generate signed URL: %w", err)
		}
		f.SignedURL = url
	}
	return nil
}

func (c *Course) AfterCreate(tx *gorm.DB) error {
	events.Emit("course.created", c)
	return nil
}
