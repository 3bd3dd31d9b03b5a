package models

import (
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/events"

	console "github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

var log = console.New("MODELS")

func (e *CourseEnrollment) AfterCreate(tx *gorm.DB) error {
	log.Info("Enrollment created user=%s course=%s", e.UserID, e.CourseID)
	events.Emit("enrollment.created", e)
	return nil
}

func (m *SalesTeamMember) AfterCreate(tx *gorm.DB) error {
	events.Emit("sales_team_member.created", m)
	return nil
}

func (a *SalesPersonWorkshopAccess) AfterCreate(tx *gorm.DB) error {
	events.Emit("workshop_access.created", a)
	return nil
}
