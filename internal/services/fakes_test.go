package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
)

// memStore is an in-memory stand-in for the GORM store so service behavior
// can be tested without a database.
type memStore struct {
	videos    []*models.Video
	audios    []*models.Audio
	users     map[string]*models.User
	teams     map[string]*models.SalesTeam
	workshops map[string]*models.Workshop

	videoGrants map[string]*models.VideoAccess
	audioGrants map[string]*models.AudioAccess
	enrollments map[string]bool

	members  []*models.SalesTeamMember
	wsAccess map[string]*models.SalesPersonWorkshopAccess

	// grantErrs injects per-video failures into UpsertVideoGrant.
	grantErrs map[string]error

	nextID int
}

var (
	_ store.AssetCatalog = (*memStore)(nil)
	_ store.GrantStore   = (*memStore)(nil)
	_ store.SalesStore   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*models.User),
		teams:       make(map[string]*models.SalesTeam),
		workshops:   make(map[string]*models.Workshop),
		videoGrants: make(map[string]*models.VideoAccess),
		audioGrants: make(map[string]*models.AudioAccess),
		enrollments: make(map[string]bool),
		wsAccess:    make(map[string]*models.SalesPersonWorkshopAccess),
		grantErrs:   make(map[string]error),
	}
}

func pairKey(a, b string) string { return a + "|" + b }

func (m *memStore) id() string {
	m.nextID++
	return fmt.Sprintf("id-%04d", m.nextID)
}

func (m *memStore) addVideo(courseID string, published bool) *models.Video {
	v := &models.Video{
		CourseID:  courseID,
		Path:      "videos/clip.mp4",
		MimeType:  "video/mp4",
		Size:      1000,
		Published: published,
	}
	v.ID = m.id()
	m.videos = append(m.videos, v)
	return v
}

func (m *memStore) addAudio(courseID string, published bool) *models.Audio {
	a := &models.Audio{
		CourseID:  courseID,
		Path:      "audios/track.mp3",
		MimeType:  "audio/mpeg",
		Size:      1000,
		Published: published,
	}
	a.ID = m.id()
	m.audios = append(m.audios, a)
	return a
}

func (m *memStore) addUser(role models.UserRole, active bool) *models.User {
	u := &models.User{Role: role, IsActive: active}
	u.ID = m.id()
	u.Email = u.ID + "@example.com"
	m.users[u.ID] = u
	return u
}

func (m *memStore) addTeam(managerID string) *models.SalesTeam {
	t := &models.SalesTeam{Name: "team", ManagerID: managerID}
	t.ID = m.id()
	m.teams[t.ID] = t
	return t
}

func (m *memStore) addWorkshop(creatorID string, active bool) *models.Workshop {
	w := &models.Workshop{Title: "workshop", CreatorID: creatorID, Active: active}
	w.ID = m.id()
	m.workshops[w.ID] = w
	return w
}

func (m *memStore) enroll(userID, courseID string) {
	m.enrollments[pairKey(userID, courseID)] = true
}

// --- AssetCatalog ---

func (m *memStore) VideoByID(ctx context.Context, id string) (*models.Video, error) {
	for _, v := range m.videos {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, errs.NotFound("video not found")
}

func (m *memStore) AudioByID(ctx context.Context, id string) (*models.Audio, error) {
	for _, a := range m.audios {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, errs.NotFound("audio not found")
}

func (m *memStore) PublishedVideosByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	var out []models.Video
	for _, v := range m.videos {
		if v.CourseID == courseID && v.Published {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memStore) PublishedAudiosByCourse(ctx context.Context, courseID string) ([]models.Audio, error) {
	var out []models.Audio
	for _, a := range m.audios {
		if a.CourseID == courseID && a.Published {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) VideosByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	var out []models.Video
	for _, v := range m.videos {
		if v.CourseID == courseID {
			out = append(out, *v)
		}
	}
	return out, nil
}

// --- GrantStore ---

func (m *memStore) HasVideoGrant(ctx context.Context, userID, videoID string) (bool, error) {
	g, ok := m.videoGrants[pairKey(userID, videoID)]
	return ok && !g.IsDeleted, nil
}

func (m *memStore) HasAudioGrant(ctx context.Context, userID, audioID string) (bool, error) {
	g, ok := m.audioGrants[pairKey(userID, audioID)]
	return ok && !g.IsDeleted, nil
}

func (m *memStore) UpsertVideoGrant(ctx context.Context, userID, videoID, grantedBy string) error {
	if err, ok := m.grantErrs[videoID]; ok {
		return err
	}
	key := pairKey(userID, videoID)
	if g, ok := m.videoGrants[key]; ok {
		g.IsDeleted = false
		g.GrantedBy = grantedBy
		return nil
	}
	g := &models.VideoAccess{UserID: userID, VideoID: videoID, GrantedBy: grantedBy}
	g.ID = m.id()
	m.videoGrants[key] = g
	return nil
}

func (m *memStore) UpsertAudioGrant(ctx context.Context, userID, audioID, grantedBy string) error {
	key := pairKey(userID, audioID)
	if g, ok := m.audioGrants[key]; ok {
		g.IsDeleted = false
		g.GrantedBy = grantedBy
		return nil
	}
	g := &models.AudioAccess{UserID: userID, AudioID: audioID, GrantedBy: grantedBy}
	g.ID = m.id()
	m.audioGrants[key] = g
	return nil
}

func (m *memStore) RevokeVideoGrant(ctx context.Context, userID, videoID string) error {
	if g, ok := m.videoGrants[pairKey(userID, videoID)]; ok {
		g.IsDeleted = true
	}
	return nil
}

func (m *memStore) RevokeAudioGrant(ctx context.Context, userID, audioID string) error {
	if g, ok := m.audioGrants[pairKey(userID, audioID)]; ok {
		g.IsDeleted = true
	}
	return nil
}

func (m *memStore) VideoGrantsByUser(ctx context.Context, userID string) ([]models.VideoAccess, error) {
	var out []models.VideoAccess
	for _, g := range m.videoGrants {
		if g.UserID == userID && !g.IsDeleted {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memStore) AudioGrantsByUser(ctx context.Context, userID string) ([]models.AudioAccess, error) {
	var out []models.AudioAccess
	for _, g := range m.audioGrants {
		if g.UserID == userID && !g.IsDeleted {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memStore) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return m.enrollments[pairKey(userID, courseID)], nil
}

func (m *memStore) CreateEnrollment(ctx context.Context, enrollment *models.CourseEnrollment) error {
	key := pairKey(enrollment.UserID, enrollment.CourseID)
	if m.enrollments[key] {
		return errs.Conflict("user is already enrolled in this course")
	}
	enrollment.ID = m.id()
	m.enrollments[key] = true
	return nil
}

func (m *memStore) EnrollmentsByUser(ctx context.Context, userID string) ([]models.CourseEnrollment, error) {
	var out []models.CourseEnrollment
	for key, ok := range m.enrollments {
		if !ok {
			continue
		}
		// keys are "user|course"
		u, c, _ := strings.Cut(key, "|")
		if u == userID {
			out = append(out, models.CourseEnrollment{UserID: u, CourseID: c})
		}
	}
	return out, nil
}

// --- SalesStore ---

func (m *memStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errs.NotFound("user not found")
}

func (m *memStore) TeamByID(ctx context.Context, id string) (*models.SalesTeam, error) {
	if t, ok := m.teams[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, errs.NotFound("sales team not found")
}

func (m *memStore) WorkshopByID(ctx context.Context, id string) (*models.Workshop, error) {
	if w, ok := m.workshops[id]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, errs.NotFound("workshop not found")
}

func (m *memStore) CreateMembershipExclusive(ctx context.Context, member *models.SalesTeamMember) error {
	for _, existing := range m.members {
		if existing.SalesPersonID == member.SalesPersonID && existing.State == models.GrantStateActive {
			return errs.Conflict("salesperson already has an active team membership")
		}
	}
	member.ID = m.id()
	member.State = models.GrantStateActive
	m.members = append(m.members, member)
	return nil
}

func (m *memStore) ActiveMembership(ctx context.Context, teamID, salesPersonID string) (*models.SalesTeamMember, error) {
	for _, member := range m.members {
		if member.TeamID == teamID && member.SalesPersonID == salesPersonID && member.State == models.GrantStateActive {
			return member, nil
		}
	}
	return nil, errs.NotFound("active membership not found")
}

func (m *memStore) AnyActiveMembership(ctx context.Context, salesPersonID string) (*models.SalesTeamMember, error) {
	for _, member := range m.members {
		if member.SalesPersonID == salesPersonID && member.State == models.GrantStateActive {
			return member, nil
		}
	}
	return nil, errs.NotFound("active membership not found")
}

func (m *memStore) SaveMembership(ctx context.Context, member *models.SalesTeamMember) error {
	for i, existing := range m.members {
		if existing.ID == member.ID {
			m.members[i] = member
			return nil
		}
	}
	m.members = append(m.members, member)
	return nil
}

func (m *memStore) AvailableSalesPersons(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role != models.UserRoleSalesPerson || !u.IsActive {
			continue
		}
		busy := false
		for _, member := range m.members {
			if member.SalesPersonID == u.ID && member.State == models.GrantStateActive {
				busy = true
				break
			}
		}
		if !busy {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memStore) WorkshopAccess(ctx context.Context, salesPersonID, workshopID string) (*models.SalesPersonWorkshopAccess, error) {
	if a, ok := m.wsAccess[pairKey(salesPersonID, workshopID)]; ok {
		return a, nil
	}
	return nil, errs.NotFound("workshop access grant not found")
}

func (m *memStore) CreateWorkshopAccess(ctx context.Context, access *models.SalesPersonWorkshopAccess) error {
	key := pairKey(access.SalesPersonID, access.WorkshopID)
	if _, ok := m.wsAccess[key]; ok {
		return errs.Conflict("workshop access grant already exists")
	}
	access.ID = m.id()
	m.wsAccess[key] = access
	return nil
}

func (m *memStore) SaveWorkshopAccess(ctx context.Context, access *models.SalesPersonWorkshopAccess) error {
	m.wsAccess[pairKey(access.SalesPersonID, access.WorkshopID)] = access
	return nil
}

func (m *memStore) ActiveWorkshopsForSalesPerson(ctx context.Context, salesPersonID string) ([]models.Workshop, error) {
	var out []models.Workshop
	for _, a := range m.wsAccess {
		if a.SalesPersonID != salesPersonID || a.State != models.GrantStateActive {
			continue
		}
		if w, ok := m.workshops[a.WorkshopID]; ok && w.Active {
			out = append(out, *w)
		}
	}
	return out, nil
}
