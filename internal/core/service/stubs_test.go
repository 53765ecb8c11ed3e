package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories. Each mirrors the filtering the real Mongo
// queries apply so service-level behavior is exercised end to end.
// ---------------------------------------------------------------------------

type stubClientRepo struct {
	byID      map[string]*domain.Client
	createErr error
	updateErr error
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byID: make(map[string]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) List(_ context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, c := range r.byID {
		if f.OwnerID != "" && c.AssignedBDE != f.OwnerID {
			continue
		}
		if f.Stage != 0 && c.Stage != f.Stage {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(f.Search)) {
			continue
		}
		if f.Dropped != nil && c.IsDropped != *f.Dropped {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, id string, patch ports.ClientPatch) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	if patch.CompanyName != nil {
		c.CompanyName = *patch.CompanyName
	}
	if patch.ContactName != nil {
		c.ContactName = *patch.ContactName
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Budget != nil {
		c.Budget = *patch.Budget
	}
	if patch.Stage != nil {
		c.Stage = *patch.Stage
	}
	if patch.AssignedBDE != nil {
		c.AssignedBDE = *patch.AssignedBDE
	}
	if patch.IsDropped != nil {
		c.IsDropped = *patch.IsDropped
	}
	if patch.DropReason != nil {
		c.DropReason = *patch.DropReason
	}
	c.LastInteraction = time.Now().UTC()
	return nil
}

func (r *stubClientRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubClientRepo) PrependNote(_ context.Context, id string, note string) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	c.Notes = append([]string{note}, c.Notes...)
	c.LastInteraction = time.Now().UTC()
	return nil
}

func (r *stubClientRepo) AppendAttachment(_ context.Context, id string, att domain.Attachment) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	c.Attachments = append(c.Attachments, att)
	c.LastInteraction = time.Now().UTC()
	return nil
}

func (r *stubClientRepo) CountActiveOwnedBy(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, c := range r.byID {
		if c.AssignedBDE == userID && !c.IsDropped {
			n++
		}
	}
	return n, nil
}

func (r *stubClientRepo) IDsOwnedBy(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for _, c := range r.byID {
		if c.AssignedBDE == userID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

type stubTaskRepo struct {
	byID map[string]*domain.Task
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	owned := make(map[string]struct{}, len(f.OwnedClientIDs))
	for _, id := range f.OwnedClientIDs {
		owned[id] = struct{}{}
	}

	var out []*domain.Task
	for _, t := range r.byID {
		if f.VisibleTo != "" {
			_, ownsParent := owned[t.ClientID]
			if t.AssignedTo != f.VisibleTo && t.CreatedBy != f.VisibleTo && !ownsParent {
				continue
			}
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubTaskRepo) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) error {
	t, ok := r.byID[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (r *stubTaskRepo) DeleteByClient(_ context.Context, clientID string) (int64, error) {
	var n int64
	for id, t := range r.byID {
		if t.ClientID == clientID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubTaskRepo) DeleteByCreator(_ context.Context, userID string) (int64, error) {
	var n int64
	for id, t := range r.byID {
		if t.CreatedBy == userID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubTaskRepo) CountAssignedTo(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, t := range r.byID {
		if t.AssignedTo == userID {
			n++
		}
	}
	return n, nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubUserRepo) ListBDEs(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role == domain.RoleBDE && u.IsActive {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch ports.UserPatch) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.GoogleCredentials != nil {
		u.GoogleCredentials = *patch.GoogleCredentials
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, u := range r.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubNotifier struct {
	messages []string
}

func (n *stubNotifier) Notify(_ context.Context, message string) {
	n.messages = append(n.messages, message)
}

type stubFileStore struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *stubFileStore) Save(_ context.Context, filename, _ string, size int64, r io.Reader) (*ports.StoredFile, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	s.saved = append(s.saved, filename)
	return &ports.StoredFile{StoredName: filename, Size: size}, nil
}

func (s *stubFileStore) Delete(_ context.Context, storedName string) error {
	s.deleted = append(s.deleted, storedName)
	return nil
}

type stubWorkspace struct {
	chatMessages []string
	events       []ports.CalendarEvent
	folders      []string
	mails        []string
	err          error
}

func (w *stubWorkspace) SendChatMessage(_ context.Context, _, _, message string) error {
	if w.err != nil {
		return w.err
	}
	w.chatMessages = append(w.chatMessages, message)
	return nil
}

func (w *stubWorkspace) CreateCalendarEvent(_ context.Context, _ string, event ports.CalendarEvent) error {
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, event)
	return nil
}

func (w *stubWorkspace) CreateDriveFolder(_ context.Context, _, name string) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.folders = append(w.folders, name)
	return "folder-" + name, nil
}

func (w *stubWorkspace) SendMail(_ context.Context, _, to, subject, _ string) error {
	if w.err != nil {
		return w.err
	}
	w.mails = append(w.mails, to+": "+subject)
	return nil
}

type stubStatsCache struct {
	entries map[string]*ports.DashboardStats
	hits    int
	sets    int
}

func newStubStatsCache() *stubStatsCache {
	return &stubStatsCache{entries: make(map[string]*ports.DashboardStats)}
}

func (c *stubStatsCache) Get(_ context.Context, scope string) (*ports.DashboardStats, bool) {
	stats, ok := c.entries[scope]
	if ok {
		c.hits++
	}
	return stats, ok
}

func (c *stubStatsCache) Set(_ context.Context, scope string, stats *ports.DashboardStats) {
	c.sets++
	c.entries[scope] = stats
}

// ---------------------------------------------------------------------------
// Fixture helpers
// ---------------------------------------------------------------------------

func fixtureBDE(id string) *domain.User {
	return &domain.User{
		ID:       id,
		Name:     "BDE " + id,
		Email:    id + "@example.com",
		Role:     domain.RoleBDE,
		IsActive: true,
	}
}

func fixtureClient(id, owner string) *domain.Client {
	return &domain.Client{
		ID:          id,
		CompanyName: "Company " + id,
		ContactName: "Contact",
		Email:       id + "@corp.example.com",
		Stage:       domain.StageFirstContact,
		AssignedBDE: owner,
		Notes:       []string{},
	}
}

func superAdmin() domain.Principal {
	return domain.Principal{UserID: "root-1", Role: domain.RoleSuperAdmin}
}

func admin() domain.Principal {
	return domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
}

func bde(id string) domain.Principal {
	return domain.Principal{UserID: id, Role: domain.RoleBDE}
}
