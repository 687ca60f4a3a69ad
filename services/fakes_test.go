package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeTeamRepository is an in-memory TeamRepository. Update holds the lock
// for the whole read-modify-write, like the row lock it stands in for.
type FakeTeamRepository struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]*models.Team

	CreateFunc func(team *models.Team) error
	UpdateFunc func(id int) error
}

func NewFakeTeamRepository() *FakeTeamRepository {
	return &FakeTeamRepository{teams: make(map[int]*models.Team)}
}

func (f *FakeTeamRepository) Create(ctx context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateFunc != nil {
		if err := f.CreateFunc(team); err != nil {
			return err
		}
	}
	for _, t := range f.teams {
		if t.Slot == team.Slot {
			return repositories.ErrTeamSlotConflict
		}
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	f.nextID++
	team.ID = f.nextID
	team.Version = 1
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	if team.Rounds == nil {
		team.Rounds = []models.Round{}
	}
	f.teams[team.ID] = cloneTeam(team)
	return nil
}

func (f *FakeTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func (f *FakeTeamRepository) GetBySlot(ctx context.Context, slot int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.teams {
		if t.Slot == slot {
			return cloneTeam(t), nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *FakeTeamRepository) ListBySlots(ctx context.Context, slots []int) ([]*models.Team, error) {
	return f.filter(func(t *models.Team) bool { return slices.Contains(slots, t.Slot) }), nil
}

func (f *FakeTeamRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error) {
	return f.filter(func(t *models.Team) bool { return slices.Contains(ids, t.ID) }), nil
}

func (f *FakeTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	teams := f.filter(func(*models.Team) bool { return true })
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].TotalPoints != teams[j].TotalPoints {
			return teams[i].TotalPoints > teams[j].TotalPoints
		}
		return teams[i].Slot < teams[j].Slot
	})
	return teams, nil
}

func (f *FakeTeamRepository) Update(ctx context.Context, id int, mutate repositories.TeamMutation) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateFunc != nil {
		if err := f.UpdateFunc(id); err != nil {
			return nil, err
		}
	}
	stored, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	working := cloneTeam(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.Version++
	working.UpdatedAt = time.Now()
	f.teams[id] = cloneTeam(working)
	return working, nil
}

func (f *FakeTeamRepository) Delete(ctx context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return t, nil
}

func (f *FakeTeamRepository) filter(keep func(*models.Team) bool) []*models.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Team, 0)
	for _, t := range f.teams {
		if keep(t) {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// FakeNotificationRepository is an in-memory NotificationRepository with a
// strictly increasing clock for created_at.
type FakeNotificationRepository struct {
	mu            sync.Mutex
	nextID        int
	clock         time.Time
	notifications map[int]*models.EliminationNotification
	logos         func(teamID int) string
}

func NewFakeNotificationRepository(teams *FakeTeamRepository) *FakeNotificationRepository {
	return &FakeNotificationRepository{
		clock:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		notifications: make(map[int]*models.EliminationNotification),
		logos: func(teamID int) string {
			t, err := teams.GetByID(context.Background(), teamID)
			if err != nil {
				return ""
			}
			return t.LogoURL
		},
	}
}

func (f *FakeNotificationRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Millisecond)
	return f.clock
}

func (f *FakeNotificationRepository) find(teamID, roundNumber int) *models.EliminationNotification {
	for _, n := range f.notifications {
		if n.TeamID == teamID && n.RoundNumber == roundNumber {
			return n
		}
	}
	return nil
}

func (f *FakeNotificationRepository) insert(n *models.EliminationNotification) {
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = f.tick()
	n.UpdatedAt = n.CreatedAt
	stored := *n
	f.notifications[n.ID] = &stored
}

func (f *FakeNotificationRepository) apply(existing, n *models.EliminationNotification) {
	existing.TeamName = n.TeamName
	existing.KillCount = n.KillCount
	existing.Position = n.Position
	existing.Status = n.Status
	if n.Status == models.RoundStatusAlive {
		existing.EliminationOrder = 0
		existing.Ranked = false
	}
	existing.UpdatedAt = f.tick()
	*n = *existing
}

func (f *FakeNotificationRepository) UpsertOnStatusChange(ctx context.Context, n *models.EliminationNotification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.find(n.TeamID, n.RoundNumber)
	if existing == nil {
		f.insert(n)
		return true, nil
	}
	if existing.Status == n.Status {
		return false, nil
	}
	f.apply(existing, n)
	return true, nil
}

func (f *FakeNotificationRepository) Upsert(ctx context.Context, n *models.EliminationNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.find(n.TeamID, n.RoundNumber)
	if existing == nil {
		f.insert(n)
		return nil
	}
	f.apply(existing, n)
	return nil
}

func (f *FakeNotificationRepository) GetByTeamAndRound(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.find(teamID, roundNumber)
	if n == nil {
		return nil, repositories.ErrNotificationNotFound
	}
	return f.withLogo(n), nil
}

func (f *FakeNotificationRepository) RankEliminated(ctx context.Context, rank repositories.RankFunc) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alive := 0
	pending := make([]*models.EliminationNotification, 0)
	for _, n := range f.notifications {
		switch {
		case n.Status == models.RoundStatusAlive:
			alive++
		case !n.Ranked:
			pending = append(pending, n)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return len(rank(alive, pending)), nil
}

func (f *FakeNotificationRepository) MarkDisplayed(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.find(teamID, roundNumber)
	if n == nil {
		return nil, repositories.ErrNotificationNotFound
	}
	n.Displayed = true
	copied := *n
	return &copied, nil
}

func (f *FakeNotificationRepository) MarkDisplayedByID(ctx context.Context, id int) (*models.EliminationNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	n.Displayed = true
	copied := *n
	return &copied, nil
}

func (f *FakeNotificationRepository) ListPending(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	return f.list(func(n *models.EliminationNotification) bool {
		return n.Status == models.RoundStatusEliminated && !n.Displayed && (roundNumber == nil || n.RoundNumber == *roundNumber)
	}, false), nil
}

func (f *FakeNotificationRepository) ListAll(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	return f.list(func(n *models.EliminationNotification) bool {
		return roundNumber == nil || n.RoundNumber == *roundNumber
	}, true), nil
}

func (f *FakeNotificationRepository) ResetRound(ctx context.Context, roundNumber int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for _, n := range f.notifications {
		if n.RoundNumber == roundNumber {
			n.Displayed = false
			n.Status = models.RoundStatusAlive
			n.EliminationOrder = 0
			n.Ranked = false
			affected++
		}
	}
	return affected, nil
}

func (f *FakeNotificationRepository) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	affected := int64(len(f.notifications))
	f.notifications = make(map[int]*models.EliminationNotification)
	return affected, nil
}

func (f *FakeNotificationRepository) list(keep func(*models.EliminationNotification) bool, byRound bool) []*models.EliminationNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.EliminationNotification, 0)
	for _, n := range f.notifications {
		if keep(n) {
			out = append(out, f.withLogo(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if byRound && out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *FakeNotificationRepository) withLogo(n *models.EliminationNotification) *models.EliminationNotification {
	copied := *n
	copied.TeamLogo = f.logos(n.TeamID)
	return &copied
}

// FakeUploader records uploads and deletions.
type FakeUploader struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Deleted  []string
	UploadFn func(key string) error
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{Objects: make(map[string][]byte)}
}

func (f *FakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.UploadFn != nil {
		if err := f.UploadFn(key); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *FakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Objects, key)
	f.Deleted = append(f.Deleted, key)
	return nil
}

func (f *FakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *FakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Objects)
}

type sentEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

// FakeNotifier records broadcasts; Err makes every broadcast fail.
type FakeNotifier struct {
	mu     sync.Mutex
	Events []sentEvent
	Err    error
}

func (f *FakeNotifier) Broadcast(event string, payload interface{}) error {
	return f.record("", event, payload)
}

func (f *FakeNotifier) BroadcastToRoom(room string, event string, payload interface{}) error {
	return f.record(room, event, payload)
}

func (f *FakeNotifier) record(room, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, sentEvent{Room: room, Event: event, Payload: payload})
	return f.Err
}

func (f *FakeNotifier) names(room string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.Events {
		if e.Room == room {
			out = append(out, e.Event)
		}
	}
	return out
}

var errBoom = errors.New("boom")

// cloneTeam deep-copies a stored team so callers never share rounds with the fake.
func cloneTeam(t *models.Team) *models.Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Rounds = slices.Clone(t.Rounds)
	for i := range c.Rounds {
		c.Rounds[i].EliminatedPlayers = slices.Clone(c.Rounds[i].EliminatedPlayers)
	}
	if t.LogoKey != nil {
		key := *t.LogoKey
		c.LogoKey = &key
	}
	return &c
}
