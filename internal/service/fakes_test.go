package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/events"
	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

var fixedNow = time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeActivities struct {
	mu   sync.Mutex
	next uint64
	rows []model.ActivityRecord
}

func (f *fakeActivities) Create(_ context.Context, rec *model.ActivityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	rec.ID = f.next
	f.rows = append(f.rows, *rec)
	return nil
}

func (f *fakeActivities) FindByID(_ context.Context, id uint64) (*model.ActivityRecord, error) {
	for _, r := range f.rows {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeActivities) Delete(_ context.Context, id uint64) error {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeActivities) match(uid string, flt repository.ActivityFilter) []model.ActivityRecord {
	var out []model.ActivityRecord
	for _, r := range f.rows {
		if r.UserUID != uid {
			continue
		}
		if !flt.From.IsZero() && r.LoggedAt.Before(flt.From) {
			continue
		}
		if !flt.To.IsZero() && !r.LoggedAt.Before(flt.To) {
			continue
		}
		if flt.Category != "" && r.Category != flt.Category {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (f *fakeActivities) ListByUser(_ context.Context, uid string, flt repository.ActivityFilter, limit, offset int) ([]model.ActivityRecord, int64, error) {
	rows := f.match(uid, flt)
	sort.Slice(rows, func(i, j int) bool { return rows[i].LoggedAt.After(rows[j].LoggedAt) })
	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (f *fakeActivities) ListInRange(_ context.Context, uid string, flt repository.ActivityFilter) ([]model.ActivityRecord, error) {
	return f.match(uid, flt), nil
}

func (f *fakeActivities) Count(_ context.Context, uid string, flt repository.ActivityFilter) (int64, error) {
	return int64(len(f.match(uid, flt))), nil
}

func (f *fakeActivities) Totals(_ context.Context, uid string) (repository.ActivityTotals, error) {
	var t repository.ActivityTotals
	for _, r := range f.match(uid, repository.ActivityFilter{}) {
		t.Count++
		t.CarbonKg += r.CarbonKg
	}
	return t, nil
}

type fakeStreaks struct {
	rows map[string]*model.Streak
}

func newFakeStreaks() *fakeStreaks { return &fakeStreaks{rows: map[string]*model.Streak{}} }

func (f *fakeStreaks) Get(_ context.Context, uid string) (*model.Streak, error) {
	s, ok := f.rows[uid]
	if !ok {
		s = &model.Streak{UID: uid}
		f.rows[uid] = s
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStreaks) Save(_ context.Context, s *model.Streak) error {
	cp := *s
	f.rows[s.UID] = &cp
	return nil
}

type fakePoints struct {
	rows map[string]*model.UserPoint
}

func newFakePoints() *fakePoints { return &fakePoints{rows: map[string]*model.UserPoint{}} }

func (f *fakePoints) get(uid string) *model.UserPoint {
	p, ok := f.rows[uid]
	if !ok {
		p = &model.UserPoint{UID: uid}
		f.rows[uid] = p
	}
	return p
}

func (f *fakePoints) Add(_ context.Context, uid string, pts float64) error {
	p := f.get(uid)
	p.TotalPoints += pts
	p.BalancePoints += pts
	return nil
}

func (f *fakePoints) Deduct(_ context.Context, uid string, pts float64) error {
	p := f.get(uid)
	if p.BalancePoints < pts {
		return gorm.ErrRecordNotFound
	}
	p.BalancePoints -= pts
	return nil
}

func (f *fakePoints) Get(_ context.Context, uid string) (*model.UserPoint, error) {
	cp := *f.get(uid)
	return &cp, nil
}

func (f *fakePoints) Top(_ context.Context, limit int) ([]model.UserPoint, error) {
	var out []model.UserPoint
	for _, p := range f.rows {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UID < out[j].UID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePoints) CountAbove(_ context.Context, total float64) (int64, error) {
	var n int64
	for _, p := range f.rows {
		if p.TotalPoints > total {
			n++
		}
	}
	return n, nil
}

func (f *fakePoints) Count(context.Context) (int64, error) { return int64(len(f.rows)), nil }

type fakeProfiles struct {
	rows map[string]*model.Profile
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{rows: map[string]*model.Profile{}} }

func (f *fakeProfiles) Get(_ context.Context, uid string) (*model.Profile, error) {
	p, ok := f.rows[uid]
	if !ok {
		p = &model.Profile{UID: uid}
		f.rows[uid] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Save(_ context.Context, p *model.Profile) error {
	cp := *p
	f.rows[p.UID] = &cp
	return nil
}

func (f *fakeProfiles) FindByUIDs(_ context.Context, uids []string) ([]model.Profile, error) {
	var out []model.Profile
	for _, u := range uids {
		if p, ok := f.rows[u]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeBadges struct {
	badges []model.Badge
	owned  []model.UserBadge
}

func (f *fakeBadges) Create(_ context.Context, b *model.Badge) error {
	b.ID = uint64(len(f.badges) + 1)
	f.badges = append(f.badges, *b)
	return nil
}

func (f *fakeBadges) FindByID(_ context.Context, id uint64) (*model.Badge, error) {
	for _, b := range f.badges {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBadges) Update(_ context.Context, b *model.Badge) error {
	for i := range f.badges {
		if f.badges[i].ID == b.ID {
			f.badges[i] = *b
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeBadges) Delete(_ context.Context, id uint64) error {
	for i := range f.badges {
		if f.badges[i].ID == id {
			f.badges = append(f.badges[:i], f.badges[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeBadges) List(context.Context, int, int) ([]model.Badge, int64, error) {
	return f.badges, int64(len(f.badges)), nil
}

func (f *fakeBadges) ListActive(context.Context) ([]model.Badge, error) {
	var out []model.Badge
	for _, b := range f.badges {
		if b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadges) Award(_ context.Context, uid string, badgeID uint64, at time.Time) (bool, error) {
	for _, ub := range f.owned {
		if ub.UserUID == uid && ub.BadgeID == badgeID {
			return false, nil
		}
	}
	f.owned = append(f.owned, model.UserBadge{UserUID: uid, BadgeID: badgeID, UnlockedAt: at})
	return true, nil
}

func (f *fakeBadges) ListUserBadges(_ context.Context, uid string) ([]model.UserBadge, error) {
	var out []model.UserBadge
	for _, ub := range f.owned {
		if ub.UserUID == uid {
			out = append(out, ub)
		}
	}
	return out, nil
}

type fakeChallenges struct {
	items        []model.Challenge
	participants []model.ChallengeParticipant
}

func (f *fakeChallenges) Create(_ context.Context, c *model.Challenge) error {
	c.ID = uint64(len(f.items) + 1)
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeChallenges) FindByID(_ context.Context, id uint64) (*model.Challenge, error) {
	for _, c := range f.items {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChallenges) Update(_ context.Context, c *model.Challenge) error {
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeChallenges) Delete(_ context.Context, id uint64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeChallenges) List(context.Context, int, int) ([]model.Challenge, int64, error) {
	return f.items, int64(len(f.items)), nil
}

func (f *fakeChallenges) ListOpen(_ context.Context, at time.Time) ([]model.Challenge, error) {
	var out []model.Challenge
	for _, c := range f.items {
		if c.Open(at) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChallenges) AddParticipant(_ context.Context, p *model.ChallengeParticipant) error {
	f.participants = append(f.participants, *p)
	return nil
}

func (f *fakeChallenges) FindParticipant(_ context.Context, id uint64, uid string) (*model.ChallengeParticipant, error) {
	for _, p := range f.participants {
		if p.ChallengeID == id && p.UserUID == uid {
			p := p
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChallenges) ListJoinedOpen(_ context.Context, uid string, at time.Time) ([]model.Challenge, error) {
	var out []model.Challenge
	for _, p := range f.participants {
		if p.UserUID != uid || p.CompletedAt != nil {
			continue
		}
		for _, c := range f.items {
			if c.ID == p.ChallengeID && c.Open(at) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeChallenges) MarkCompleted(_ context.Context, id uint64, uid string, at time.Time) (bool, error) {
	for i := range f.participants {
		p := &f.participants[i]
		if p.ChallengeID == id && p.UserUID == uid && p.CompletedAt == nil {
			p.CompletedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChallenges) CountParticipants(_ context.Context, id uint64) (int64, error) {
	var n int64
	for _, p := range f.participants {
		if p.ChallengeID == id {
			n++
		}
	}
	return n, nil
}

type recordedNotification struct {
	UID, Type, Title string
	Ref              NotificationRef
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (f *fakeNotifier) Notify(_ context.Context, uid, typ, title, _ string, ref NotificationRef) {
	f.sent = append(f.sent, recordedNotification{UID: uid, Type: typ, Title: title, Ref: ref})
}

func (f *fakeNotifier) List(context.Context, string, bool, int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifier) MarkRead(context.Context, string, uint64) error { return nil }
func (f *fakeNotifier) MarkAllRead(context.Context, string) error      { return nil }

func (f *fakeNotifier) types() []string {
	out := make([]string, 0, len(f.sent))
	for _, n := range f.sent {
		out = append(out, n.Type)
	}
	return out
}

type capturePublisher struct {
	events []events.ActivityLogged
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, ev events.ActivityLogged) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) Close() error { return nil }
