package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/mirrorwell/mirrorwell-backend/internal/db"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	domainjourney "github.com/mirrorwell/mirrorwell-backend/internal/domain/journey"
	"github.com/mirrorwell/mirrorwell-backend/internal/patterns"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/openai"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func authedCtx(userID uuid.UUID) dbctx.Context {
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
	return dbctx.Context{Ctx: ctx}
}

// ---- fake user repo ----

type fakeUserRepo struct {
	rows map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{rows: map[uuid.UUID]*types.User{}} }

func (f *fakeUserRepo) Create(_ dbctx.Context, rows []*types.User) ([]*types.User, error) {
	for _, u := range rows {
		f.rows[u.ID] = u
	}
	return rows, nil
}

func (f *fakeUserRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, id := range ids {
		if u, ok := f.rows[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(_ dbctx.Context, emails []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.rows {
		for _, e := range emails {
			if u.Email == e {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) EmailExists(_ dbctx.Context, email string) (bool, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	u, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	for k, v := range updates {
		switch k {
		case "subscription_tier":
			u.SubscriptionTier = v.(string)
		case "language_preference":
			u.LanguagePreference = v.(string)
		}
	}
	return nil
}

func (f *fakeUserRepo) IncrementMonthlyMessageCount(_ dbctx.Context, id uuid.UUID) error {
	u, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.MonthlyMessageCount++
	return nil
}

func (f *fakeUserRepo) ResetMonthlyCount(_ dbctx.Context, id uuid.UUID, resetAt time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.MonthlyMessageCount = 0
	u.LastResetDate = resetAt
	return nil
}

// ---- fake journey repo ----

type fakeJourneyRepo struct {
	rows map[uuid.UUID]*types.Journey
}

func newFakeJourneyRepo() *fakeJourneyRepo {
	return &fakeJourneyRepo{rows: map[uuid.UUID]*types.Journey{}}
}

func (f *fakeJourneyRepo) Create(_ dbctx.Context, rows []*types.Journey) ([]*types.Journey, error) {
	for _, j := range rows {
		if _, exists := f.rows[j.UserID]; exists {
			return nil, fmt.Errorf("duplicate journey")
		}
		f.rows[j.UserID] = j
	}
	return rows, nil
}

func (f *fakeJourneyRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.Journey, error) {
	j, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJourneyRepo) UpdateFieldsByUserID(_ dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	j, ok := f.rows[userID]
	if !ok {
		return fmt.Errorf("journey not found")
	}
	for k, v := range updates {
		switch k {
		case "current_phase":
			j.CurrentPhase = v.(string)
		case "foundation_complete":
			j.FoundationComplete = v.(bool)
		case "regulation_complete":
			j.RegulationComplete = v.(bool)
		case "expansion_complete":
			j.ExpansionComplete = v.(bool)
		case "integration_complete":
			j.IntegrationComplete = v.(bool)
		case "foundation_started_at", "regulation_started_at", "expansion_started_at", "integration_started_at":
			ts := v.(time.Time)
			switch k {
			case "foundation_started_at":
				j.FoundationStartedAt = &ts
			case "regulation_started_at":
				j.RegulationStartedAt = &ts
			case "expansion_started_at":
				j.ExpansionStartedAt = &ts
			case "integration_started_at":
				j.IntegrationStartedAt = &ts
			}
		case "milestones_unlocked":
			j.MilestonesUnlocked = datatypes.JSON(v.([]byte))
		}
	}
	return nil
}

func (f *fakeJourneyRepo) IncrementConversationCounters(_ dbctx.Context, userID uuid.UUID, mirrorSlug string) error {
	j, ok := f.rows[userID]
	if !ok {
		return fmt.Errorf("journey not found")
	}
	if _, valid := domainjourney.ConversationCountColumn(mirrorSlug); !valid {
		return fmt.Errorf("unknown mirror %q", mirrorSlug)
	}
	switch mirrorSlug {
	case "soma":
		j.SomaConversations++
	case "pulse":
		j.PulseConversations++
	case "horizon":
		j.HorizonConversations++
	case "atlas":
		j.AtlasConversations++
	}
	j.TotalConversations++
	return nil
}

// ---- fake session repo ----

type sessionKey struct {
	mirror string
	n      int
}

type fakeSessionRepo struct {
	rows map[uuid.UUID]map[sessionKey]*types.UserSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: map[uuid.UUID]map[sessionKey]*types.UserSession{}}
}

func (f *fakeSessionRepo) Create(_ dbctx.Context, rows []*types.UserSession) ([]*types.UserSession, error) {
	for _, s := range rows {
		byKey, ok := f.rows[s.UserID]
		if !ok {
			byKey = map[sessionKey]*types.UserSession{}
			f.rows[s.UserID] = byKey
		}
		k := sessionKey{s.Mirror, s.SessionNumber}
		if _, exists := byKey[k]; exists {
			return nil, fmt.Errorf("duplicate session slot")
		}
		byKey[k] = s
	}
	return rows, nil
}

func (f *fakeSessionRepo) Get(_ dbctx.Context, userID uuid.UUID, mirror string, n int) (*types.UserSession, error) {
	s, ok := f.rows[userID][sessionKey{mirror, n}]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) ListByUserMirror(_ dbctx.Context, userID uuid.UUID, mirror string) ([]*types.UserSession, error) {
	var out []*types.UserSession
	for _, s := range f.rows[userID] {
		if s.Mirror == mirror {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionNumber < out[j].SessionNumber })
	return out, nil
}

func (f *fakeSessionRepo) ListByUser(_ dbctx.Context, userID uuid.UUID) ([]*types.UserSession, error) {
	var out []*types.UserSession
	for _, s := range f.rows[userID] {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mirror != out[j].Mirror {
			return out[i].Mirror < out[j].Mirror
		}
		return out[i].SessionNumber < out[j].SessionNumber
	})
	return out, nil
}

func (f *fakeSessionRepo) CountByUserStatus(_ dbctx.Context, userID uuid.UUID, status string) (int64, error) {
	var count int64
	for _, s := range f.rows[userID] {
		if s.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionRepo) UpdateFields(_ dbctx.Context, userID uuid.UUID, mirror string, n int, updates map[string]interface{}) error {
	s, ok := f.rows[userID][sessionKey{mirror, n}]
	if !ok {
		return fmt.Errorf("session not found")
	}
	applySessionUpdates(s, updates)
	return nil
}

func applySessionUpdates(s *types.UserSession, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "status":
			s.Status = v.(string)
		case "started_at":
			if v == nil {
				s.StartedAt = nil
			} else {
				ts := v.(time.Time)
				s.StartedAt = &ts
			}
		case "completed_at":
			if v == nil {
				s.CompletedAt = nil
			} else {
				ts := v.(time.Time)
				s.CompletedAt = &ts
			}
		case "conversation_id":
			if v == nil {
				s.ConversationID = nil
			} else {
				id := v.(uuid.UUID)
				s.ConversationID = &id
			}
		case "exit_insight":
			s.ExitInsight = v.(string)
		}
	}
}

func (f *fakeSessionRepo) UnlockIfLocked(_ dbctx.Context, userID uuid.UUID, mirror string, n int) error {
	s, ok := f.rows[userID][sessionKey{mirror, n}]
	if !ok {
		return nil
	}
	if s.Status == types.SessionLocked {
		s.Status = types.SessionAvailable
	}
	return nil
}

func (f *fakeSessionRepo) ResetAllToLocked(_ dbctx.Context, userID uuid.UUID) error {
	for _, s := range f.rows[userID] {
		s.Status = types.SessionLocked
		s.StartedAt = nil
		s.CompletedAt = nil
		s.ConversationID = nil
		s.ExitInsight = ""
	}
	return nil
}

// ---- fake streak repo ----

type fakeStreakRepo struct {
	rows map[uuid.UUID]*types.Streak
}

func newFakeStreakRepo() *fakeStreakRepo { return &fakeStreakRepo{rows: map[uuid.UUID]*types.Streak{}} }

func (f *fakeStreakRepo) Create(_ dbctx.Context, rows []*types.Streak) ([]*types.Streak, error) {
	for _, s := range rows {
		f.rows[s.UserID] = s
	}
	return rows, nil
}

func (f *fakeStreakRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.Streak, error) {
	s, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStreakRepo) UpdateFieldsByUserID(_ dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	s, ok := f.rows[userID]
	if !ok {
		return fmt.Errorf("streak not found")
	}
	for k, v := range updates {
		switch k {
		case "current_streak":
			s.CurrentStreak = v.(int)
		case "longest_streak":
			s.LongestStreak = v.(int)
		case "last_session_date":
			ts := v.(time.Time)
			s.LastSessionDate = &ts
		}
	}
	return nil
}

// ---- fake milestone repos ----

type fakeMilestoneRepo struct {
	rows []*types.Milestone
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{rows: db.MilestoneCatalog()}
}

func (f *fakeMilestoneRepo) UpsertCatalog(_ dbctx.Context, rows []*types.Milestone) error {
	return nil
}

func (f *fakeMilestoneRepo) GetByTrigger(_ dbctx.Context, triggerType, triggerValue string) (*types.Milestone, error) {
	for _, m := range f.rows {
		if m.TriggerType == triggerType && m.TriggerValue == triggerValue {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMilestoneRepo) GetByKeys(_ dbctx.Context, keys []string) ([]*types.Milestone, error) {
	var out []*types.Milestone
	for _, m := range f.rows {
		for _, k := range keys {
			if m.Key == k {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

type fakeUserMilestoneRepo struct {
	rows map[uuid.UUID]map[string]*types.UserMilestone
}

func newFakeUserMilestoneRepo() *fakeUserMilestoneRepo {
	return &fakeUserMilestoneRepo{rows: map[uuid.UUID]map[string]*types.UserMilestone{}}
}

func (f *fakeUserMilestoneRepo) Unlock(_ dbctx.Context, userID uuid.UUID, key string) (bool, error) {
	byKey, ok := f.rows[userID]
	if !ok {
		byKey = map[string]*types.UserMilestone{}
		f.rows[userID] = byKey
	}
	if _, exists := byKey[key]; exists {
		return false, nil
	}
	byKey[key] = &types.UserMilestone{
		ID:           uuid.New(),
		UserID:       userID,
		MilestoneKey: key,
		UnlockedAt:   time.Now().UTC(),
	}
	return true, nil
}

func (f *fakeUserMilestoneRepo) ListByUser(_ dbctx.Context, userID uuid.UUID) ([]*types.UserMilestone, error) {
	var out []*types.UserMilestone
	for _, um := range f.rows[userID] {
		out = append(out, um)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MilestoneKey < out[j].MilestoneKey })
	return out, nil
}

func (f *fakeUserMilestoneRepo) ListUnseenByUser(_ dbctx.Context, userID uuid.UUID) ([]*types.UserMilestone, error) {
	var out []*types.UserMilestone
	for _, um := range f.rows[userID] {
		if !um.Seen {
			out = append(out, um)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MilestoneKey < out[j].MilestoneKey })
	return out, nil
}

func (f *fakeUserMilestoneRepo) MarkSeen(_ dbctx.Context, userID uuid.UUID, key string) error {
	if um, ok := f.rows[userID][key]; ok {
		um.Seen = true
	}
	return nil
}

// ---- fake conversation + message repos ----

type fakeConversationRepo struct {
	rows map[uuid.UUID]*types.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{rows: map[uuid.UUID]*types.Conversation{}}
}

func (f *fakeConversationRepo) Create(_ dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	for _, c := range rows {
		c.CreatedAt = time.Now().UTC()
		f.rows[c.ID] = c
	}
	return rows, nil
}

func (f *fakeConversationRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Conversation, error) {
	var out []*types.Conversation
	for _, id := range ids {
		if c, ok := f.rows[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) ListByUser(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error) {
	var out []*types.Conversation
	for _, c := range f.rows {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeConversationRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	c, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("conversation not found")
	}
	for k, v := range updates {
		switch k {
		case "message_count":
			if expr, ok := v.(clause.Expr); ok {
				if len(expr.Vars) == 1 && strings.Contains(expr.SQL, "message_count +") {
					c.MessageCount += expr.Vars[0].(int)
				}
			} else {
				c.MessageCount = v.(int)
			}
		case "title":
			c.Title = v.(string)
		case "updated_at":
			c.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

type fakeMessageRepo struct {
	rows []*types.ChatMessage
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (f *fakeMessageRepo) Create(_ dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error) {
	for _, m := range rows {
		m.CreatedAt = time.Now().UTC()
		f.rows = append(f.rows, m)
	}
	return rows, nil
}

func (f *fakeMessageRepo) ListRecent(_ dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	all, _ := f.ListByConversation(dbctx.Context{}, conversationID)
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (f *fakeMessageRepo) ListByConversation(_ dbctx.Context, conversationID uuid.UUID) ([]*types.ChatMessage, error) {
	var out []*types.ChatMessage
	for _, m := range f.rows {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---- fake pattern + insight repos ----

type fakePatternRepo struct {
	rows []*types.UserPattern
}

func newFakePatternRepo() *fakePatternRepo { return &fakePatternRepo{} }

func (f *fakePatternRepo) Create(_ dbctx.Context, rows []*types.UserPattern) ([]*types.UserPattern, error) {
	for _, r := range rows {
		for _, existing := range f.rows {
			if existing.UserID == r.UserID && existing.PatternType == r.PatternType {
				return nil, fmt.Errorf("duplicate pattern row")
			}
		}
		f.rows = append(f.rows, r)
	}
	return rows, nil
}

func (f *fakePatternRepo) GetByUserAndType(_ dbctx.Context, userID uuid.UUID, patternType string) (*types.UserPattern, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.PatternType == patternType {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePatternRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	for _, r := range f.rows {
		if r.ID == id {
			for k, v := range updates {
				switch k {
				case "integration_level":
					r.IntegrationLevel = v.(int)
				case "last_detected_at":
					r.LastDetectedAt = v.(time.Time)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("pattern row not found")
}

func (f *fakePatternRepo) ListByUser(_ dbctx.Context, userID uuid.UUID) ([]*types.UserPattern, error) {
	var out []*types.UserPattern
	for _, r := range f.rows {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePatternRepo) ListTopExcludingMirror(_ dbctx.Context, userID uuid.UUID, mirror string, limit int) ([]*types.UserPattern, error) {
	var out []*types.UserPattern
	for _, r := range f.rows {
		if r.UserID == userID && r.Mirror != mirror {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IntegrationLevel > out[j].IntegrationLevel })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeInsightRepo struct {
	rows []*types.UserInsight
}

func newFakeInsightRepo() *fakeInsightRepo { return &fakeInsightRepo{} }

func (f *fakeInsightRepo) Create(_ dbctx.Context, rows []*types.UserInsight) ([]*types.UserInsight, error) {
	for _, r := range rows {
		r.CreatedAt = time.Now().UTC()
		f.rows = append(f.rows, r)
	}
	return rows, nil
}

func (f *fakeInsightRepo) ListByUser(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserInsight, error) {
	var out []*types.UserInsight
	for _, r := range f.rows {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInsightRepo) ListRecentExcludingMirror(_ dbctx.Context, userID uuid.UUID, mirror string, limit int) ([]*types.UserInsight, error) {
	var out []*types.UserInsight
	for _, r := range f.rows {
		if r.UserID == userID && r.Mirror != mirror {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- fake completion client ----

type fakeAIClient struct {
	response string
	err      error
	// partial is streamed before err fires, to exercise recovery persistence.
	partial string

	calls       int
	lastSystem  string
	lastHistory []openai.Message
}

func (f *fakeAIClient) StreamCompletion(_ context.Context, system string, history []openai.Message, onDelta func(string)) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastHistory = history
	if f.err != nil {
		if f.partial != "" && onDelta != nil {
			onDelta(f.partial)
		}
		return f.partial, f.err
	}
	if onDelta != nil {
		for _, chunk := range splitChunks(f.response, 8) {
			onDelta(chunk)
		}
	}
	return f.response, nil
}

// ---- wiring ----

type testEnv struct {
	users          *fakeUserRepo
	journeys       *fakeJourneyRepo
	sessions       *fakeSessionRepo
	streaks        *fakeStreakRepo
	milestones     *fakeMilestoneRepo
	userMilestones *fakeUserMilestoneRepo
	conversations  *fakeConversationRepo
	messages       *fakeMessageRepo
	patternRows    *fakePatternRepo
	insights       *fakeInsightRepo
	ai             *fakeAIClient

	streakSvc    StreakService
	milestoneSvc MilestoneService
	journeySvc   JourneyService
	sessionSvc   SessionService
	patternSvc   PatternService
	contextSvc   ContextService
	chatSvc      ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testLogger(t)

	env := &testEnv{
		users:          newFakeUserRepo(),
		journeys:       newFakeJourneyRepo(),
		sessions:       newFakeSessionRepo(),
		streaks:        newFakeStreakRepo(),
		milestones:     newFakeMilestoneRepo(),
		userMilestones: newFakeUserMilestoneRepo(),
		conversations:  newFakeConversationRepo(),
		messages:       newFakeMessageRepo(),
		patternRows:    newFakePatternRepo(),
		insights:       newFakeInsightRepo(),
		ai:             &fakeAIClient{response: "Thank you for sharing that."},
	}

	notify := NoopNotifier{}
	env.streakSvc = NewStreakService(nil, log, env.streaks)
	env.milestoneSvc = NewMilestoneService(nil, log, env.milestones, env.userMilestones, env.journeys, notify)
	env.journeySvc = NewJourneyService(nil, log, env.users, env.journeys, env.sessions, env.streaks, env.userMilestones, env.milestoneSvc, notify)
	env.sessionSvc = NewSessionService(nil, log, env.users, env.sessions, env.insights, env.streakSvc, env.milestoneSvc, notify)
	env.patternSvc = NewPatternService(nil, log, env.patternRows, patterns.NewKeywordDetector())
	env.contextSvc = NewContextService(nil, log, env.patternRows, env.insights)
	env.chatSvc = NewChatService(nil, log, env.users, env.conversations, env.messages, env.journeySvc, env.contextSvc, env.patternSvc, env.ai)
	return env
}

func (env *testEnv) seedUser(t *testing.T, tier string) *types.User {
	t.Helper()
	u := &types.User{
		ID:                 uuid.New(),
		Email:              uuid.New().String() + "@example.com",
		Password:           "x",
		SubscriptionTier:   tier,
		LastResetDate:      time.Now().UTC(),
		LanguagePreference: "en",
	}
	if _, err := env.users.Create(dbctx.Context{}, []*types.User{u}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func splitChunks(s string, size int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
