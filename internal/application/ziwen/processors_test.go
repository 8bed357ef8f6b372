package ziwen

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/command"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/subscription"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

type fakeSource struct {
	posts    []platform.Post
	comments []platform.Comment
	messages []platform.Message
	edits    []platform.Post
}

func (f *fakeSource) FetchPosts(context.Context, int) ([]platform.Post, error) {
	return f.posts, nil
}
func (f *fakeSource) FetchEditedPosts(context.Context, int) ([]platform.Post, error) {
	return f.edits, nil
}
func (f *fakeSource) FetchComments(context.Context, int) ([]platform.Comment, error) {
	return f.comments, nil
}
func (f *fakeSource) FetchMessages(context.Context, int) ([]platform.Message, error) {
	return f.messages, nil
}

type fakeActions struct {
	replies  []string
	labels   map[string]string
	removed  []string
	messages []string
	deleted  []string
	nextID   int
}

func newFakeActions() *fakeActions {
	return &fakeActions{labels: map[string]string{}}
}

func (f *fakeActions) Reply(_ context.Context, parentID, body string) (string, error) {
	f.nextID++
	f.replies = append(f.replies, body)
	return "t1_reply" + parentID, nil
}
func (f *fakeActions) EditComment(context.Context, string, string) error { return nil }
func (f *fakeActions) DeleteComment(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeActions) SetLabel(_ context.Context, postID, label string) error {
	f.labels[postID] = label
	return nil
}
func (f *fakeActions) RemovePost(_ context.Context, postID string) error {
	f.removed = append(f.removed, postID)
	return nil
}
func (f *fakeActions) SendMessage(_ context.Context, username, _, _ string) error {
	f.messages = append(f.messages, username)
	return nil
}

type fakeMarker struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeMarker() *fakeMarker { return &fakeMarker{seen: map[string]bool{}} }

func (f *fakeMarker) IsProcessed(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[id], nil
}
func (f *fakeMarker) MarkProcessed(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[id] = true
	return nil
}

type fakeRequestRepo struct {
	byID map[string]*request.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byID: map[string]*request.Request{}}
}

func (f *fakeRequestRepo) Save(_ context.Context, req *request.Request) error {
	f.byID[req.ID()] = req
	return nil
}
func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*request.Request, error) {
	return f.byID[id], nil
}
func (f *fakeRequestRepo) ListByStatus(_ context.Context, status request.Status, _ int) ([]*request.Request, error) {
	var out []*request.Request
	for _, req := range f.byID {
		if req.Status() == status {
			out = append(out, req)
		}
	}
	return out, nil
}
func (f *fakeRequestRepo) ListClaimedBefore(_ context.Context, cutoff time.Time) ([]*request.Request, error) {
	var out []*request.Request
	for _, req := range f.byID {
		if req.ClaimedBy() != "" && req.ClaimedAt().Before(cutoff) {
			out = append(out, req)
		}
	}
	return out, nil
}
func (f *fakeRequestRepo) ListUntranslatedBefore(_ context.Context, cutoff time.Time) ([]*request.Request, error) {
	var out []*request.Request
	for _, req := range f.byID {
		if req.Status() == request.StatusUntranslated && req.CreatedAt().Before(cutoff) {
			out = append(out, req)
		}
	}
	return out, nil
}

type fakeCompanionRepo struct {
	byID map[string]*request.Companion
}

func newFakeCompanionRepo() *fakeCompanionRepo {
	return &fakeCompanionRepo{byID: map[string]*request.Companion{}}
}

func (f *fakeCompanionRepo) Save(_ context.Context, c *request.Companion) error {
	f.byID[c.RequestID()] = c
	return nil
}
func (f *fakeCompanionRepo) GetByRequestID(_ context.Context, id string) (*request.Companion, error) {
	return f.byID[id], nil
}

type fakeNotifier struct {
	dispatched [][]language.Identity
}

func (f *fakeNotifier) Dispatch(_ context.Context, req *request.Request, langs []language.Identity) (int, error) {
	f.dispatched = append(f.dispatched, langs)
	for _, lang := range langs {
		req.RecordNotified(lang.PreferredCode(), []string{"subscriber"})
	}
	return len(langs), nil
}

type fakeSubsRepo struct {
	byUser map[string][]string
}

func newFakeSubsRepo() *fakeSubsRepo { return &fakeSubsRepo{byUser: map[string][]string{}} }

func (f *fakeSubsRepo) Save(_ context.Context, sub *subscription.Subscription) error {
	f.byUser[sub.Username()] = append(f.byUser[sub.Username()], sub.LanguageCode())
	return nil
}
func (f *fakeSubsRepo) Delete(_ context.Context, code, user string) error {
	kept := f.byUser[user][:0]
	for _, c := range f.byUser[user] {
		if c != code {
			kept = append(kept, c)
		}
	}
	f.byUser[user] = kept
	return nil
}
func (f *fakeSubsRepo) DeleteAllForUser(_ context.Context, user string) (int, error) {
	n := len(f.byUser[user])
	delete(f.byUser, user)
	return n, nil
}
func (f *fakeSubsRepo) ListUsersForLanguage(_ context.Context, code string) ([]string, error) {
	var users []string
	for user, codes := range f.byUser {
		for _, c := range codes {
			if c == code {
				users = append(users, user)
			}
		}
	}
	return users, nil
}
func (f *fakeSubsRepo) ListLanguagesForUser(_ context.Context, user string) ([]string, error) {
	return f.byUser[user], nil
}

var (
	sharedRegistry *language.Registry
	registryOnce   sync.Once
)

func testResolver(t *testing.T) *language.Resolver {
	t.Helper()
	registryOnce.Do(func() {
		reg, err := language.NewRegistry()
		require.NoError(t, err)
		sharedRegistry = reg
	})
	return language.NewResolver(sharedRegistry, nil, 0.75, logger.NewLogger())
}

type postFixture struct {
	source   *fakeSource
	actions  *fakeActions
	marker   *fakeMarker
	requests *fakeRequestRepo
	notifier *fakeNotifier
	proc     *PostProcessor
}

func newPostFixture(t *testing.T, freshness time.Duration) *postFixture {
	t.Helper()
	resolver := testResolver(t)
	parser := title.NewParser(resolver, logger.NewLogger(), 1400, 300)
	f := &postFixture{
		source:   &fakeSource{},
		actions:  newFakeActions(),
		marker:   newFakeMarker(),
		requests: newFakeRequestRepo(),
		notifier: &fakeNotifier{},
	}
	f.proc = NewPostProcessor(
		f.source, f.actions, f.marker, f.requests, newFakeCompanionRepo(),
		parser, f.notifier, 100, freshness, 64, logger.NewLogger())
	return f
}

func TestPostIntakeCreatesRequestAndNotifies(t *testing.T) {
	f := newPostFixture(t, time.Hour)
	f.source.posts = []platform.Post{{
		ID:        "t3_new1",
		Author:    "poster",
		Title:     "[German > English] old family letter",
		CreatedAt: time.Now(),
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	req := f.requests.byID["t3_new1"]
	require.NotNil(t, req)
	assert.Equal(t, request.StatusUntranslated, req.Status())
	assert.Equal(t, "German", f.actions.labels["t3_new1"])
	require.Len(t, f.notifier.dispatched, 1)
	assert.Equal(t, "de", f.notifier.dispatched[0][0].PreferredCode())
	assert.True(t, f.marker.seen["t3_new1"])
}

func TestPostIntakeSkipsStaleNotifications(t *testing.T) {
	f := newPostFixture(t, time.Hour)
	f.source.posts = []platform.Post{{
		ID:        "t3_old1",
		Author:    "poster",
		Title:     "[French > English] recipe card",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	require.NotNil(t, f.requests.byID["t3_old1"])
	assert.Empty(t, f.notifier.dispatched)
}

func TestPostIntakeIgnoresInternalPosts(t *testing.T) {
	f := newPostFixture(t, time.Hour)
	f.source.posts = []platform.Post{{
		ID:    "t3_meta1",
		Title: "[META] Community rules update",
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	assert.Nil(t, f.requests.byID["t3_meta1"])
	assert.Empty(t, f.actions.removed)
	assert.True(t, f.marker.seen["t3_meta1"])
}

func TestPostIntakeRemovesEnglishOnly(t *testing.T) {
	f := newPostFixture(t, time.Hour)
	f.source.posts = []platform.Post{{
		ID:    "t3_en1",
		Title: "[English > English] please explain this poem",
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	assert.Nil(t, f.requests.byID["t3_en1"])
	assert.Contains(t, f.actions.removed, "t3_en1")
	require.NotEmpty(t, f.actions.replies)
}

func TestPostIntakeUnknownGetsCompanion(t *testing.T) {
	f := newPostFixture(t, time.Hour)
	f.source.posts = []platform.Post{{
		ID:        "t3_unk1",
		Author:    "poster",
		Title:     "[Unknown > English] carved inscription",
		CreatedAt: time.Now(),
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	require.NotEmpty(t, f.actions.replies)
	tag, ok := request.ParseAnchor(f.actions.replies[0])
	require.True(t, ok)
	assert.Equal(t, request.AnchorUnknown, tag)
}

func TestEditedPostReparsedAndRedispatched(t *testing.T) {
	f := newPostFixture(t, time.Hour)
	post := platform.Post{
		ID:        "t3_edit1",
		Author:    "poster",
		Title:     "[German > English] old family letter",
		CreatedAt: time.Now(),
	}
	f.source.posts = []platform.Post{post}
	require.NoError(t, f.proc.Process(context.Background()))
	require.Len(t, f.notifier.dispatched, 1)

	// The author corrects the language in the title.
	post.Title = "[French > English] old family letter"
	f.source.posts = nil
	f.source.edits = []platform.Post{post}
	require.NoError(t, f.proc.Process(context.Background()))

	req := f.requests.byID["t3_edit1"]
	require.NotNil(t, req)
	assert.Equal(t, "[French > English] old family letter", req.RawTitle())
	require.Len(t, req.Source(), 1)
	assert.Equal(t, "fr", req.Source()[0].PreferredCode())
	assert.Equal(t, "French", f.actions.labels["t3_edit1"])
	require.Len(t, f.notifier.dispatched, 2)
	assert.Equal(t, "fr", f.notifier.dispatched[1][0].PreferredCode())

	// The same edit coming back around is a no-op.
	require.NoError(t, f.proc.Process(context.Background()))
	assert.Len(t, f.notifier.dispatched, 2)
}

type commandFixture struct {
	source   *fakeSource
	actions  *fakeActions
	requests *fakeRequestRepo
	notifier *fakeNotifier
	proc     *CommandProcessor
}

func newCommandFixture(t *testing.T) *commandFixture {
	t.Helper()
	resolver := testResolver(t)
	parser := command.NewParser(resolver, logger.NewLogger())
	f := &commandFixture{
		source:   &fakeSource{},
		actions:  newFakeActions(),
		requests: newFakeRequestRepo(),
		notifier: &fakeNotifier{},
	}
	f.proc = NewCommandProcessor(
		f.source, f.actions, newFakeMarker(), f.requests, newFakeCompanionRepo(),
		parser, f.notifier, "translator_bot", []string{"mod_user"},
		100, 8*time.Hour, 64, logger.NewLogger())
	return f
}

func seedRequest(t *testing.T, repo *fakeRequestRepo, id, titleText string) *request.Request {
	t.Helper()
	resolver := testResolver(t)
	parser := title.NewParser(resolver, logger.NewLogger(), 1400, 300)
	parsed := parser.Parse(context.Background(), titleText)
	require.False(t, parsed.IsRejected())
	req, err := request.NewFromTitle(id, "poster", time.Now(), titleText, parsed)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), req))
	return req
}

func TestCommandIdentifyRewritesAndNotifies(t *testing.T) {
	f := newCommandFixture(t)
	seedRequest(t, f.requests, "t3_c1", "[Unknown > English] stone tablet")
	f.source.comments = []platform.Comment{{
		ID:     "t1_a",
		PostID: "t3_c1",
		Author: "helper",
		Body:   "This is Chinese. !identify:chinese",
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	req := f.requests.byID["t3_c1"]
	require.Len(t, req.Source(), 1)
	assert.Equal(t, "zh", req.Source()[0].PreferredCode())
	require.Len(t, f.notifier.dispatched, 1)
	assert.Equal(t, "Chinese", f.actions.labels["t3_c1"])
}

func TestCommandIdentifySuppressedByTranslated(t *testing.T) {
	f := newCommandFixture(t)
	seedRequest(t, f.requests, "t3_c2", "[Unknown > English] shop sign")
	f.source.comments = []platform.Comment{{
		ID:     "t1_b",
		PostID: "t3_c2",
		Author: "helper",
		Body:   "It says \"open\". !identify:japanese !translated",
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	req := f.requests.byID["t3_c2"]
	assert.Equal(t, "ja", req.Source()[0].PreferredCode())
	assert.Empty(t, f.notifier.dispatched)
}

func TestCommandTranslatedUpdatesStatusAndLabel(t *testing.T) {
	f := newCommandFixture(t)
	seedRequest(t, f.requests, "t3_c3", "[German > English] birth record")
	f.source.comments = []platform.Comment{{
		ID:     "t1_c",
		PostID: "t3_c3",
		Author: "helper",
		Body:   "Done! !translated",
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	req := f.requests.byID["t3_c3"]
	assert.Equal(t, request.StatusTranslated, req.Status())
	assert.Equal(t, "Translated [DE]", f.actions.labels["t3_c3"])
	assert.Equal(t, []string{"poster"}, f.actions.messages, "requester should get a heads-up")
}

func TestCommandClaimRecordsHolder(t *testing.T) {
	f := newCommandFixture(t)
	seedRequest(t, f.requests, "t3_c4", "[Russian > English] postcard")
	f.source.comments = []platform.Comment{{
		ID:        "t1_d",
		PostID:    "t3_c4",
		Author:    "translator_x",
		Body:      "!claim",
		CreatedAt: time.Now(),
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	req := f.requests.byID["t3_c4"]
	assert.Equal(t, "translator_x", req.ClaimedBy())
	assert.Equal(t, request.StatusInProgress, req.Status())
}

func TestCommandLongTogglesForModeratorsOnly(t *testing.T) {
	f := newCommandFixture(t)
	seedRequest(t, f.requests, "t3_c6", "[Japanese > English] novel chapter")
	f.source.comments = []platform.Comment{{
		ID:        "t1_f",
		PostID:    "t3_c6",
		Author:    "random_user",
		Body:      "!long",
		CreatedAt: time.Now(),
	}}

	require.NoError(t, f.proc.Process(context.Background()))
	assert.False(t, f.requests.byID["t3_c6"].LongContent())

	f.source.comments = []platform.Comment{{
		ID:        "t1_g",
		PostID:    "t3_c6",
		Author:    "mod_user",
		Body:      "!long",
		CreatedAt: time.Now(),
	}}

	require.NoError(t, f.proc.Process(context.Background()))
	assert.True(t, f.requests.byID["t3_c6"].LongContent())
}

func TestCommandIgnoresBotOwnComments(t *testing.T) {
	f := newCommandFixture(t)
	seedRequest(t, f.requests, "t3_c5", "[Korean > English] menu")
	f.source.comments = []platform.Comment{{
		ID:     "t1_e",
		PostID: "t3_c5",
		Author: "Translator_Bot",
		Body:   "!translated",
	}}

	require.NoError(t, f.proc.Process(context.Background()))

	assert.Equal(t, request.StatusUntranslated, f.requests.byID["t3_c5"].Status())
}

func TestClaimExpiryReleasesStaleClaims(t *testing.T) {
	repo := newFakeRequestRepo()
	req := seedRequest(t, repo, "t3_cl1", "[Italian > English] deed")
	require.NoError(t, req.Claim("slow_translator", time.Now().Add(-24*time.Hour), 8*time.Hour, ""))

	actions := newFakeActions()
	proc := NewClaimProcessor(repo, actions, newFakeCompanionRepo(), 8*time.Hour, 64, logger.NewLogger())

	require.NoError(t, proc.Process(context.Background()))

	assert.Empty(t, req.ClaimedBy())
	assert.Equal(t, request.StatusUntranslated, req.Status())
	assert.Equal(t, "Italian", actions.labels["t3_cl1"])
}

func TestMessageSubscribeAndStatus(t *testing.T) {
	resolver := testResolver(t)
	source := &fakeSource{messages: []platform.Message{
		{ID: "t4_m1", Author: "polyglot", Subject: "Subscribe", Body: "german, japanese"},
		{ID: "t4_m2", Author: "polyglot", Subject: "Status", Body: ""},
	}}
	actions := newFakeActions()
	subs := newFakeSubsRepo()
	proc := NewMessageProcessor(source, actions, newFakeMarker(), subs, resolver, 100, logger.NewLogger())

	require.NoError(t, proc.Process(context.Background()))

	assert.ElementsMatch(t, []string{"de", "ja"}, subs.byUser["polyglot"])
	assert.Len(t, actions.messages, 2)
}

func TestMessageUnsubscribeAll(t *testing.T) {
	resolver := testResolver(t)
	subs := newFakeSubsRepo()
	subs.byUser["polyglot"] = []string{"de", "ja"}
	source := &fakeSource{messages: []platform.Message{
		{ID: "t4_m3", Author: "polyglot", Subject: "Unsubscribe", Body: "all"},
	}}
	actions := newFakeActions()
	proc := NewMessageProcessor(source, actions, newFakeMarker(), subs, resolver, 100, logger.NewLogger())

	require.NoError(t, proc.Process(context.Background()))

	assert.Empty(t, subs.byUser["polyglot"])
}

func TestCloseoutFlagsStaleRequestsOnce(t *testing.T) {
	repo := newFakeRequestRepo()
	companions := newFakeCompanionRepo()

	resolver := testResolver(t)
	parser := title.NewParser(resolver, logger.NewLogger(), 1400, 300)
	parsed := parser.Parse(context.Background(), "[Latin > English] gravestone")
	req, err := request.NewFromTitle("t3_st1", "poster", time.Now().Add(-30*24*time.Hour), "[Latin > English] gravestone", parsed)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), req))

	actions := newFakeActions()
	proc := NewCloseoutProcessor(repo, actions, companions, 14*24*time.Hour, 10, logger.NewLogger())

	require.NoError(t, proc.Process(context.Background()))
	first := len(actions.replies)
	require.Equal(t, 1, first)

	// Second pass must not post a duplicate flag.
	require.NoError(t, proc.Process(context.Background()))
	assert.Equal(t, first, len(actions.replies))
}

type recordingStage struct {
	name string
	log  *[]string
	err  error
}

func (s *recordingStage) Name() string { return s.name }
func (s *recordingStage) Process(context.Context) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func TestPipelineRunsStagesInOrderEveryPass(t *testing.T) {
	var calls []string
	stages := []stage{
		&recordingStage{name: "posts", log: &calls},
		&recordingStage{name: "comments", log: &calls, err: context.DeadlineExceeded},
		&recordingStage{name: "claims", log: &calls},
	}
	p := NewPipeline(nil, time.Hour, logger.NewLogger(), stages...)

	require.NoError(t, p.Process(context.Background()))
	require.NoError(t, p.Process(context.Background()))

	// A failing stage does not stop the ones behind it, and claim expiry
	// runs in every pass behind the comment stage that creates claims.
	assert.Equal(t, []string{
		"posts", "comments", "claims",
		"posts", "comments", "claims",
	}, calls)
}

func TestPipelineGatesSweepByCadence(t *testing.T) {
	var calls []string
	sweeper := &recordingStage{name: "closeouts", log: &calls}
	p := NewPipeline(sweeper, time.Hour, logger.NewLogger(),
		&recordingStage{name: "posts", log: &calls})

	now := time.Now()
	p.now = func() time.Time { return now }

	require.NoError(t, p.Process(context.Background()))
	require.NoError(t, p.Process(context.Background()))
	assert.Equal(t, []string{"posts", "closeouts", "posts"}, calls)

	now = now.Add(2 * time.Hour)
	require.NoError(t, p.Process(context.Background()))
	assert.Equal(t, []string{"posts", "closeouts", "posts", "posts", "closeouts"}, calls)
}
