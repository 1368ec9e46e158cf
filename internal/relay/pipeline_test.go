package relay

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eliseohh/confessbot/internal/comments"
	"github.com/eliseohh/confessbot/internal/deeplink"
	"github.com/eliseohh/confessbot/internal/profanity"
	"github.com/eliseohh/confessbot/internal/ratelimit"
	"github.com/eliseohh/confessbot/internal/sequence"
	"github.com/eliseohh/confessbot/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu         sync.Mutex
	posts      []Post
	admin      []string
	publishErr error
	adminErr   error
}

func (f *fakeTransport) Publish(_ context.Context, p Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.posts = append(f.posts, p)
	return nil
}

func (f *fakeTransport) NotifyAdmin(_ context.Context, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.adminErr != nil {
		return f.adminErr
	}
	f.admin = append(f.admin, body)
	return nil
}

type harness struct {
	p         *Pipeline
	tr        *fakeTransport
	counter   *sequence.Counter
	store     *comments.Store
	sessions  *session.State
	now       time.Time
	storePath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		tr:        &fakeTransport{},
		counter:   sequence.New(),
		sessions:  session.New(0),
		now:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		storePath: filepath.Join(t.TempDir(), "comments.json"),
	}
	h.store = comments.Open(comments.NewJSONFile(h.storePath))
	clock := func() time.Time { return h.now }
	h.p = New(Options{
		Limiter:   ratelimit.New(15 * time.Second).WithClock(clock),
		Counter:   h.counter,
		Filter:    profanity.New([]string{"badword1", "badword2"}),
		Store:     h.store,
		Sessions:  h.sessions,
		Links:     deeplink.NewBuilder("https://t.me", "confessbot"),
		Transport: h.tr,
	})
	return h
}

func text(sender int64, s string) Event {
	return Event{Sender: sender, Kind: KindText, Text: s}
}

func TestScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const alice, reader = 1, 2

	r := h.p.Handle(ctx, text(alice, "hello"))
	assert.Equal(t, "✅ Posted anonymously!", r.Text)
	require.Len(t, h.tr.posts, 1)
	post := h.tr.posts[0]
	assert.Equal(t, uint64(1), post.Ordinal)
	assert.Equal(t, "🔒 <b>Anonymous Confession #1</b>\n<b>Type:</b> Text\n\nhello", post.Body)
	assert.Equal(t, "https://t.me/confessbot?start=comment_1", post.CommentURL)
	assert.Equal(t, "https://t.me/confessbot?start=view_1", post.ViewURL)

	h.now = h.now.Add(5 * time.Second)
	r = h.p.Handle(ctx, text(alice, "world"))
	assert.Equal(t, "⏳ Wait 10 seconds.", r.Text)
	assert.Len(t, h.tr.posts, 1)

	r = h.p.Start(reader, "view_1")
	assert.Equal(t, "📭 No comments yet.", r.Text)

	r = h.p.Start(reader, "comment_1")
	assert.Equal(t, "✍️ Write your comment for confession #1:", r.Text)

	r = h.p.Handle(ctx, text(reader, "nice!"))
	assert.Equal(t, "✅ Comment posted anonymously!", r.Text)
	assert.Equal(t, []string{"nice!"}, h.store.Read(1))
	assert.Equal(t, session.None, h.sessions.Get(reader).Mode)
	assert.Len(t, h.tr.posts, 1, "comment is not a submission")

	r = h.p.Start(reader, "view_1")
	assert.True(t, r.HTML)
	assert.Equal(t, "💬 <b>Comments for Confession #1</b>\n\n• nice!", r.Text)
}

func TestProfaneTextNeverDispatched(t *testing.T) {
	h := newHarness(t)

	r := h.p.Handle(context.Background(), text(1, "this is BADWORD1 stuff"))
	assert.Equal(t, "❌ Contains banned words", r.Text)
	assert.Empty(t, h.tr.posts)
	assert.Zero(t, h.counter.Last(), "no ordinal consumed")

	r = h.p.Handle(context.Background(), text(1, "clean"))
	assert.Equal(t, "✅ Posted anonymously!", r.Text, "rejection does not start the cooldown")
	assert.Equal(t, uint64(1), h.tr.posts[0].Ordinal)
}

func TestMediaSkipsProfanityByDefault(t *testing.T) {
	h := newHarness(t)
	r := h.p.Handle(context.Background(), Event{Sender: 1, Kind: KindImage, Text: "badword1 caption", MediaID: "photo-1"})
	assert.Equal(t, "📷 Posted anonymously!", r.Text)
	require.Len(t, h.tr.posts, 1)
	assert.Equal(t, "photo-1", h.tr.posts[0].MediaID)
	assert.Contains(t, h.tr.posts[0].Body, "<b>Type:</b> Image")
}

func TestFilterCaptionsOption(t *testing.T) {
	h := newHarness(t)
	h.p.filterCaptions = true

	r := h.p.Handle(context.Background(), Event{Sender: 1, Kind: KindImage, Text: "badword1", MediaID: "p"})
	assert.Equal(t, "❌ Contains banned words", r.Text)
	assert.Zero(t, h.counter.Last())
}

func TestMediaPlaceholders(t *testing.T) {
	cases := []struct {
		kind  Kind
		label string
		body  string
		ack   string
	}{
		{KindImage, "Image", "(photo)", "📷 Posted anonymously!"},
		{KindVoice, "Voice", "(voice message)", "🎤 Posted anonymously!"},
		{KindSticker, "Sticker", "(sticker)", "👍 Sticker posted anonymously!"},
	}
	for i, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			h := newHarness(t)
			r := h.p.Handle(context.Background(), Event{Sender: int64(i), Kind: tc.kind, MediaID: "file"})
			assert.Equal(t, tc.ack, r.Text)
			require.Len(t, h.tr.posts, 1)
			assert.Equal(t, FormatSubmission(1, tc.kind, tc.body), h.tr.posts[0].Body)
		})
	}
}

func TestSubmissionIsEscaped(t *testing.T) {
	h := newHarness(t)
	h.p.Handle(context.Background(), text(1, `<script>"x" & 'y'</script>`))
	require.Len(t, h.tr.posts, 1)
	assert.True(t, strings.HasSuffix(h.tr.posts[0].Body, "&lt;script&gt;&#34;x&#34; &amp; &#39;y&#39;&lt;/script&gt;"))
}

func TestPublishFailureSpendsOrdinal(t *testing.T) {
	h := newHarness(t)
	h.tr.publishErr = errors.New("network down")

	r := h.p.Handle(context.Background(), text(1, "first"))
	assert.Equal(t, msgPostFailed, r.Text)
	assert.Equal(t, uint64(1), h.counter.Last())

	h.tr.publishErr = nil
	r = h.p.Handle(context.Background(), text(1, "retry"))
	assert.Equal(t, "⏳ Wait 15 seconds.", r.Text, "an initiated dispatch starts the cooldown")
	assert.Empty(t, h.tr.posts)
	assert.Equal(t, uint64(1), h.counter.Last())

	h.now = h.now.Add(15 * time.Second)
	r = h.p.Handle(context.Background(), text(1, "retry"))
	assert.Equal(t, "✅ Posted anonymously!", r.Text)
	require.Len(t, h.tr.posts, 1)
	assert.Equal(t, uint64(2), h.tr.posts[0].Ordinal)
}

func TestAdminMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	r := h.p.ContactAdmin(1)
	assert.Equal(t, msgAdminPrompt, r.Text)

	r = h.p.Handle(ctx, text(1, "hi <admin>"))
	assert.Equal(t, msgAdminSent, r.Text)
	require.Len(t, h.tr.admin, 1)
	assert.Equal(t, "📩 <b>New Admin Message</b>\n\nhi &lt;admin&gt;", h.tr.admin[0])
	assert.Empty(t, h.tr.posts)
	assert.Zero(t, h.counter.Last())

	r = h.p.Handle(ctx, text(1, "now a confession"))
	assert.Equal(t, "✅ Posted anonymously!", r.Text, "flag was consumed")
}

func TestAdminOverridesPendingComment(t *testing.T) {
	h := newHarness(t)
	h.p.Start(1, "comment_4")
	h.p.ContactAdmin(1)

	h.p.Handle(context.Background(), text(1, "for the admin"))
	assert.Len(t, h.tr.admin, 1)
	assert.Empty(t, h.store.Read(4))
}

func TestAdminFailureKeepsFlag(t *testing.T) {
	h := newHarness(t)
	h.tr.adminErr = errors.New("blocked")
	h.p.ContactAdmin(1)

	r := h.p.Handle(context.Background(), text(1, "hello admin"))
	assert.Equal(t, msgAdminFailed, r.Text)
	assert.Equal(t, session.AwaitingAdminMessage, h.sessions.Get(1).Mode)
	assert.Empty(t, h.tr.posts)
}

func TestMediaDoesNotConsumeFlag(t *testing.T) {
	h := newHarness(t)
	h.p.Start(1, "comment_2")

	r := h.p.Handle(context.Background(), Event{Sender: 1, Kind: KindSticker, MediaID: "s"})
	assert.Equal(t, "👍 Sticker posted anonymously!", r.Text)
	assert.Equal(t, session.AwaitingComment, h.sessions.Get(1).Mode)
}

func TestMalformedDeepLink(t *testing.T) {
	h := newHarness(t)
	for _, param := range []string{"comment_abc", "view_", "nonsense", ""} {
		r := h.p.Start(1, param)
		assert.True(t, r.Menu, param)
		assert.True(t, r.HTML, param)
		assert.Equal(t, session.None, h.sessions.Get(1).Mode, param)
	}
}

func TestCommentPersisted(t *testing.T) {
	h := newHarness(t)
	h.p.Start(2, "comment_9")
	h.p.Handle(context.Background(), text(2, "<i>raw</i>"))

	reloaded := comments.Open(comments.NewJSONFile(h.storePath))
	assert.Equal(t, []string{"<i>raw</i>"}, reloaded.Read(9), "stored unescaped")

	r := h.p.View(9)
	assert.Contains(t, r.Text, "• &lt;i&gt;raw&lt;/i&gt;")
}

func TestConcurrentSubmittersGetDistinctOrdinals(t *testing.T) {
	h := newHarness(t)
	const senders = 50

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			h.p.Handle(context.Background(), text(id, "msg"))
		}(int64(i + 1))
	}
	wg.Wait()

	require.Len(t, h.tr.posts, senders)
	seen := make(map[uint64]bool)
	for _, p := range h.tr.posts {
		assert.False(t, seen[p.Ordinal])
		seen[p.Ordinal] = true
		assert.Contains(t, p.Body, "#"+comments.Key(p.Ordinal)+"</b>")
		assert.True(t, strings.HasSuffix(p.CommentURL, "comment_"+comments.Key(p.Ordinal)))
	}
	for i := uint64(1); i <= senders; i++ {
		assert.True(t, seen[i], "ordinal %d missing", i)
	}
}

func TestSameSenderConcurrentSubmissionsHonourCooldown(t *testing.T) {
	h := newHarness(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.p.Handle(context.Background(), text(7, "spam"))
		}()
	}
	wg.Wait()

	assert.Len(t, h.tr.posts, 1)
	assert.Zero(t, h.p.submitters.len())
}
