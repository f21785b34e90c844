package insk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/inskhq/insk-go/pkg/gateway"
	"github.com/inskhq/insk-go/pkg/notify"
	"github.com/inskhq/insk-go/pkg/pipeline"
	"github.com/inskhq/insk-go/pkg/session"
)

// fixture is a minimal in-process backend: a login endpoint, a scripted
// article listing and a pipeline trigger that flips the listing after a few
// polls.
type fixture struct {
	mu           sync.Mutex
	token        string
	listings     [][]Article
	listReads    int
	triggerCalls int
	authSeen     []string
}

func (f *fixture) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprint(w, `{"message":"bad credentials"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": f.token})
	})
	mux.HandleFunc("GET /articles", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authSeen = append(f.authSeen, r.Header.Get("Authorization"))
		i := f.listReads
		f.listReads++
		if i >= len(f.listings) {
			i = len(f.listings) - 1
		}
		content := f.listings[i]
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(Page[Article]{
			Content:       content,
			TotalPages:    1,
			TotalElements: int64(len(content)),
		})
	})
	mux.HandleFunc("POST /articles/run-pipeline", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.triggerCalls++
		f.mu.Unlock()
		_, _ = fmt.Fprint(w, "News pipeline started")
	})
	return mux
}

func article(id int64, published time.Time) Article {
	return Article{
		ArticleID:   id,
		Title:       fmt.Sprintf("article %d", id),
		PublishedAt: Time{published},
	}
}

func newFixtureClient(t *testing.T, f *fixture) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	gw, err := gateway.New(srv.URL, store)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	return New(gw, store), store
}

func TestLoginStoresTokenAndSignals(t *testing.T) {
	f := &fixture{token: "jwt-abc"}
	c, store := newFixtureClient(t, f)

	signals := 0
	cancel := store.Subscribe(func(ch session.Change) {
		signals++
		if !ch.Authenticated {
			t.Errorf("login change reported unauthenticated")
		}
	})
	defer cancel()

	if err := c.Auth.Login(context.Background(), "user@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if signals != 1 {
		t.Fatalf("login fired %d signals, want 1 before return", signals)
	}
	tok, ok := store.Get()
	if !ok || tok != "jwt-abc" {
		t.Fatalf("stored token = %q ok=%v", tok, ok)
	}
	if !c.Auth.Authenticated() {
		t.Fatalf("Authenticated must report true after login")
	}
}

func TestLoginRejectionLeavesNoSession(t *testing.T) {
	f := &fixture{token: "jwt-abc"}
	c, store := newFixtureClient(t, f)

	err := c.Auth.Login(context.Background(), "user@example.com", "wrong")
	if !gateway.IsKind(err, gateway.KindUnauthorized) {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
	if store.Authenticated() {
		t.Fatalf("a rejected login must leave no session")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := &fixture{token: "jwt-abc"}
	c, store := newFixtureClient(t, f)
	if err := c.Auth.Login(context.Background(), "user@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := c.Auth.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Authenticated() {
		t.Fatalf("logout must clear the store")
	}
}

func TestListDecodesZonelessTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"content":[{"articleId":7,"title":"t","publishedAt":"2025-08-30T09:15:00"}],"totalPages":1,"totalElements":1,"number":0}`)
	}))
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	gw, err := gateway.New(srv.URL, store)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	c := New(gw, store)

	page, err := c.Articles.List(context.Background(), ListParams{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Content) != 1 {
		t.Fatalf("content = %+v", page.Content)
	}
	got := page.Content[0].PublishedAt.Time
	want := time.Date(2025, 8, 30, 9, 15, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("publishedAt = %v, want %v", got, want)
	}
}

func TestRunPipelineReturnsPlainAck(t *testing.T) {
	f := &fixture{token: "jwt-abc", listings: [][]Article{nil}}
	c, _ := newFixtureClient(t, f)

	ack, err := c.Articles.RunPipeline(context.Background())
	if err != nil {
		t.Fatalf("run pipeline: %v", err)
	}
	if ack != "News pipeline started" {
		t.Fatalf("ack = %q", ack)
	}
	if f.triggerCalls != 1 {
		t.Fatalf("trigger called %d times", f.triggerCalls)
	}
}

func TestNewsFeedAdaptsListing(t *testing.T) {
	old := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	f := &fixture{listings: [][]Article{{article(9, old), article(8, old)}}}
	c, _ := newFixtureClient(t, f)

	items, err := c.NewsFeed().Newest(context.Background())
	if err != nil {
		t.Fatalf("newest: %v", err)
	}
	if len(items) != 2 || items[0].ID != 9 || items[1].ID != 8 {
		t.Fatalf("items = %+v, want ids [9 8] in listing order", items)
	}
	if !items[0].PublishedAt.Equal(old) {
		t.Fatalf("publishedAt = %v", items[0].PublishedAt)
	}
}

// TestPipelineRoundTrip walks the whole resilience path: login stores the
// token, the trigger fires authenticated, polling watches the listing until
// the newest marker moves, and the run ends Completed with a notification.
func TestPipelineRoundTrip(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	f := &fixture{
		token: "jwt-e2e",
		listings: [][]Article{
			{article(42, old)},                   // baseline read
			{article(42, old)},                   // poll 1
			{article(42, old)},                   // poll 2
			{article(57, old), article(42, old)}, // poll 3
		},
	}
	c, store := newFixtureClient(t, f)

	if err := c.Auth.Login(context.Background(), "user@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	mem := notify.NewMemory(notify.PermissionGranted, false)
	tracker, err := pipeline.NewTracker(c.NewsFeed(), mem, pipeline.Config{
		Interval:    time.Millisecond,
		MaxAttempts: 30,
		SkewWindow:  time.Minute,
	})
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}

	job, err := tracker.Run(context.Background(), "news", c.PipelineTrigger())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != pipeline.StateCompleted {
		t.Fatalf("state = %v, want completed", job.State)
	}
	if job.Attempt != 3 {
		t.Fatalf("completed at attempt %d, want 3", job.Attempt)
	}
	if job.Baseline == nil || job.Baseline.ID != 42 {
		t.Fatalf("baseline = %+v, want marker 42", job.Baseline)
	}
	if f.triggerCalls != 1 {
		t.Fatalf("trigger fired %d times, want 1", f.triggerCalls)
	}
	if tracker.Running("news") {
		t.Fatalf("tracker must be idle after the terminal state")
	}
	if notes := mem.Notes(); len(notes) != 1 {
		t.Fatalf("notes = %+v, want one completion note", notes)
	}
	if !store.Authenticated() {
		t.Fatalf("the session must survive the run")
	}
	for i, h := range f.authSeen {
		if h != "Bearer jwt-e2e" {
			t.Fatalf("listing read %d carried authorization %q", i, h)
		}
	}
}

func TestKeywordAndFeedbackPaths(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /keywords/approved", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"keywordId":1,"keyword":"semiconductors","approved":true}]`)
	})
	mux.HandleFunc("POST /keywords", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(Keyword{KeywordID: 2, Keyword: body["keyword"]})
	})
	mux.HandleFunc("DELETE /keywords/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /articles/7/feedbacks", func(w http.ResponseWriter, r *http.Request) {
		var req CreateFeedbackRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(Feedback{FeedbackID: 11, ArticleID: 7, Liked: req.Liked})
	})
	mux.HandleFunc("GET /articles/7/feedbacks/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"articleId":7,"likes":3,"dislikes":1,"myFeedback":{"liked":true}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	gw, err := gateway.New(srv.URL, store)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	c := New(gw, store)
	ctx := context.Background()

	kws, err := c.Keywords.Approved(ctx)
	if err != nil || len(kws) != 1 || kws[0].Keyword != "semiconductors" {
		t.Fatalf("approved = %+v err=%v", kws, err)
	}
	created, err := c.Keywords.Create(ctx, "batteries")
	if err != nil || created.KeywordID != 2 || created.Keyword != "batteries" {
		t.Fatalf("create = %+v err=%v", created, err)
	}
	if err := c.Keywords.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}

	liked := true
	fb, err := c.Feedback.Create(ctx, 7, CreateFeedbackRequest{Liked: &liked, FeedbackText: "useful"})
	if err != nil || fb.FeedbackID != 11 || fb.Liked == nil || !*fb.Liked {
		t.Fatalf("feedback = %+v err=%v", fb, err)
	}
	sum, err := c.Feedback.Summary(ctx, 7)
	if err != nil || sum.Likes != 3 || sum.MyFeedback == nil || sum.MyFeedback.Liked == nil {
		t.Fatalf("summary = %+v err=%v", sum, err)
	}
}

func TestTimeParsing(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{`"2025-08-30T09:15:00"`, time.Date(2025, 8, 30, 9, 15, 0, 0, time.Local)},
		{`"2025-08-30T09:15:00.5"`, time.Date(2025, 8, 30, 9, 15, 0, 500000000, time.Local)},
		{`"2025-08-30T09:15:00Z"`, time.Date(2025, 8, 30, 9, 15, 0, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}
	for _, tc := range cases {
		var got Time
		if err := got.UnmarshalJSON([]byte(tc.in)); err != nil {
			t.Fatalf("parse %s: %v", tc.in, err)
		}
		if !got.Time.Equal(tc.want) {
			t.Fatalf("parse %s = %v, want %v", tc.in, got.Time, tc.want)
		}
	}
	var bad Time
	if err := bad.UnmarshalJSON([]byte(`"30/08/2025"`)); err == nil {
		t.Fatalf("unrecognized layout must error")
	}
}

// Zone-less timestamps are server wall-clock time. Parsing them as UTC in an
// eastern-offset zone would shift recent articles hours into the future and
// make every freshness check against the local clock pass immediately.
func TestZonelessTimestampsStayInLocalTime(t *testing.T) {
	restore := time.Local
	time.Local = time.FixedZone("KST", 9*60*60)
	defer func() { time.Local = restore }()

	published := time.Now().In(time.Local).Add(-2 * time.Hour)
	raw := `"` + published.Format("2006-01-02T15:04:05") + `"`
	var got Time
	if err := got.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}

	if drift := got.Sub(published).Abs(); drift > time.Second {
		t.Fatalf("parsed instant drifted %v from the wall-clock original", drift)
	}
	cutoff := time.Now().Add(-time.Minute)
	if got.After(cutoff) {
		t.Fatalf("2-hour-old article classified as fresh: published %v, cutoff %v", got.Time, cutoff)
	}
}
