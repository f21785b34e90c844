package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/inskhq/insk-go/pkg/session"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *session.MemoryStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	c, err := New(srv.URL, store, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, store, srv
}

func TestBearerInjectionWhenAuthenticated(t *testing.T) {
	var header string
	c, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.Get(context.Background(), "/articles", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if header != "" {
		t.Fatalf("unauthenticated call must carry no credential, got %q", header)
	}

	_ = store.Set("tok-123")
	if err := c.Get(context.Background(), "/articles", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if header != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", header)
	}
}

func TestUnauthorizedPurgesStore(t *testing.T) {
	c, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	_ = store.Set("expired-or-never-valid")

	err := c.Get(context.Background(), "/articles", nil, nil)
	if !IsKind(err, KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if store.Authenticated() {
		t.Fatalf("401 must always purge the credential store")
	}
}

func TestForbiddenLogoutPolicy(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	t.Run("default purges", func(t *testing.T) {
		c, store, _ := newTestClient(t, handler)
		_ = store.Set("tok")
		err := c.Get(context.Background(), "/articles", nil, nil)
		if !IsKind(err, KindForbidden) {
			t.Fatalf("expected Forbidden, got %v", err)
		}
		if store.Authenticated() {
			t.Fatalf("default policy should purge on 403")
		}
	})

	t.Run("opt-out keeps the session", func(t *testing.T) {
		c, store, _ := newTestClient(t, handler, WithLogoutOnForbidden(false))
		_ = store.Set("tok")
		err := c.Get(context.Background(), "/articles", nil, nil)
		if !IsKind(err, KindForbidden) {
			t.Fatalf("expected Forbidden, got %v", err)
		}
		if !store.Authenticated() {
			t.Fatalf("opt-out policy must keep the session on 403")
		}
	})
}

func TestTransportFailureClassifiesAsNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store := session.NewMemoryStore()
	c, err := New(srv.URL, store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	srv.Close() // connection refused from here on

	callErr := c.Get(context.Background(), "/articles", nil, nil)
	ge, ok := Classify(callErr)
	if !ok {
		t.Fatalf("expected a classified error, got %v", callErr)
	}
	if ge.Kind != KindNetworkUnavailable {
		t.Fatalf("kind = %v, want NetworkUnavailable", ge.Kind)
	}
	if ge.Status != 0 {
		t.Fatalf("transport failures carry no HTTP status, got %d", ge.Status)
	}
}

func TestTimeoutClassifiesAsNetworkUnavailable(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}), WithTimeout(20*time.Millisecond))

	err := c.Get(context.Background(), "/articles", nil, nil)
	if !IsKind(err, KindNetworkUnavailable) {
		t.Fatalf("timeouts must classify as NetworkUnavailable, got %v", err)
	}
}

func TestStatusBuckets(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindClientError},
		{http.StatusNotFound, KindClientError},
		{http.StatusConflict, KindClientError},
		{http.StatusInternalServerError, KindServerError},
		{http.StatusBadGateway, KindServerError},
	}
	for _, tc := range cases {
		c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		err := c.Get(context.Background(), "/x", nil, nil)
		ge, ok := Classify(err)
		if !ok || ge.Kind != tc.kind {
			t.Fatalf("status %d classified as %v, want %v", tc.status, err, tc.kind)
		}
		if ge.Status != tc.status {
			t.Fatalf("status %d recorded as %d", tc.status, ge.Status)
		}
	}
}

func TestErrorMessageExtractionPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"json string body wins", `"plain failure text"`, "plain failure text"},
		{"raw text body wins", `plain failure text`, "plain failure text"},
		{"message field", `{"message":"from message","error":"from error"}`, "from message"},
		{"error field fallback", `{"error":"from error"}`, "from error"},
		{"generic fallback", `{"detail":"unused"}`, genericMessage},
		{"empty body", ``, genericMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))
			err := c.Get(context.Background(), "/x", nil, nil)
			ge, ok := Classify(err)
			if !ok {
				t.Fatalf("expected classified error, got %v", err)
			}
			if ge.Message != tc.want {
				t.Fatalf("message = %q, want %q", ge.Message, tc.want)
			}
		})
	}
}

func TestSuccessDecodesPayload(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page query = %q", got)
		}
		_, _ = w.Write([]byte(`{"value":42}`))
	}))

	var out struct {
		Value int `json:"value"`
	}
	q := url.Values{}
	q.Set("page", "2")
	if err := c.Get(context.Background(), "/data", q, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("decoded value = %d", out.Value)
	}
}

func TestPlainTextAcknowledgment(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte("pipeline started"))
	}))

	var ack string
	if err := c.Post(context.Background(), "/articles/run-pipeline", nil, &ack); err != nil {
		t.Fatalf("post: %v", err)
	}
	if ack != "pipeline started" {
		t.Fatalf("ack = %q", ack)
	}
}

func TestGetRawStreams(t *testing.T) {
	payload := strings.Repeat("pdf-bytes", 100)
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))

	var sb strings.Builder
	if err := c.GetRaw(context.Background(), "/articles/7/pdf", nil, &sb); err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if sb.String() != payload {
		t.Fatalf("raw payload mismatch, got %d bytes", sb.Len())
	}
}
