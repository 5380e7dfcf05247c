package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/internal/service"
)

type echoResolver struct {
	logins atomic.Int32
}

func (r *echoResolver) Greet(args struct{ Name string }) string {
	return "meow " + args.Name
}

func (r *echoResolver) Login(args struct{ Password string }) string {
	r.logins.Add(1)
	return "token"
}

const testSchema = `
schema { query: Query mutation: Mutation }
type Query { greet(name: String!): String! }
type Mutation { login(password: String!): String! }
`

func newTestServer(t *testing.T, signal *service.SignalService) *echo.Echo {
	t.Helper()
	e, _ := newTestServerWithResolver(t, signal)
	return e
}

func newTestServerWithResolver(t *testing.T, signal *service.SignalService) (*echo.Echo, *echoResolver) {
	t.Helper()
	resolver := &echoResolver{}
	schema := graphql.MustParseSchema(testSchema, resolver)
	e := echo.New()
	NewHandler(schema, signal).RegisterRoutes(e)
	return e, resolver
}

type gqlResponse struct {
	Data   map[string]any   `json:"data"`
	Errors []map[string]any `json:"errors"`
}

func TestGraphQLPost(t *testing.T) {
	e := newTestServer(t, service.NewSignalService(nil))

	body := `{"query":"query($n: String!) { greet(name: $n) }","variables":{"n":"tama"}}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var res gqlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Data["greet"] != "meow tama" {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestGraphQLGet(t *testing.T) {
	e := newTestServer(t, service.NewSignalService(nil))

	q := url.Values{}
	q.Set("query", "query($n: String!) { greet(name: $n) }")
	q.Set("variables", `{"n":"mike"}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "meow mike") {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
}

func TestGraphQLGetRejectsMutations(t *testing.T) {
	e, resolver := newTestServerWithResolver(t, service.NewSignalService(nil))

	get := func(params url.Values) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil))
		return rec
	}

	rec := get(url.Values{"query": {`mutation { login(password: "hunter2") }`}})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderAllow) != http.MethodPost {
		t.Fatalf("unexpected Allow header %q", rec.Header().Get(echo.HeaderAllow))
	}

	mixed := `query Q { greet(name: "a") } mutation M { login(password: "x") }`
	if rec := get(url.Values{"query": {mixed}, "operationName": {"M"}}); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for selected mutation got %d", rec.Code)
	}
	if rec := get(url.Values{"query": {mixed}}); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for unselected mixed document got %d", rec.Code)
	}
	if rec := get(url.Values{"query": {mixed}, "operationName": {"Q"}}); rec.Code != http.StatusOK {
		t.Fatalf("expected selected query to run got %d", rec.Code)
	}

	if n := resolver.logins.Load(); n != 0 {
		t.Fatalf("mutation ran %d times over GET", n)
	}

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"mutation { login(password: \"pw\") }"}`))
	post := httptest.NewRecorder()
	e.ServeHTTP(post, req)
	if post.Code != http.StatusOK || !strings.Contains(post.Body.String(), "token") {
		t.Fatalf("expected mutation over POST got %d %s", post.Code, post.Body.String())
	}
	if n := resolver.logins.Load(); n != 1 {
		t.Fatalf("expected one login got %d", n)
	}
}

func TestGraphQLRejectsBadRequests(t *testing.T) {
	e := newTestServer(t, service.NewSignalService(nil))

	cases := []struct {
		name string
		req  *http.Request
	}{
		{"malformed body", httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{"))},
		{"empty query", httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":""}`))},
		{"bad variables", httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bgreet%7D&variables=nope", nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
		})
	}
}

func TestGraphQLErrorsStayInBody(t *testing.T) {
	e := newTestServer(t, service.NewSignalService(nil))

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ nope }"}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var res gqlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected validation errors got %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, service.NewSignalService(nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected healthz %d %s", rec.Code, rec.Body.String())
	}
}

func TestRealtimeUnavailableWithoutRedis(t *testing.T) {
	e := newTestServer(t, service.NewSignalService(nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/realtime", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestRealtimeFiltersByOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	signal := service.NewSignalService(rdb)
	srv := httptest.NewServer(newTestServer(t, signal))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/realtime", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer ws.Close()

	if err := ws.WriteJSON(Request{Type: "listen", Owners: []string{"u1"}}); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteJSON(Request{Type: "h"}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := rdb.PubSubNumSub(ctx, domain.CatChannel).Result()
		if err == nil && n[domain.CatChannel] > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscriber never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}
	// the filter is applied asynchronously after the subscription
	time.Sleep(50 * time.Millisecond)

	other := domain.CatEvent{Type: domain.CatCreated, Cat: domain.Cat{ID: "c0", OwnerID: "u2"}}
	mine := domain.CatEvent{Type: domain.CatCreated, Cat: domain.Cat{ID: "c1", OwnerID: "u1"}}
	if err := signal.PublishCatEvent(ctx, other); err != nil {
		t.Fatal(err)
	}
	if err := signal.PublishCatEvent(ctx, mine); err != nil {
		t.Fatal(err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.CatEvent
	if err := ws.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Cat.ID != "c1" || got.Type != domain.CatCreated {
		t.Fatalf("unexpected event %+v", got)
	}
}
