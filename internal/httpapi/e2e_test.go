package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"agentsight/internal/domain/event"
	"agentsight/internal/infrastructure/persistence/sqlite/model"
	"agentsight/internal/infrastructure/persistence/sqlite/repository"
	"agentsight/internal/stream"
	"agentsight/internal/usecase/ingest"
)

func newPipelineServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "events.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Event{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewEventRepository(db)
	hub := stream.NewHub(repo)
	svc := ingest.NewService(repo, hub, nil, nil, time.Second)

	srv := httptest.NewServer(NewHandler(svc, hub).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postEvent(t *testing.T, srv *httptest.Server, body string) event.Event {
	t.Helper()

	resp, err := http.Post(srv.URL+"/events", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post event: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d", resp.StatusCode)
	}
	var stored event.Event
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		t.Fatalf("decode stored event: %v", err)
	}
	return stored
}

func readStreamMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read stream message: %v", err)
	}
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode stream message %s: %v", data, err)
	}
	return env.Type, env.Data
}

func TestEndToEndIngestQueryAndStream(t *testing.T) {
	srv := newPipelineServer(t)

	// First commit happens before any subscriber connects.
	first := postEvent(t, srv, `{"source_app":"demo","session_id":"s1","hook_event_type":"PreToolUse","payload":{"tool":"Read"}}`)
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}
	if first.Timestamp == 0 {
		t.Fatal("timestamp not assigned")
	}
	if string(first.Payload) != `{"tool":"Read"}` {
		t.Fatalf("payload = %s", first.Payload)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	defer conn.Close()

	// The subscriber receives the earlier commit in its snapshot.
	msgType, data := readStreamMessage(t, conn)
	if msgType != "initial" {
		t.Fatalf("first message type = %q, want initial", msgType)
	}
	var snapshot []event.Event
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != first.ID {
		t.Fatalf("snapshot = %#v, want [event 1]", snapshot)
	}

	// The next commit arrives exactly once as a live message.
	second := postEvent(t, srv, `{"source_app":"demo","session_id":"s1","hook_event_type":"PostToolUse","payload":{"tool":"Read","ok":true}}`)

	msgType, data = readStreamMessage(t, conn)
	if msgType != "event" {
		t.Fatalf("live message type = %q, want event", msgType)
	}
	var live event.Event
	if err := json.Unmarshal(data, &live); err != nil {
		t.Fatalf("decode live event: %v", err)
	}
	if live.ID != second.ID || live.HookEventType != "PostToolUse" {
		t.Fatalf("live event = %#v, want event %d", live, second.ID)
	}

	// Query surface agrees with what was committed.
	resp, err := http.Get(srv.URL + "/events/recent?limit=1")
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	defer resp.Body.Close()
	var recent []event.Event
	if err := json.NewDecoder(resp.Body).Decode(&recent); err != nil {
		t.Fatalf("decode recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != second.ID {
		t.Fatalf("recent = %#v, want newest event only", recent)
	}

	optsResp, err := http.Get(srv.URL + "/events/filter-options")
	if err != nil {
		t.Fatalf("get filter options: %v", err)
	}
	defer optsResp.Body.Close()
	var opts event.FilterOptions
	if err := json.NewDecoder(optsResp.Body).Decode(&opts); err != nil {
		t.Fatalf("decode filter options: %v", err)
	}
	if len(opts.SourceApps) != 1 || opts.SourceApps[0] != "demo" {
		t.Fatalf("source_apps = %v, want [demo]", opts.SourceApps)
	}
	if len(opts.HookEventTypes) != 2 {
		t.Fatalf("hook_event_types = %v, want two entries", opts.HookEventTypes)
	}
}

func TestRejectedSubmissionNeverBecomesVisible(t *testing.T) {
	srv := newPipelineServer(t)

	resp, err := http.Post(
		srv.URL+"/events",
		"application/json",
		strings.NewReader(`{"source_app":"x","session_id":"s","hook_event_type":"Notification"}`),
	)
	if err != nil {
		t.Fatalf("post event: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("post status = %d, want 400", resp.StatusCode)
	}

	recentResp, err := http.Get(srv.URL + "/events/recent")
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	defer recentResp.Body.Close()
	var recent []event.Event
	if err := json.NewDecoder(recentResp.Body).Decode(&recent); err != nil {
		t.Fatalf("decode recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("recent = %#v, want empty", recent)
	}
}

func TestSummarizeRequestedWithoutSummarizerStillCommits(t *testing.T) {
	srv := newPipelineServer(t)

	stored := postEvent(t, srv, `{"source_app":"demo","session_id":"s1","hook_event_type":"Stop","payload":{"done":true}}`)
	if stored.Summary != "" {
		t.Fatalf("summary = %q, want empty", stored.Summary)
	}

	resp, err := http.Post(
		srv.URL+"/events?summarize=true",
		"application/json",
		strings.NewReader(`{"source_app":"demo","session_id":"s1","hook_event_type":"Stop","payload":{"done":true}}`),
	)
	if err != nil {
		t.Fatalf("post event: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d, want 200", resp.StatusCode)
	}
	var second event.Event
	if err := json.NewDecoder(resp.Body).Decode(&second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Summary != "" {
		t.Fatalf("summary = %q, want empty when no summarizer is configured", second.Summary)
	}
}
