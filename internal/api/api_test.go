package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/render"
	"github.com/simon-void/voidchess-engine/internal/storage"
)

const mateInOne = "white ♔g3 ♖d2 ♚g1 ♙c2 ♙d3"

func newTestServer(t *testing.T, store SessionStore) *Server {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.Policy = engine.QuickPolicy
	eng := engine.New(opts, zerolog.Nop())
	return New(eng, Options{
		AllowedOrigins: "*",
		MaxGames:       10,
		Render:         render.DefaultOptions(),
		Store:          store,
	}, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s %s: response is not JSON: %q", method, path, data)
		}
	}
	return resp.StatusCode, out
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := do(t, s, http.MethodPost, "/api/evaluate", configRequest{Config: mateInOne})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["move"] != "d2-d1" || body["ended"] != false {
		t.Errorf("body = %v", body)
	}
	eval, _ := body["evaluation"].(map[string]any)
	if eval["kind"] != "win" {
		t.Errorf("evaluation = %v", eval)
	}

	status, body = do(t, s, http.MethodPost, "/api/evaluate", configRequest{Config: "black ♔b6 ♙a7 ♚a8"})
	if status != http.StatusOK || body["ended"] != true || body["status"] != "stalemate" {
		t.Errorf("stalemate: %d %v", status, body)
	}
	if _, ok := body["move"]; ok {
		t.Errorf("ended game reports a move: %v", body)
	}
}

func TestErrors(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name   string
		path   string
		body   any
		status int
		kind   string
	}{
		{"bad config", "/api/evaluate", configRequest{Config: "white ♔e1"}, http.StatusBadRequest, "IllegalConfig"},
		{"bad move text", "/api/play", moveRequest{Move: "e2e4"}, http.StatusBadRequest, "IllegalFormat"},
		{"illegal move", "/api/play", moveRequest{Move: "e2-e5"}, http.StatusUnprocessableEntity, "IllegalMove"},
		{"past game end", "/api/allowed-moves", configRequest{Config: "b1-c3 b8-c6 c3-b1 c6-b8 b1-c3 b8-c6 c3-b1 c6-b8 b1-c3"},
			http.StatusUnprocessableEntity, "HighLevelErr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, s, http.MethodPost, tc.path, tc.body)
			if status != tc.status || body["kind"] != tc.kind {
				t.Errorf("got %d %v, want %d %s", status, body, tc.status, tc.kind)
			}
		})
	}

	status, body := do(t, s, http.MethodPost, "/api/play", nil)
	if status != http.StatusBadRequest {
		t.Errorf("empty body: %d %v", status, body)
	}
}

func TestStatelessOperations(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := do(t, s, http.MethodPost, "/api/evaluate-move", moveRequest{Config: mateInOne, Move: "d2-d1"})
	if status != http.StatusOK {
		t.Fatalf("evaluate-move: %d %v", status, body)
	}
	if eval, _ := body["evaluation"].(map[string]any); eval["kind"] != "win" {
		t.Errorf("evaluate-move: %v", body)
	}

	status, body = do(t, s, http.MethodPost, "/api/allowed-moves", configRequest{})
	if moves, _ := body["moves"].([]any); status != http.StatusOK || len(moves) != 20 {
		t.Errorf("allowed-moves: %d %v", status, body)
	}

	status, body = do(t, s, http.MethodPost, "/api/play", moveRequest{Move: "e2-e4"})
	if status != http.StatusOK || body["config"] != "e2-e4" || body["status"] != "ongoing" {
		t.Errorf("play: %d %v", status, body)
	}
}

func TestDiagram(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/diagram?size=20", nil)
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("diagram: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	status, _ := do(t, s, http.MethodGet, "/api/diagram?size=2", nil)
	if status != http.StatusBadRequest {
		t.Errorf("tiny diagram: %d", status)
	}
}

func TestGameSession(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := do(t, s, http.MethodPost, "/api/games", configRequest{})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	id, _ := body["id"].(string)
	path := "/api/games/" + id

	status, body = do(t, s, http.MethodPost, path+"/moves", moveRequest{Move: "e2-e4"})
	if status != http.StatusOK || body["config"] != "e2-e4" {
		t.Fatalf("move: %d %v", status, body)
	}

	status, body = do(t, s, http.MethodPost, path+"/ai", nil)
	if status != http.StatusOK {
		t.Fatalf("ai: %d %v", status, body)
	}
	g, _ := body["game"].(map[string]any)
	if moves, _ := g["moves"].([]any); len(moves) != 2 || moves[0] != "e4" {
		t.Errorf("ai game = %v", g)
	}

	status, body = do(t, s, http.MethodGet, path, nil)
	if allowed, _ := body["allowedMoves"].([]any); status != http.StatusOK || len(allowed) == 0 {
		t.Errorf("get: %d %v", status, body)
	}

	status, body = do(t, s, http.MethodGet, "/api/games", nil)
	if ids, _ := body["games"].([]any); status != http.StatusOK || len(ids) != 1 {
		t.Errorf("list: %d %v", status, body)
	}

	if status, _ := do(t, s, http.MethodDelete, path, nil); status != http.StatusNoContent {
		t.Errorf("delete: %d", status)
	}
	if status, _ := do(t, s, http.MethodGet, path, nil); status != http.StatusNotFound {
		t.Errorf("get deleted: %d", status)
	}
	if status, _ := do(t, s, http.MethodGet, "/api/games/nope", nil); status != http.StatusBadRequest {
		t.Errorf("bad id: %d", status)
	}
}

func TestGameOverSession(t *testing.T) {
	s := newTestServer(t, nil)

	_, body := do(t, s, http.MethodPost, "/api/games", configRequest{Config: mateInOne})
	path := "/api/games/" + body["id"].(string)

	status, body := do(t, s, http.MethodPost, path+"/moves", moveRequest{Move: "d2-d1"})
	if status != http.StatusOK || body["status"] != "checkmate" {
		t.Fatalf("mate: %d %v", status, body)
	}
	if status, body := do(t, s, http.MethodPost, path+"/ai", nil); status != http.StatusConflict {
		t.Errorf("ai after mate: %d %v", status, body)
	}
}

func TestSessionsSurviveRestart(t *testing.T) {
	store, err := storage.Open(storage.Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	defer store.Close()

	_, body := do(t, newTestServer(t, store), http.MethodPost, "/api/games", configRequest{Config: "d2-d4"})
	id := body["id"].(string)

	status, body := do(t, newTestServer(t, store), http.MethodGet, "/api/games/"+id, nil)
	if status != http.StatusOK || body["config"] != "d2-d4" {
		t.Errorf("after restart: %d %v", status, body)
	}
}

func TestTooManyGames(t *testing.T) {
	s := newTestServer(t, nil)
	for i := 0; i < 10; i++ {
		if status, _ := do(t, s, http.MethodPost, "/api/games", nil); status != http.StatusCreated {
			t.Fatalf("game %d: %d", i, status)
		}
	}
	if status, _ := do(t, s, http.MethodPost, "/api/games", nil); status != http.StatusServiceUnavailable {
		t.Errorf("eleventh game: %d", status)
	}
}

func TestWebSocketStreamsEvaluation(t *testing.T) {
	s := newTestServer(t, nil)
	_, body := do(t, s, http.MethodPost, "/api/games", configRequest{Config: mateInOne})
	id := body["id"].(string)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.App().Listener(ln)
	defer s.Shutdown()

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/games/"+id, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	read := func() Message {
		t.Helper()
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != MessageTypeGameState {
		t.Fatalf("first message = %s", msg.Type)
	}
	if err := conn.WriteJSON(Message{Type: MessageTypeEvaluate}); err != nil {
		t.Fatal(err)
	}

	evaluated := 0
	for {
		msg := read()
		if msg.Type == MessageTypeMoveEvaluated {
			evaluated++
			continue
		}
		if msg.Type != MessageTypeResult {
			t.Fatalf("unexpected %s: %s", msg.Type, msg.Payload)
		}
		var res evaluateResponse
		if err := json.Unmarshal(msg.Payload, &res); err != nil {
			t.Fatal(err)
		}
		if evaluated != len(res.Ranked) || res.Move == nil || res.Move.String() != "d2-d1" {
			t.Errorf("evaluated %d, result %+v", evaluated, res)
		}
		break
	}

	if err := conn.WriteJSON(Message{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	if msg := read(); msg.Type != MessageTypeError {
		t.Errorf("unknown type answered with %s", msg.Type)
	}
}
