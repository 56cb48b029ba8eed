// Package inspector is an HTTP (and WebSocket) surface over interp, for ad
// hoc debugging, never on the parse hot path. §6 specifies only the POST /
// contract; the GET /stream upgrade is an enrichment beyond that base
// contract, grounded in the web-server pattern of the pack's PedroCLI repo.
package inspector

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jayamlp/jayamlp/bnf"
	"github.com/jayamlp/jayamlp/interp"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the inspector's state: the grammar every request parses
// against. It holds no request-scoped state, so one Server is shared
// across every connection.
type Server struct {
	Grammar *bnf.Grammar
}

// parseRequest is the POST / request body (§6): the rule to start from and
// the text to parse.
type parseRequest struct {
	Rule string `json:"rule"`
	Text string `json:"text"`
}

// parseResponse is the POST / response body (§6).
type parseResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handler returns the mux this Server answers HTTP on.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleParse)
	mux.HandleFunc("/stream", s.handleStream)
	return mux
}

// ListenAndServe starts the inspector on addr (§6 names port 8001 as the
// default).
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("inspector listening on %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, parseResponse{Success: false, Error: err.Error()})
		return
	}

	v, err := interp.Parse(req.Text, s.Grammar, req.Rule, interp.Options{Tree: true})
	if err != nil {
		log.Printf("parse %q against %q failed: %v", req.Text, req.Rule, err)
		writeJSON(w, parseResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, parseResponse{Success: true, Result: interp.ToTreeJSON(v)})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("inspector: failed to write response: %v", err)
	}
}

// streamEvent is one message handleStream emits per derivation attempt.
type streamEvent struct {
	Rule    string `json:"rule"`
	Pos     int    `json:"pos"`
	Success bool   `json:"success"`
}

// handleStream upgrades GET /stream?rule=...&text=... to a WebSocket and
// emits one JSON message per rule-invocation attempt the search makes,
// followed by a final message carrying the parse's outcome.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	rule := r.URL.Query().Get("rule")
	text := r.URL.Query().Get("text")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("inspector: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	opts := interp.Options{
		Tree: true,
		Trace: func(ev interp.TraceEvent) {
			_ = conn.WriteJSON(streamEvent{Rule: ev.Rule, Pos: ev.Pos, Success: ev.Success})
		},
	}

	v, err := interp.Parse(text, s.Grammar, rule, opts)
	final := parseResponse{Success: err == nil}
	if err != nil {
		final.Error = err.Error()
	} else {
		final.Result = interp.ToTreeJSON(v)
	}
	if err := conn.WriteJSON(final); err != nil {
		log.Printf("inspector: websocket write failed: %v", err)
	}
}
