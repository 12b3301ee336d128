package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voice-assistant/internal/session"
)

// Controller starts and stops the assistant session.
type Controller interface {
	Start() string
	Stop() error
}

// Panel is the transcript container of the web page. The display loop
// replaces its lines; the page polls them.
type Panel struct {
	mu    sync.RWMutex
	lines []string
}

func NewPanel() *Panel {
	return &Panel{lines: []string{}}
}

func (p *Panel) Replace(lines []string) {
	cp := make([]string, len(lines))
	copy(cp, lines)
	p.mu.Lock()
	p.lines = cp
	p.mu.Unlock()
}

func (p *Panel) Lines() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

type notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

type Server struct {
	router       *chi.Mux
	server       *http.Server
	port         int
	ctrl         Controller
	panel        *Panel
	pollInterval time.Duration
}

func NewServer(port int, ctrl Controller, panel *Panel, pollInterval time.Duration) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &Server{
		router:       router,
		port:         port,
		ctrl:         ctrl,
		panel:        panel,
		pollInterval: pollInterval,
	}

	router.Get("/", s.index)
	router.Get("/health", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Post("/start", s.start)
		r.Post("/stop", s.stop)
		r.Get("/transcript", s.transcript)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	log.Printf("🌐 Starting voice assistant UI on http://localhost:%d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		PollMillis int64
	}{PollMillis: s.pollInterval.Milliseconds()}
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("❌ failed to render page: %v", err)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	runID := s.ctrl.Start()
	writeJSON(w, http.StatusOK, notification{Level: "success", Message: session.NoticeStarted, RunID: runID})
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Stop(); err != nil {
		writeJSON(w, http.StatusConflict, notification{Level: "error", Message: session.NoticeNotRunning})
		return
	}
	writeJSON(w, http.StatusOK, notification{Level: "warning", Message: session.NoticeStopped})
}

func (s *Server) transcript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"lines": s.panel.Lines()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ failed to write response: %v", err)
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Voice Assistant</title>
<style>
body { font-family: sans-serif; margin: 2rem; max-width: none; }
button { font-size: 1rem; margin-right: .5rem; padding: .4rem .9rem; }
#notice { margin: 1rem 0; padding: .6rem; border-radius: 4px; display: none; }
#notice.success { display: block; background: #e6f4ea; }
#notice.warning { display: block; background: #fff4e5; }
#notice.error { display: block; background: #fdecea; }
#chat p { margin: .3rem 0; }
</style>
</head>
<body>
<h1>🎤 Real-Time Voice Assistant</h1>
<button id="start">▶️ Start Assistant</button>
<button id="stop">⏹ Stop Assistant</button>
<div id="notice"></div>
<div id="chat"></div>
<script>
const notice = document.getElementById("notice");
const chat = document.getElementById("chat");

function escapeHTML(s) {
  return s.replace(/[&<>"']/g, c => ({"&":"&amp;","<":"&lt;",">":"&gt;","\"":"&quot;","'":"&#39;"}[c]));
}

function show(n) {
  notice.className = n.level;
  notice.textContent = n.message;
}

async function post(path) {
  const res = await fetch(path, {method: "POST"});
  show(await res.json());
}

async function refresh() {
  try {
    const res = await fetch("/api/transcript");
    const data = await res.json();
    chat.innerHTML = data.lines
      .map(l => "<p>" + escapeHTML(l).replace(/\*\*(.+?)\*\*/g, "<b>$1</b>") + "</p>")
      .join("");
  } catch (e) {}
}

document.getElementById("start").onclick = () => post("/api/start");
document.getElementById("stop").onclick = () => post("/api/stop");
refresh();
setInterval(refresh, {{.PollMillis}});
</script>
</body>
</html>
`))
