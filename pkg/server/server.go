package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/gmorley/scorecast/internal/logger"
	"github.com/gmorley/scorecast/pkg/util/predict"
)

// Server is the HTTP front end for score predictions. It renders a small
// form for humans and a JSON API for everything else. All state lives in the
// prediction service; the server itself is stateless
type Server struct {
	svc    *predict.PredictionService
	router *mux.Router
	tmpl   *template.Template
}

// NewServer wires the routes against the given prediction service
func NewServer(svc *predict.PredictionService) *Server {
	s := &Server{
		svc:  svc,
		tmpl: template.Must(template.New("index").Parse(indexTemplate)),
	}
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleFormPredict).Methods(http.MethodPost)
	r.HandleFunc("/api/predict", s.handleAPIPredict).Methods(http.MethodGet)
	r.HandleFunc("/api/teams", s.handleTeams).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s
}

// Router exposes the handler for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the context is cancelled, then shuts down
// gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Prediction service listening on", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// pageData carries everything the form template can render
type pageData struct {
	Teams      []string
	HomeTeam   string
	AwayTeam   string
	Prediction *predict.Prediction
	Error      string
}

func (s *Server) teamNames() []string {
	snap := s.svc.Snapshot()
	if snap == nil {
		return nil
	}
	return snap.Registry.Names()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, &pageData{Teams: s.teamNames()})
}

func (s *Server) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	home := strings.TrimSpace(r.FormValue("homeTeam"))
	away := strings.TrimSpace(r.FormValue("awayTeam"))

	data := &pageData{Teams: s.teamNames(), HomeTeam: home, AwayTeam: away}
	prediction, err := s.predict(home, away)
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Prediction = prediction
	}
	s.renderPage(w, data)
}

func (s *Server) renderPage(w http.ResponseWriter, data *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		logger.Error("Failed to render page", err)
	}
}

// apiError is the uniform JSON error envelope
type apiError struct {
	Error string `json:"error"`
}

func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	home := strings.TrimSpace(r.URL.Query().Get("homeTeam"))
	away := strings.TrimSpace(r.URL.Query().Get("awayTeam"))
	if home == "" || away == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "homeTeam and awayTeam query parameters are required"})
		return
	}

	prediction, err := s.predict(home, away)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, predict.ErrUnknownTeam) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

// predict runs the service and decorates unknown-team rejections with the
// closest fitted name, the way a human would want to be corrected
func (s *Server) predict(home, away string) (*predict.Prediction, error) {
	prediction, err := s.svc.PredictScore(home, away)
	if err == nil {
		return prediction, nil
	}
	if errors.Is(err, predict.ErrUnknownTeam) {
		if snap := s.svc.Snapshot(); snap != nil {
			var hints []string
			for _, name := range []string{home, away} {
				if !snap.Registry.Contains(name) {
					if closest := snap.Registry.Closest(name); closest != "" {
						hints = append(hints, fmt.Sprintf("did you mean %q instead of %q?", closest, name))
					}
				}
			}
			if len(hints) > 0 {
				return nil, fmt.Errorf("%w (%s)", err, strings.Join(hints, "; "))
			}
		}
	}
	return nil, err
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	names := s.teamNames()
	if names == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "no data loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"teams": names})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Snapshot()
	status := map[string]any{"status": "ok", "teams": 0, "matches": 0}
	if snap != nil {
		status["teams"] = snap.Registry.Len()
		status["matches"] = snap.Ledger.Len()
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", err)
	}
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<title>Scorecast</title>
<style>
body { font-family: sans-serif; max-width: 40em; margin: 2em auto; }
select, input[type=submit] { font-size: 1em; padding: 0.3em; }
.result { margin-top: 1.5em; font-size: 1.4em; }
.error { margin-top: 1.5em; color: #b00; }
</style>
</head>
<body>
<h1>Scorecast</h1>
<p>Predict a full time score from historical form.</p>
<form method="post" action="/">
<label>Home
<select name="homeTeam">
{{range .Teams}}<option value="{{.}}"{{if eq . $.HomeTeam}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
<label>Away
<select name="awayTeam">
{{range .Teams}}<option value="{{.}}"{{if eq . $.AwayTeam}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
<input type="submit" value="Predict">
</form>
{{if .Prediction}}<div class="result">{{.Prediction.Scoreline}}</div>{{end}}
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
</body>
</html>
`
