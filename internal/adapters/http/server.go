package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/changes"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/dsl"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/aretw0/flume/pkg/session"
	"github.com/aretw0/flume/pkg/tabular"
)

// Server exposes the diagram engine over HTTP. One engine per diagram
// ID, managed behind the session Manager.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{manager: manager, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/diagrams", func(r chi.Router) {
		r.Get("/", s.listDiagrams)
		r.Route("/{diagramID}", func(r chi.Router) {
			r.Get("/", s.getDiagram)
			r.Delete("/", s.deleteDiagram)
			r.Get("/text", s.getText)
			r.Put("/text", s.putText)
			r.Get("/balance", s.getBalance)
			r.Get("/rows", s.getRows)
			r.Post("/commands", s.postCommand)
			r.Post("/changes", s.postChanges)
			r.Post("/undo", s.postUndo)
			r.Post("/redo", s.postRedo)
			r.Post("/reset", s.postReset)
		})
	})

	return r
}

func diagramID(r *http.Request) string {
	return chi.URLParam(r, "diagramID")
}

func (s *Server) listDiagrams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.respond(w, http.StatusOK, map[string]any{"diagrams": ids})
}

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	s.withEngine(w, r, func(eng *flume.Engine) (stateResponse, error) {
		return stateEnvelope(eng, nil), nil
	})
}

func (s *Server) deleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Reset(r.Context(), diagramID(r)); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getText(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Load(r.Context(), diagramID(r))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(state.DSLText))
}

func (s *Server) putText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}

	s.withEngine(w, r, func(eng *flume.Engine) (stateResponse, error) {
		_, diags := eng.SetRawText(string(body))
		return stateEnvelope(eng, diags), nil
	})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Load(r.Context(), diagramID(r))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	report := balance.Analyze(state.Data)
	s.respond(w, http.StatusOK, map[string]any{
		"balanced":   report.Balanced(),
		"per_node":   report.PerNode,
		"imbalanced": report.Imbalanced,
	})
}

func (s *Server) getRows(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Load(r.Context(), diagramID(r))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		csv, err := tabular.WriteCSV(state.Data)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
		return
	}

	s.respond(w, http.StatusOK, map[string]any{"rows": tabular.Rows(state.Data)})
}

// commandRequest is the generic envelope for POST /commands.
type commandRequest struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

func (s *Server) postCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	s.withEngine(w, r, func(eng *flume.Engine) (stateResponse, error) {
		if err := dispatch(eng, req); err != nil {
			return stateResponse{}, err
		}
		return stateEnvelope(eng, nil), nil
	})
}

var errUnknownCommand = errors.New("unknown command")

// dispatch routes one command envelope to the engine method it names.
func dispatch(eng *flume.Engine, req commandRequest) error {
	decode := func(target any) error {
		if len(req.Params) == 0 {
			return nil
		}
		if err := json.Unmarshal(req.Params, target); err != nil {
			return fmt.Errorf("invalid params for %q: %w", req.Command, err)
		}
		return nil
	}

	var err error
	switch req.Command {
	case "add_node":
		var p addNodeParams
		if err = decode(&p); err == nil {
			_, err = eng.AddNode(p.Name)
		}
	case "update_node":
		var p updateNodeParams
		if err = decode(&p); err == nil {
			_, err = eng.UpdateNode(p.ID, p.toUpdate())
		}
	case "delete_node":
		var p idParams
		if err = decode(&p); err == nil {
			_, err = eng.DeleteNode(p.ID)
		}
	case "add_link":
		var link domain.Link
		if err = decode(&link); err == nil {
			_, err = eng.AddLink(link)
		}
	case "update_link":
		var p updateLinkParams
		if err = decode(&p); err == nil {
			_, err = eng.UpdateLink(p.Index, p.toUpdate())
		}
	case "delete_link":
		var p indexParams
		if err = decode(&p); err == nil {
			_, err = eng.DeleteLink(p.Index)
		}
	case "set_customization":
		var p customizationParams
		if err = decode(&p); err == nil {
			_, err = eng.SetCustomization(p.ID, p.NodeCustomization)
		}
	case "move_node":
		var p moveParams
		if err = decode(&p); err == nil {
			_, err = eng.MoveNode(p.ID, domain.Point{X: p.X, Y: p.Y})
		}
	case "move_label":
		var p moveParams
		if err = decode(&p); err == nil {
			_, err = eng.MoveLabel(p.ID, domain.Point{X: p.X, Y: p.Y})
		}
	case "reset_node_positions":
		_, err = eng.ResetNodePositions()
	case "reset_label_positions":
		_, err = eng.ResetLabelPositions()
	case "add_label":
		var label domain.IndependentLabel
		if err = decode(&label); err == nil {
			_, err = eng.AddIndependentLabel(label)
		}
	case "update_label":
		var p updateLabelParams
		if err = decode(&p); err == nil {
			_, err = eng.UpdateIndependentLabel(p.ID, p.toUpdate())
		}
	case "delete_label":
		var p idParams
		if err = decode(&p); err == nil {
			_, err = eng.DeleteIndependentLabel(p.ID)
		}
	case "update_settings":
		var settings domain.DiagramSettings
		if err = decode(&settings); err == nil {
			_, err = eng.UpdateSettings(settings)
		}
	case "select_node":
		var p idParams
		if err = decode(&p); err == nil {
			eng.SelectNode(p.ID)
		}
	case "auto_balance":
		var p autoBalanceParams
		if err = decode(&p); err == nil {
			_, err = eng.AutoBalance(p.NodeID)
		}
	default:
		err = fmt.Errorf("%w %q", errUnknownCommand, req.Command)
	}
	return err
}

func (s *Server) postChanges(w http.ResponseWriter, r *http.Request) {
	var proposal ports.Proposal
	if err := json.NewDecoder(r.Body).Decode(&proposal); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	cs, err := changes.DecodeProposal(proposal)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	s.withEngine(w, r, func(eng *flume.Engine) (stateResponse, error) {
		if _, err := eng.ApplyChanges(cs); err != nil {
			return stateResponse{}, err
		}
		return stateEnvelope(eng, nil), nil
	})
}

func (s *Server) postUndo(w http.ResponseWriter, r *http.Request) {
	s.withEngine(w, r, func(eng *flume.Engine) (stateResponse, error) {
		eng.Undo()
		return stateEnvelope(eng, nil), nil
	})
}

func (s *Server) postRedo(w http.ResponseWriter, r *http.Request) {
	s.withEngine(w, r, func(eng *flume.Engine) (stateResponse, error) {
		eng.Redo()
		return stateEnvelope(eng, nil), nil
	})
}

// postReset erases the diagram completely: live history, persisted
// snapshot and auxiliary entries. The response carries the sample
// state the next access will start from.
func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Reset(r.Context(), diagramID(r)); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, http.StatusOK, stateEnvelope(flume.New(), nil))
}

// withEngine runs fn under the diagram lock and writes the resulting
// envelope. Engine rejections map to 422, everything else to 500.
func (s *Server) withEngine(w http.ResponseWriter, r *http.Request, fn func(*flume.Engine) (stateResponse, error)) {
	var resp stateResponse
	err := s.manager.WithEngine(r.Context(), diagramID(r), func(eng *flume.Engine) error {
		var err error
		resp, err = fn(eng)
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		var verr domain.ValidationError
		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verr), errors.As(err, &verrs):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, errUnknownCommand):
			status = http.StatusBadRequest
		}
		s.fail(w, status, err)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

func stateEnvelope(eng *flume.Engine, diags []dsl.Diagnostic) stateResponse {
	resp := stateResponse{
		State:   eng.Snapshot(),
		CanUndo: eng.CanUndo(),
		CanRedo: eng.CanRedo(),
	}
	for _, d := range diags {
		resp.Diagnostics = append(resp.Diagnostics, d.String())
	}
	return resp
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respond(w, status, map[string]string{"error": err.Error()})
}
