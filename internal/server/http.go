package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ultma/ultma-server-go/internal/game"
	"go.uber.org/zap"
)

// APIPrefix is where the game routes are mounted.
const APIPrefix = "/api/game"

type httpAPI struct {
	svc    *game.MatchService
	logger *zap.Logger
}

type errorBody struct {
	Error   *game.Error `json:"error"`
	Outcome interface{} `json:"outcome,omitempty"`
}

// NewRouter builds the HTTP API. hub may be nil to disable the websocket
// endpoint.
func NewRouter(svc *game.MatchService, hub *Hub, logger *zap.Logger) *mux.Router {
	api := &httpAPI{svc: svc, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if hub != nil {
		r.HandleFunc("/ws", hub.ServeWS)
	}

	g := r.PathPrefix(APIPrefix).Subrouter()
	g.HandleFunc("", api.state).Methods(http.MethodGet)
	g.HandleFunc("/", api.state).Methods(http.MethodGet)
	g.HandleFunc("", api.reset).Methods(http.MethodDelete)
	g.HandleFunc("/", api.reset).Methods(http.MethodDelete)
	g.HandleFunc("/events", api.history).Methods(http.MethodGet)
	g.HandleFunc("/new", api.create).Methods(http.MethodPost)
	g.HandleFunc("/join", api.join).Methods(http.MethodPost)
	g.HandleFunc("/cast", api.cast).Methods(http.MethodPost)
	g.HandleFunc("/meditate", api.meditate).Methods(http.MethodPost)
	g.HandleFunc("/attack", api.attack).Methods(http.MethodPost)
	g.HandleFunc("/defense", api.defense).Methods(http.MethodPost)
	g.HandleFunc("/arena/start", api.startArena).Methods(http.MethodPost)
	g.HandleFunc("/arena/end-turn", api.endArenaTurn).Methods(http.MethodPost)
	g.HandleFunc("/arena/end", api.endArenaPhase).Methods(http.MethodPost)
	g.HandleFunc("/potion/use", api.usePotion).Methods(http.MethodPost)
	g.HandleFunc("/potion/create", api.createPotion).Methods(http.MethodPost)
	g.HandleFunc("/potion/give", api.givePotion).Methods(http.MethodPost)
	g.HandleFunc("/glyphs/distribute", api.distributeGlyphs).Methods(http.MethodPost)
	g.HandleFunc("/glyphs/use", api.useGlyph).Methods(http.MethodPost)

	r.Use(requestLogger(logger))
	return r
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r)
		})
	}
}

func param(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a game error kind to an HTTP status.
func statusFor(kind game.ErrorKind) int {
	switch kind {
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindInvalidToken, game.KindInvalidTarget:
		return http.StatusBadRequest
	case game.KindNotYourTurn, game.KindNoActionsRemaining, game.KindWrongPhase, game.KindEliminated:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (a *httpAPI) fail(w http.ResponseWriter, r *http.Request, err error, outcome interface{}) {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		a.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, statusFor(gameErr.Kind), errorBody{Error: gameErr, Outcome: outcome})
}

func (a *httpAPI) respondMatch(w http.ResponseWriter, r *http.Request, m *game.Match, err error) {
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *httpAPI) respondOutcome(w http.ResponseWriter, r *http.Request, outcome interface{}, err error) {
	if err != nil {
		a.fail(w, r, err, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (a *httpAPI) state(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.State(r.Context())
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type historyBody struct {
	Events []game.JournalEntry `json:"events"`
	Next   int64               `json:"next"`
}

func (a *httpAPI) history(w http.ResponseWriter, r *http.Request) {
	var after int64
	if raw := param(r, "after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			a.fail(w, r, &game.Error{Kind: game.KindInvalidToken, Message: "after must be a non-negative integer"}, nil)
			return
		}
		after = n
	}
	events, next := a.svc.History(after)
	writeJSON(w, http.StatusOK, historyBody{Events: events, Next: next})
}

func (a *httpAPI) reset(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Reset(r.Context()); err != nil {
		a.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *httpAPI) create(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.CreateMatch(r.Context())
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) join(w http.ResponseWriter, r *http.Request) {
	m, _, err := a.svc.Join(r.Context(), param(r, "playerName"))
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) cast(w http.ResponseWriter, r *http.Request) {
	res, _, err := a.svc.Cast(r.Context(), param(r, "playerId"), param(r, "w1"), param(r, "w2"))
	a.respondOutcome(w, r, res, err)
}

func (a *httpAPI) meditate(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.Meditate(r.Context(), param(r, "playerId"))
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) attack(w http.ResponseWriter, r *http.Request) {
	out, _, err := a.svc.Attack(r.Context(), param(r, "attackerId"), param(r, "targetId"), param(r, "spellName"))
	a.respondOutcome(w, r, out, err)
}

func (a *httpAPI) defense(w http.ResponseWriter, r *http.Request) {
	out, _, err := a.svc.ActivateDefense(r.Context(), param(r, "playerId"), param(r, "spellName"))
	a.respondOutcome(w, r, out, err)
}

func (a *httpAPI) startArena(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.StartArena(r.Context())
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) endArenaTurn(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.EndArenaTurn(r.Context(), param(r, "playerId"))
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) endArenaPhase(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.EndArenaPhase(r.Context())
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) usePotion(w http.ResponseWriter, r *http.Request) {
	use, _, err := a.svc.UsePotion(r.Context(), param(r, "playerId"), param(r, "color"))
	a.respondOutcome(w, r, use, err)
}

func (a *httpAPI) createPotion(w http.ResponseWriter, r *http.Request) {
	out, _, err := a.svc.CreatePotion(r.Context(), param(r, "playerId"), param(r, "w1"), param(r, "w2"))
	a.respondOutcome(w, r, out, err)
}

func (a *httpAPI) givePotion(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.GivePotion(r.Context(), param(r, "playerId"), param(r, "color"))
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) distributeGlyphs(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.DistributeGlyphs(r.Context())
	a.respondMatch(w, r, m, err)
}

func (a *httpAPI) useGlyph(w http.ResponseWriter, r *http.Request) {
	use, _, err := a.svc.UseGlyph(r.Context(), param(r, "playerId"), param(r, "glyph"))
	a.respondOutcome(w, r, use, err)
}
