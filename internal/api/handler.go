// Package api serves the damage engine as a read-only JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/damage"
	"github.com/cory-johannsen/pvp-damage/internal/game/league"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/matchup"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
	"github.com/cory-johannsen/pvp-damage/internal/game/typing"
	"github.com/cory-johannsen/pvp-damage/internal/report"
	"github.com/cory-johannsen/pvp-damage/internal/storage/postgres"
)

// ReportStore persists reports. *postgres.ReportRepository implements it.
type ReportStore interface {
	Save(ctx context.Context, r *report.Report) error
	Get(ctx context.Context, id uuid.UUID) (*report.Report, error)
	List(ctx context.Context, f postgres.ReportFilter) ([]*report.Report, error)
}

// Summarizer fills in a report's Summary. *advisor.Advisor implements it.
type Summarizer interface {
	Annotate(ctx context.Context, r *report.Report) error
}

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

// Handler routes API requests to the engine.
type Handler struct {
	resolver *matchup.Resolver
	enum     *leveling.Enumerator
	part     *breakpoint.Partitioner
	store    ReportStore
	advisor  Summarizer
	logger   *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithReportStore enables ?save=true and the /reports routes.
func WithReportStore(s ReportStore) Option {
	return func(h *Handler) { h.store = s }
}

// WithSummarizer enables ?summary=true.
func WithSummarizer(s Summarizer) Option {
	return func(h *Handler) { h.advisor = s }
}

// NewHandler creates a Handler.
//
// Precondition: resolver, enum and part are non-nil.
func NewHandler(resolver *matchup.Resolver, enum *leveling.Enumerator, part *breakpoint.Partitioner, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{resolver: resolver, enum: enum, part: part, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the API routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.NotFoundHandler = h.logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route for " + r.URL.Path})
	}))
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/species/{id}", h.species).Methods(http.MethodGet)
	r.HandleFunc("/maxlevel", h.maxLevel).Methods(http.MethodGet)
	r.HandleFunc("/damage", h.damage).Methods(http.MethodGet)
	r.HandleFunc("/bulkpoints", h.bulkpoints).Methods(http.MethodGet)
	r.HandleFunc("/breakpoints", h.breakpoints).Methods(http.MethodGet)
	r.HandleFunc("/vs", h.versus).Methods(http.MethodGet)
	if h.store != nil {
		r.HandleFunc("/reports", h.listReports).Methods(http.MethodGet)
		r.HandleFunc("/reports/{id}", h.getReport).Methods(http.MethodGet)
	}
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) species(w http.ResponseWriter, r *http.Request) {
	sp, err := h.resolver.Species(mux.Vars(r)["id"], false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newSpeciesJSON(sp))
}

func (h *Handler) maxLevel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sp, err := h.resolver.Species(q.Get("species"), boolParam(q.Get("shadow")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	ivs := stats.Hundo
	if s := q.Get("ivs"); s != "" {
		if ivs, err = stats.ParseIVs(s); err != nil {
			h.writeError(w, err)
			return
		}
	}
	capLimit, err := capParam(q.Get("cap"), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ind, err := leveling.FindMaxLevel(sp, ivs, capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newIndividualJSON(ind))
}

type damageJSON struct {
	Attacker      individualJSON `json:"attacker"`
	Defender      individualJSON `json:"defender"`
	Move          string         `json:"move"`
	STAB          bool           `json:"stab"`
	Effectiveness float64        `json:"effectiveness"`
	Damage        int            `json:"damage"`
}

func (h *Handler) damage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	capLimit, err := capParam(q.Get("cap"), false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	att, err := h.individual(r.Context(), q, "attacker", capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	def, err := h.individual(r.Context(), q, "defender", capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	move, buffs, err := h.moveAndBuffs(q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, damageJSON{
		Attacker:      newIndividualJSON(att),
		Defender:      newIndividualJSON(def),
		Move:          move.Name(),
		STAB:          damage.IsSTAB(move, att.Species()),
		Effectiveness: typing.MoveEffectiveness(move.Type(), def.Species().Types),
		Damage:        damage.Calculate(move, att, def, buffs),
	})
}

func (h *Handler) bulkpoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	capLimit, err := capParam(q.Get("cap"), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	att, err := h.individual(r.Context(), q, "attacker", capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defSpecies, err := h.resolver.Species(q.Get("defender"), boolParam(q.Get("defender_shadow")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	move, buffs, err := h.moveAndBuffs(q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	roster, err := h.enum.Enumerate(r.Context(), defSpecies, capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	cands, err := filterParam(q.Get("filter"), roster.Individuals())
	if err != nil {
		h.writeError(w, err)
		return
	}
	ranges, err := h.part.Bulkpoints(att, cands, move, buffs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rep := report.FromRanges(report.KindBulkpoints,
		report.BattlerFor(att.Species(), buffs.Attack), report.BattlerFor(defSpecies, buffs.Defense),
		move, capLimit, ranges)
	h.respondReport(w, r, rep)
}

func (h *Handler) breakpoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	capLimit, err := capParam(q.Get("cap"), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	attSpecies, err := h.resolver.Species(q.Get("attacker"), boolParam(q.Get("attacker_shadow")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	def, err := h.individual(r.Context(), q, "defender", capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	move, buffs, err := h.moveAndBuffs(q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	roster, err := h.enum.Enumerate(r.Context(), attSpecies, capLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	cands, err := filterParam(q.Get("filter"), roster.Individuals())
	if err != nil {
		h.writeError(w, err)
		return
	}
	ranges, err := h.part.BreakpointsAgainst(cands, def, move, buffs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rep := report.FromRanges(report.KindBreakpoints,
		report.BattlerFor(attSpecies, buffs.Attack), report.BattlerFor(def.Species(), buffs.Defense),
		move, capLimit, ranges)
	h.respondReport(w, r, rep)
}

type matchupJSON struct {
	Label    string         `json:"label"`
	Defender individualJSON `json:"defender"`
	Report   *report.Report `json:"report"`
}

func (h *Handler) versus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	capLimit, err := capParam(q.Get("cap"), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	attSpecies, err := h.resolver.Species(q.Get("attacker"), boolParam(q.Get("attacker_shadow")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	defSpecies, err := h.resolver.Species(q.Get("defender"), boolParam(q.Get("defender_shadow")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	move, buffs, err := h.moveAndBuffs(q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ms, err := h.part.VersusDefender(r.Context(), attSpecies, defSpecies, move, capLimit, buffs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]matchupJSON, 0, len(ms))
	for _, m := range ms {
		out = append(out, matchupJSON{
			Label:    m.Label,
			Defender: newIndividualJSON(m.Defender),
			Report: report.FromRanges(report.KindBreakpoints,
				report.BattlerFor(attSpecies, buffs.Attack), report.BattlerFor(defSpecies, buffs.Defense),
				move, capLimit, m.Ranges),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// respondReport applies ?summary and ?save before writing rep. A failed summary
// is logged and the report is still returned.
func (h *Handler) respondReport(w http.ResponseWriter, r *http.Request, rep *report.Report) {
	q := r.URL.Query()
	if boolParam(q.Get("summary")) && h.advisor != nil {
		if err := h.advisor.Annotate(r.Context(), rep); err != nil {
			h.logger.Warn("report summary failed", zap.String("report", rep.ID.String()), zap.Error(err))
		}
	}
	if boolParam(q.Get("save")) {
		if h.store == nil {
			h.writeError(w, fmt.Errorf("%w: report storage is disabled", errBadRequest))
			return
		}
		if err := h.store.Save(r.Context(), rep); err != nil {
			h.writeError(w, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := postgres.ReportFilter{
		Kind:     report.Kind(q.Get("kind")),
		Attacker: q.Get("attacker"),
		Defender: q.Get("defender"),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeError(w, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		f.Limit = n
	}
	reps, err := h.store.List(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if reps == nil {
		reps = []*report.Report{}
	}
	h.writeJSON(w, http.StatusOK, reps)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	rep, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

// individual reads <side>, <side>_shadow, <side>_level and <side>_ivs.
func (h *Handler) individual(ctx context.Context, q queryValues, side string, capLimit int) (stats.Individual, error) {
	s := matchup.Side{
		Species: q.Get(side),
		Shadow:  boolParam(q.Get(side + "_shadow")),
		IVs:     q.Get(side + "_ivs"),
	}
	if lv := q.Get(side + "_level"); lv != "" {
		f, err := strconv.ParseFloat(lv, 64)
		if err != nil {
			return stats.Individual{}, fmt.Errorf("%w: %s_level: %w", errBadRequest, side, err)
		}
		s.Level = f
	}
	return h.resolver.Individual(ctx, s, capLimit)
}

func (h *Handler) moveAndBuffs(q queryValues) (catalog.Move, damage.Buffs, error) {
	if q.Get("move") == "" {
		return nil, damage.Buffs{}, fmt.Errorf("%w: move is required", errBadRequest)
	}
	move, err := h.resolver.Move(q.Get("move"))
	if err != nil {
		return nil, damage.Buffs{}, err
	}
	var b damage.Buffs
	for key, dst := range map[string]*damage.Stage{"attack_buff": &b.Attack, "defense_buff": &b.Defense} {
		s := q.Get(key)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < int(damage.MinStage) || n > int(damage.MaxStage) {
			return nil, damage.Buffs{}, fmt.Errorf("%w: %s must be an integer in [%d, %d]",
				errBadRequest, key, damage.MinStage, damage.MaxStage)
		}
		*dst = damage.Stage(n)
	}
	return move, b, nil
}

type queryValues interface{ Get(string) string }

func capParam(s string, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, fmt.Errorf("%w: cap is required", errBadRequest)
		}
		return 0, nil
	}
	n, err := league.ParseCap(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return n, nil
}

func filterParam(expr string, inds []stats.Individual) ([]stats.Individual, error) {
	if expr == "" {
		return inds, nil
	}
	keep, err := breakpoint.ParseFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return breakpoint.Filter(inds, keep), nil
}

func boolParam(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encoding response", zap.Error(err))
	}
}

// writeError maps engine errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrSpeciesNotFound),
		errors.Is(err, catalog.ErrMoveNotFound),
		errors.Is(err, postgres.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalog.ErrAmbiguousMove),
		errors.Is(err, stats.ErrInvalidLevel),
		errors.Is(err, stats.ErrInvalidIVs):
		status = http.StatusBadRequest
	case errors.Is(err, leveling.ErrNoValidLevel),
		errors.Is(err, breakpoint.ErrEmptyRoster):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
