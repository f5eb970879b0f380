package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/dimascad/ellingham/internal/bridge"
	"github.com/dimascad/ellingham/internal/cache"
	"github.com/dimascad/ellingham/internal/gibbs"
	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/worker"
)

// Sweeper runs temperature sweeps against the bridge service: oxide,
// metal-reference, and O2-reference equilibria per oxide per grid point,
// cached and rate limited.
type Sweeper struct {
	client   *bridge.Client
	cache    cache.Cache // nil disables caching
	limiter  *worker.Limiter
	workers  int
	database string
	pressure float64
	ttl      time.Duration
}

// NewSweeper creates a sweeper. c may be nil to disable caching.
func NewSweeper(client *bridge.Client, c cache.Cache, limiter *worker.Limiter, cfg *model.Config) *Sweeper {
	return &Sweeper{
		client:   client,
		cache:    c,
		limiter:  limiter,
		workers:  cfg.Concurrency.Workers,
		database: cfg.Bridge.Database,
		pressure: cfg.Bridge.Pressure,
		ttl:      cfg.Cache.TTL,
	}
}

// SweepTable is the wide result of a sweep: one temperature column, one
// dGf-per-O2 column per oxide. Failed cells hold NaN with the error recorded.
type SweepTable struct {
	Database string
	TempsK   []float64
	Oxides   []string
	Values   map[string][]float64
	Errors   map[string][]string
	Phases   map[string]string // matched database phase per oxide
}

// ErrorCount returns the number of failed cells.
func (t *SweepTable) ErrorCount() int {
	n := 0
	for _, errs := range t.Errors {
		for _, e := range errs {
			if e != "" {
				n++
			}
		}
	}
	return n
}

type sweepJob struct {
	sweeper *Sweeper
	oxide   model.Oxide
	temps   []float64
}

type sweepResult struct {
	oxide string
	phase string
	dg    []float64
	errs  []string
	err   error
}

func (r *sweepResult) GetError() error { return r.err }

// metalReferenceXO is the oxygen fraction of the nearly-pure-metal
// equilibrium that stands in for the pure metal reference state.
const metalReferenceXO = 0.0001

// Execute runs one oxide's full temperature column. Per-point failures are
// recorded in the cell and the column continues; only a setup failure (a
// cancelled context) aborts the job.
//
// Each point takes three equilibria: the oxide at its stoichiometric
// composition, the metal reference, and the O-only system for the O2
// reference. The formation energy per mole O2 is then
//
//	oxidePerO2·GM(oxide phase) − metalPerO2·GM(metal) − GM(O2)
func (j *sweepJob) Execute(ctx context.Context) worker.Result {
	res := &sweepResult{
		oxide: j.oxide.Name,
		dg:    make([]float64, len(j.temps)),
		errs:  make([]string, len(j.temps)),
	}

	for i, tK := range j.temps {
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}

		// A failed O-only system keeps the SER zero reference, same as the
		// original workflow's fallback.
		gO2 := 0.0
		if eq, err := j.sweeper.o2Reference(ctx, tK); err == nil {
			gO2 = eq.SystemGM
		}

		refEq, err := j.sweeper.metalReference(ctx, j.oxide, tK)
		if err != nil {
			res.dg[i] = math.NaN()
			res.errs[i] = err.Error()
			continue
		}

		eq, err := j.sweeper.oxideEquilibrium(ctx, j.oxide, tK)
		if err != nil {
			res.dg[i] = math.NaN()
			res.errs[i] = err.Error()
			continue
		}

		gmOxide, phase, ok := bridge.PhaseGibbs(eq, j.oxide.PhasePatterns)
		if !ok {
			res.dg[i] = math.NaN()
			res.errs[i] = fmt.Sprintf("no stable phase matching %v", j.oxide.PhasePatterns)
			continue
		}
		res.phase = phase

		raw := gibbs.FormationPerO2(gmOxide, refEq.SystemGM, gO2,
			j.oxide.OxidePerO2, j.oxide.MetalPerO2)
		res.dg[i] = gibbs.JPerMolToKJ(raw)
	}

	return res
}

// oxideEquilibrium calculates the oxide at its stoichiometric composition.
func (s *Sweeper) oxideEquilibrium(ctx context.Context, o model.Oxide, tK float64) (*bridge.EquilibriumResult, error) {
	return s.equilibrium(ctx, bridge.EquilibriumRequest{
		Database:      s.database,
		Elements:      o.Elements,
		TempK:         tK,
		PressurePa:    s.pressure,
		MoleFractions: map[string]float64{"O": o.XO},
	})
}

// metalReference calculates the nearly-pure-metal system for the metal
// reference energy.
func (s *Sweeper) metalReference(ctx context.Context, o model.Oxide, tK float64) (*bridge.EquilibriumResult, error) {
	return s.equilibrium(ctx, bridge.EquilibriumRequest{
		Database:      s.database,
		Elements:      o.Elements,
		TempK:         tK,
		PressurePa:    s.pressure,
		MoleFractions: map[string]float64{"O": metalReferenceXO},
	})
}

// o2Reference calculates the O-only system for the O2 reference energy.
// Shared across oxides, so the cache collapses it to one call per point.
func (s *Sweeper) o2Reference(ctx context.Context, tK float64) (*bridge.EquilibriumResult, error) {
	return s.equilibrium(ctx, bridge.EquilibriumRequest{
		Database:   s.database,
		Elements:   []string{"O"},
		TempK:      tK,
		PressurePa: s.pressure,
	})
}

// equilibrium runs one calculation, consulting the cache first.
func (s *Sweeper) equilibrium(ctx context.Context, req bridge.EquilibriumRequest) (*bridge.EquilibriumResult, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(req.Key())
		if data, found := s.cache.Get(key); found {
			var result bridge.EquilibriumResult
			if err := json.Unmarshal(data, &result); err == nil {
				return &result, nil
			}
			// Corrupt entry, drop it and recalculate.
			_ = s.cache.Delete(key)
		}
	}

	if err := s.limiter.Wait(ctx, s.client.BaseURL()); err != nil {
		return nil, err
	}

	result, err := s.client.Equilibrium(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(key, data, s.ttl)
		}
	}
	return result, nil
}

// Sweep runs all oxides over the grid on the worker pool and assembles the
// wide table. Column order follows the selection order.
func (s *Sweeper) Sweep(ctx context.Context, oxides []model.Oxide, grid *model.Grid) (*SweepTable, error) {
	if len(oxides) == 0 {
		return nil, fmt.Errorf("no oxides selected")
	}

	temps := grid.Temps()
	pool := worker.NewPool(s.workers)
	pool.Start()

	for _, o := range oxides {
		pool.Submit(&sweepJob{sweeper: s, oxide: o, temps: temps})
	}
	results := pool.Wait()

	table := &SweepTable{
		Database: s.database,
		TempsK:   temps,
		Values:   make(map[string][]float64),
		Errors:   make(map[string][]string),
		Phases:   make(map[string]string),
	}
	for _, o := range oxides {
		table.Oxides = append(table.Oxides, o.Name)
	}

	for _, r := range results {
		sr, ok := r.(*sweepResult)
		if !ok {
			continue
		}
		if sr.err != nil {
			return nil, fmt.Errorf("sweep %s: %w", sr.oxide, sr.err)
		}
		table.Values[sr.oxide] = sr.dg
		table.Errors[sr.oxide] = sr.errs
		if sr.phase != "" {
			table.Phases[sr.oxide] = sr.phase
		}
	}

	for _, name := range table.Oxides {
		if _, ok := table.Values[name]; !ok {
			return nil, fmt.Errorf("sweep %s: no result returned", name)
		}
	}
	return table, nil
}

// WriteCSV writes the wide sweep table. Failed cells are marked ERR so a
// downstream plot script fails loudly instead of interpolating over a gap.
func (t *SweepTable) WriteCSV(w io.Writer) error {
	header := "T_K,T_C"
	for _, name := range t.Oxides {
		header += "," + name + "_dGf_kJ_per_molO2"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for i, tK := range t.TempsK {
		row := formatG(tK) + "," + formatG(model.KelvinToCelsius(tK))
		for _, name := range t.Oxides {
			if t.Errors[name][i] != "" {
				row += ",ERR"
				continue
			}
			row += "," + formatG(t.Values[name][i])
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

func formatG(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
