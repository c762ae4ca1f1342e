package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"banketl/internal/collector"
	"banketl/internal/config"
	"banketl/internal/loader"
	"banketl/internal/logger"
	"banketl/internal/model"
	"banketl/internal/query"
	"banketl/internal/store"
	"banketl/internal/transform"
)

// ProgressLogger records one line per completed stage.
type ProgressLogger interface {
	Log(msg string) error
}

// Deps are the collaborators a run talks to.
type Deps struct {
	Fetcher  collector.Fetcher
	Files    transform.FileReader
	Opener   store.Opener
	Progress ProgressLogger
	Out      io.Writer // query results
}

// Report summarises a finished run.
type Report struct {
	RunID      string
	Stage      Stage
	Records    int
	Currencies []string
}

// Pipeline runs extract, transform, load and query once per call to Run.
type Pipeline struct {
	cfg  *config.Config
	deps Deps
}

// New creates a Pipeline.
func New(cfg *config.Config, deps Deps) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps}
}

// Run executes every stage in order and stops at the first failure. The
// store connection is closed on every path once opened.
func (p *Pipeline) Run(ctx context.Context) (rep *Report, err error) {
	rep = &Report{RunID: uuid.NewString(), Stage: StageInit}
	log := logger.Get().WithField("run_id", rep.RunID)
	log.Info("pipeline run started")

	fail := func(next Stage, err error) (*Report, error) {
		log.WithError(err).WithField("stage", next).Error("pipeline run failed")
		return rep, &StageError{Stage: next, Err: err}
	}
	advance := func(next Stage, msg string) error {
		if err := p.deps.Progress.Log(msg); err != nil {
			return err
		}
		rep.Stage = next
		log.WithField("stage", next).Info(msg)
		return nil
	}

	if err := p.deps.Progress.Log(msgStart); err != nil {
		return fail(StageInit, err)
	}

	ds, err := collector.Extract(ctx, p.deps.Fetcher, p.cfg.Source.URL, p.cfg.Source.Columns)
	if err != nil {
		return fail(StageExtracted, err)
	}
	rep.Records = ds.Len()
	if err := advance(StageExtracted, msgExtracted); err != nil {
		return fail(StageExtracted, err)
	}

	transformed, rates, err := transform.Transform(ds, p.deps.Files, p.cfg.Rates.Path, p.cfg.Rates.Required)
	if err != nil {
		return fail(StageTransformed, err)
	}
	if err := transformed.Validate(expectedColumns(p.cfg.Source.Columns, rates.Codes())); err != nil {
		return fail(StageTransformed, err)
	}
	rep.Currencies = rates.Codes()
	if err := advance(StageTransformed, msgTransformed); err != nil {
		return fail(StageTransformed, err)
	}

	if err := loader.WriteCSV(transformed, p.cfg.Output.CSVPath); err != nil {
		return fail(StageCSVWritten, err)
	}
	if err := advance(StageCSVWritten, msgCSVWritten); err != nil {
		return fail(StageCSVWritten, err)
	}

	st, err := p.deps.Opener.Open(ctx)
	if err != nil {
		return fail(StageDBConnected, err)
	}
	defer func() {
		cerr := st.Close()
		if err != nil {
			if cerr != nil {
				log.WithError(cerr).Warn("close store after failure")
			}
			return
		}
		if cerr == nil {
			cerr = advance(StageClosed, msgClosed)
		}
		if cerr != nil {
			rep, err = fail(StageClosed, cerr)
		}
	}()
	if err := advance(StageDBConnected, msgConnected); err != nil {
		return fail(StageDBConnected, err)
	}

	if err := st.ReplaceTable(ctx, p.cfg.Database.Table, transformed); err != nil {
		return fail(StageDBLoaded, err)
	}
	if err := advance(StageDBLoaded, msgLoaded); err != nil {
		return fail(StageDBLoaded, err)
	}

	for _, q := range p.cfg.Queries {
		if err := query.Run(ctx, st, q, p.deps.Out); err != nil {
			return fail(StageQueried, err)
		}
	}
	if err := advance(StageQueried, msgQueried); err != nil {
		return fail(StageQueried, err)
	}

	log.WithFields(logrus.Fields{
		"records":    rep.Records,
		"currencies": rep.Currencies,
	}).Info("pipeline run finished")
	return rep, nil
}

func expectedColumns(base, codes []string) []string {
	cols := append([]string(nil), base...)
	for _, c := range codes {
		cols = append(cols, model.CurrencyColumn(c))
	}
	return cols
}

// FailedStage returns the stage a run error occurred in, if known.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}
