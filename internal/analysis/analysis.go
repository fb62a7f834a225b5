// internal/analysis/analysis.go

// Package analysis assembles the Pathoscope job: mapping sample reads
// against the reference index, rebuilding a per-analysis isolate index,
// subtracting host reads, reassigning ambiguous alignments and
// committing the diagnosis.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pathoscope/core/fasta"
	"pathoscope/internal/bowtie"
	"pathoscope/internal/config"
	"pathoscope/internal/job"
	"pathoscope/internal/paths"
	"pathoscope/internal/store"
	"pathoscope/internal/task"
	"pathoscope/pkg/api"
)

// Store is the database surface the pipeline needs.
type Store interface {
	Sample(ctx context.Context, id string) (store.Sample, error)
	DistinctOTUIDs(ctx context.Context, sequenceIDs []string) ([]string, error)
	SequencesByOTU(ctx context.Context, otuIDs []string, fn func(store.Sequence) error) error
	CommitResults(ctx context.Context, analysisID string, results api.AnalysisResultsV1, fallbackPath string) error
	RemoveAnalysis(ctx context.Context, analysisID string) error
}

// Analyzer builds runnable jobs from task descriptions.
type Analyzer struct {
	cfg        config.Config
	store      Store
	runner     bowtie.Runner
	dispatcher store.Dispatcher
	log        *zap.SugaredLogger
}

func New(cfg config.Config, st Store, runner bowtie.Runner, dispatcher store.Dispatcher, log *zap.SugaredLogger) *Analyzer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if dispatcher == nil {
		dispatcher = store.LogDispatcher{Log: log}
	}
	return &Analyzer{cfg: cfg, store: st, runner: runner, dispatcher: dispatcher, log: log}
}

// Job binds a task to the full stage list. Running the returned job
// executes the analysis end to end.
func (a *Analyzer) Job(t task.Task) *job.Job {
	r := &run{a: a, task: t}

	stages := []job.Stage{
		{Name: "check_db", Run: r.checkDB},
		{Name: "mk_analysis_dir", Run: r.mkAnalysisDir},
		{Name: "map_otus", Run: r.mapOTUs},
		{Name: "generate_isolate_fasta", Run: r.generateIsolateFasta},
		{Name: "build_isolate_index", Run: r.buildIsolateIndex},
		{Name: "map_isolates", Run: r.mapIsolates},
		{Name: "map_subtraction", Run: r.mapSubtraction},
		{Name: "subtract_mapping", Run: r.subtractMapping},
		{Name: "pathoscope", Run: r.pathoscope},
		{Name: "import_results", Run: r.importResults},
	}

	return job.New("pathoscope_bowtie", stages, r.cleanup, a.log)
}

// run carries the state threaded through the stages of one analysis.
type run struct {
	a    *Analyzer
	task task.Task

	proc            int
	readPaths       []string
	subtractionPath string

	analysisPath string

	// intersectIDs are the reference sequence IDs hit during the first
	// mapping; otuIDs the OTUs owning them.
	intersectIDs map[string]struct{}
	otuIDs       []string

	refLengths map[string]int

	// hostScores maps read IDs to their best score against the
	// subtraction genome.
	hostScores map[string]float64

	results api.AnalysisResultsV1
}

func (r *run) isolateFastaPath() string {
	return filepath.Join(r.analysisPath, "isolate_index.fa")
}

func (r *run) isolateIndexPrefix() string {
	return filepath.Join(r.analysisPath, "isolates")
}

func (r *run) vtaPath() string { return filepath.Join(r.analysisPath, "to_isolates.vta") }

func (r *run) mappedFastqPath() string { return filepath.Join(r.analysisPath, "mapped.fastq") }

func (r *run) reassignedPath() string { return filepath.Join(r.analysisPath, "reassigned.vta") }

func (r *run) reportPath() string { return filepath.Join(r.analysisPath, "report.tsv") }

// checkDB resolves the sample document into concrete paths and counts.
func (r *run) checkDB(ctx context.Context) error {
	sample, err := r.a.store.Sample(ctx, r.task.SampleID)
	if err != nil {
		return err
	}

	data := r.a.cfg.DataPath
	r.readPaths = paths.ReadFiles(data, sample.ID, sample.IsPaired())
	r.subtractionPath = paths.Subtraction(data, sample.Subtraction.ID)
	r.analysisPath = paths.Analysis(data, sample.ID, r.task.AnalysisID)

	r.proc = r.a.cfg.Proc
	if r.task.Proc > 0 {
		r.proc = r.task.Proc
	}

	r.a.log.Infow("sample resolved",
		"sample", sample.ID,
		"paired", sample.IsPaired(),
		"library_reads", sample.Quality.Count,
	)
	return nil
}

func (r *run) mkAnalysisDir(context.Context) error {
	return os.MkdirAll(r.analysisPath, 0o755)
}

// mapOTUs maps the sample reads against the main reference index and
// collects the IDs of every sequence hit.
func (r *run) mapOTUs(ctx context.Context) error {
	r.intersectIDs = make(map[string]struct{})

	index := paths.Index(r.a.cfg.DataPath, r.task.RefID, r.task.IndexID)
	cmd := bowtie.MapOTUsCommand(r.proc, index, r.readPaths)

	return r.a.runner.Run(ctx, cmd, samLines(func(a samAlignment) error {
		r.intersectIDs[a.RefID] = struct{}{}
		return nil
	}))
}

// generateIsolateFasta writes every sequence of every OTU hit during
// the first mapping to a FASTA file, so isolates missed by the default
// reference index can still be diagnosed.
func (r *run) generateIsolateFasta(ctx context.Context) error {
	ids := make([]string, 0, len(r.intersectIDs))
	for id := range r.intersectIDs {
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return fmt.Errorf("no reads mapped to the reference index")
	}

	otuIDs, err := r.a.store.DistinctOTUIDs(ctx, ids)
	if err != nil {
		return err
	}
	r.otuIDs = otuIDs

	f, err := os.Create(r.isolateFastaPath())
	if err != nil {
		return err
	}

	w := fasta.NewWriter(f)
	r.refLengths = make(map[string]int)

	err = r.a.store.SequencesByOTU(ctx, otuIDs, func(seq store.Sequence) error {
		r.refLengths[seq.ID] = len(seq.Sequence)
		return w.Write(fasta.Record{ID: seq.ID, Seq: []byte(seq.Sequence)})
	})
	if err != nil {
		_ = f.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (r *run) buildIsolateIndex(ctx context.Context) error {
	cmd := bowtie.BuildCommand(r.isolateFastaPath(), r.isolateIndexPrefix())
	return r.a.runner.Run(ctx, cmd, nil)
}

// mapIsolates maps the sample reads against the isolate index, writing
// the VTA alignment file and keeping aligned reads for the subtraction
// mapping.
func (r *run) mapIsolates(ctx context.Context) error {
	out, err := os.Create(r.vtaPath())
	if err != nil {
		return err
	}

	w := newVTAWriter(out)

	cmd := bowtie.MapIsolatesCommand(r.proc, r.isolateIndexPrefix(), r.mappedFastqPath(), r.readPaths)

	err = r.a.runner.Run(ctx, cmd, samLines(func(a samAlignment) error {
		return w.write(a)
	}))
	if err != nil {
		_ = out.Close()
		return err
	}

	if err := w.flush(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// mapSubtraction maps the aligned reads against the subtraction genome
// and records the best score per read.
func (r *run) mapSubtraction(ctx context.Context) error {
	r.hostScores = make(map[string]float64)

	cmd := bowtie.MapSubtractionCommand(r.proc, r.subtractionPath, r.mappedFastqPath())

	return r.a.runner.Run(ctx, cmd, samLines(func(a samAlignment) error {
		if a.Score > r.hostScores[a.ReadID] {
			r.hostScores[a.ReadID] = a.Score
		}
		return nil
	}))
}

func (r *run) subtractMapping(context.Context) error {
	n, err := subtractVTA(r.vtaPath(), r.hostScores)
	if err != nil {
		return err
	}
	r.results.SubtractedCount = n
	return nil
}

// pathoscope runs the reassignment model and turns its output into the
// diagnosis document, the report table and the reassigned VTA file.
// The committed read count is the number of distinct reads surviving
// subtraction, not the sample library size.
func (r *run) pathoscope(context.Context) error {
	hits, readCount, err := diagnose(diagnoseInput{
		vtaPath:        r.vtaPath(),
		reassignedPath: r.reassignedPath(),
		reportPath:     r.reportPath(),
		refLengths:     r.refLengths,
		otus:           r.task.OTUs,
		sequenceOTUMap: r.task.SequenceOTUMap,
	})
	if err != nil {
		return err
	}

	r.results.Ready = true
	r.results.ReadCount = readCount
	r.results.Diagnosis = hits
	return nil
}

func (r *run) importResults(ctx context.Context) error {
	fallback := paths.PathoscopeJSON(r.a.cfg.DataPath, r.task.AnalysisID, r.task.SampleID)

	if err := r.a.store.CommitResults(ctx, r.task.AnalysisID, r.results, fallback); err != nil {
		return err
	}

	return r.a.dispatcher.Dispatch(ctx, "analyses", "update", r.task.AnalysisID)
}

// cleanup removes the partial analysis directory and document after a
// failed run.
func (r *run) cleanup(ctx context.Context) error {
	if err := r.a.store.RemoveAnalysis(ctx, r.task.AnalysisID); err != nil {
		return err
	}

	if r.analysisPath != "" {
		if err := os.RemoveAll(r.analysisPath); err != nil {
			return err
		}
	}

	return r.a.dispatcher.Dispatch(ctx, "analyses", "delete", r.task.AnalysisID)
}
