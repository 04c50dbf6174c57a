package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/meysamhadeli/revai/gateway/contracts"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/history"
	"github.com/meysamhadeli/revai/project"
	"github.com/sirupsen/logrus"
)

// Recorder receives successful review and audit results.
type Recorder interface {
	Append(snapshot project.Snapshot, result models.Result) (history.Item, error)
}

// Orchestrator runs one independent pipeline per analysis kind against the shared input.
type Orchestrator struct {
	gateway  contracts.IAnalysisGateway
	input    *project.Input
	recorder Recorder

	mu        sync.Mutex
	opts      models.Options
	pipelines map[models.Kind]*pipeline
	fix       fixPipeline
	view      models.Kind
	lastErr   error

	wg sync.WaitGroup
}

// New wires the orchestrator to input changes. recorder may be nil.
func New(gw contracts.IAnalysisGateway, input *project.Input, recorder Recorder, opts models.Options) *Orchestrator {
	o := &Orchestrator{
		gateway:   gw,
		input:     input,
		recorder:  recorder,
		opts:      opts,
		pipelines: make(map[models.Kind]*pipeline, len(models.AnalysisKinds)),
	}
	for _, k := range models.AnalysisKinds {
		o.pipelines[k] = &pipeline{}
	}
	input.OnChange(o.onInputChange)
	return o
}

// Start dispatches kind against the current snapshot. It returns false without dispatching
// when the snapshot is empty or kind is already running.
func (o *Orchestrator) Start(ctx context.Context, kind models.Kind) bool {
	if !kind.IsAnalysis() {
		return false
	}
	snapshot, id := o.input.Current()
	if snapshot.IsEmpty() {
		logrus.WithField("kind", kind).Debug("ignored: no input")
		return false
	}

	o.mu.Lock()
	p := o.pipelines[kind]
	if p.status == Running {
		o.mu.Unlock()
		logrus.WithField("kind", kind).Debug("ignored: already running")
		return false
	}
	p.clear()
	p.status = Running
	p.seq++
	p.identity = id
	seq := p.seq
	o.lastErr = nil
	if kind == models.KindReview {
		// A fix belongs to the review it was applied from.
		o.fix.seq++
		o.fix.running = false
		o.fix.content = nil
	}
	opts := o.opts
	o.mu.Unlock()

	logrus.WithFields(logrus.Fields{"kind": kind, "input": snapshot.Label()}).Info("analysis started")

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		result, err := o.gateway.Analyze(ctx, kind, snapshot, opts)
		o.settle(kind, seq, id, snapshot, result, err)
	}()
	return true
}

func (o *Orchestrator) settle(kind models.Kind, seq uint64, id project.Identity, snapshot project.Snapshot, result models.Result, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p := o.pipelines[kind]
	log := logrus.WithField("kind", kind)
	if p.seq != seq {
		log.Warn("discarding response for a reset pipeline")
		return
	}
	if id != o.input.Identity() {
		log.Warn("discarding response for a stale snapshot")
		p.clear()
		return
	}

	if err != nil {
		p.status = Failed
		p.err = err
		o.lastErr = fmt.Errorf("%s failed: %w", kind, err)
		log.WithError(err).Error("analysis failed")
		return
	}

	p.status = Succeeded
	p.result = result
	o.view = kind
	if kind.Recorded() && o.recorder != nil {
		if _, err := o.recorder.Append(snapshot, result); err != nil {
			log.WithError(err).Warn("failed to record history")
		}
	}
	log.Info("analysis succeeded")
}

// StartFix applies the current review to the snapshot it was made against. It is a no-op
// without a succeeded review for the current input, or while a fix is running.
func (o *Orchestrator) StartFix(ctx context.Context) bool {
	snapshot, id := o.input.Current()
	if snapshot.IsEmpty() {
		return false
	}

	o.mu.Lock()
	review := o.pipelines[models.KindReview]
	if review.status != Succeeded || review.result.Review == nil || review.identity != id || o.fix.running {
		o.mu.Unlock()
		logrus.Debug("ignored fix: no current review or fix already running")
		return false
	}
	o.fix.running = true
	o.fix.content = nil
	o.lastErr = nil
	o.fix.seq++
	o.fix.identity = id
	seq := o.fix.seq
	reviewResult := review.result.Review
	opts := o.opts
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		fixed, err := o.gateway.ApplyFixes(ctx, snapshot, reviewResult, opts)
		o.settleFix(seq, id, fixed, err)
	}()
	return true
}

func (o *Orchestrator) settleFix(seq uint64, id project.Identity, fixed *models.FixedContent, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fix.seq != seq || id != o.input.Identity() {
		logrus.Warn("discarding stale fix response")
		if o.fix.seq == seq {
			o.fix.running = false
		}
		return
	}
	o.fix.running = false
	if err != nil {
		o.lastErr = fmt.Errorf("%s failed: %w", models.KindFix, err)
		logrus.WithError(err).Error("fix application failed")
		return
	}
	o.fix.content = fixed
	logrus.WithField("files", len(fixed.Files)).Info("fix applied")
}

// Restore replays a stored result as if it had just completed. The model is not called.
func (o *Orchestrator) Restore(snapshot project.Snapshot, result models.Result) error {
	if !result.Kind.IsAnalysis() || !result.Valid() {
		return fmt.Errorf("cannot restore a %s result", result.Kind)
	}
	o.input.Replace(snapshot)
	id := o.input.Identity()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.install(result, id)
	o.view = result.Kind
	return nil
}

// Hydrate reinstalls a saved workspace.
func (o *Orchestrator) Hydrate(ws Workspace) {
	o.input.Replace(ws.Snapshot)
	id := o.input.Identity()

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range ws.Results {
		if r.Kind.IsAnalysis() && r.Valid() {
			o.install(r, id)
		}
	}
	if ws.Fixed != nil && ws.Fixed.FileSet == ws.Snapshot.IsFileSet() {
		o.fix.content = ws.Fixed
		o.fix.identity = id
	}
	o.view = ws.View
}

func (o *Orchestrator) install(result models.Result, id project.Identity) {
	p := o.pipelines[result.Kind]
	p.seq++
	p.status = Succeeded
	p.result = result
	p.err = nil
	p.identity = id
}

// Workspace captures the snapshot, settled results and view for persistence.
func (o *Orchestrator) Workspace() Workspace {
	snapshot := o.input.Snapshot()

	o.mu.Lock()
	defer o.mu.Unlock()
	ws := Workspace{Snapshot: snapshot, Fixed: o.fix.content, View: o.view}
	for _, k := range models.AnalysisKinds {
		if p := o.pipelines[k]; p.status == Succeeded {
			ws.Results = append(ws.Results, p.result)
		}
	}
	return ws
}

// Reset clears the input and, through the change listener, every derived state.
func (o *Orchestrator) Reset() {
	o.input.Reset()
}

func (o *Orchestrator) onInputChange(_ project.Identity, change project.ChangeKind) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fix.seq++
	o.fix.running = false
	o.fix.content = nil

	switch change {
	case project.ChangeReset, project.ChangeReplace:
		for _, p := range o.pipelines {
			p.seq++
			p.clear()
		}
		o.view = ""
		if change == project.ChangeReset {
			o.lastErr = nil
		}
	default:
		for _, k := range []models.Kind{models.KindExplanation, models.KindGrowth} {
			if p := o.pipelines[k]; p.status != Running {
				p.clear()
			}
		}
	}
}

// Wait blocks until every dispatched request has settled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) State(kind models.Kind) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.pipelines[kind]
	if !ok {
		return State{Kind: kind}
	}
	return State{Kind: kind, Status: p.status, Result: p.result, Err: p.err, Identity: p.identity}
}

// Result returns the settled result for kind, if any.
func (o *Orchestrator) Result(kind models.Kind) (models.Result, bool) {
	s := o.State(kind)
	return s.Result, s.Status == Succeeded
}

func (o *Orchestrator) Fixed() *models.FixedContent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fix.content
}

func (o *Orchestrator) FixRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fix.running
}

// View is the kind whose result was shown last, or "" when nothing is shown.
func (o *Orchestrator) View() models.Kind {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// LastError is the shared error slot, overwritten by the most recent failure of any kind.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	o.lastErr = nil
	o.mu.Unlock()
}

func (o *Orchestrator) SetOptions(opts models.Options) {
	o.mu.Lock()
	o.opts = opts
	o.mu.Unlock()
}
