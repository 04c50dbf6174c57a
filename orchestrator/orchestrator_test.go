package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/meysamhadeli/revai/gateway"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/history"
	"github.com/meysamhadeli/revai/project"
	"github.com/meysamhadeli/revai/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	calls   map[models.Kind]int
	results map[models.Kind]models.Result
	errs    map[models.Kind]error
	gates   map[models.Kind]chan struct{}
	fixed   *models.FixedContent
	fixErr  error
	fixGate chan struct{}
	fixes   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:   map[models.Kind]int{},
		results: map[models.Kind]models.Result{},
		errs:    map[models.Kind]error{},
		gates:   map[models.Kind]chan struct{}{},
	}
}

// hold makes calls for kind block until the returned func is called.
func (f *fakeGateway) hold(kind models.Kind) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[kind] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeGateway) Analyze(_ context.Context, kind models.Kind, _ project.Snapshot, _ models.Options) (models.Result, error) {
	f.mu.Lock()
	f.calls[kind]++
	gate := f.gates[kind]
	result, err := f.results[kind], f.errs[kind]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result, err
}

func (f *fakeGateway) ApplyFixes(_ context.Context, snapshot project.Snapshot, _ *models.Review, _ models.Options) (*models.FixedContent, error) {
	f.mu.Lock()
	f.fixes++
	gate := f.fixGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.fixErr != nil {
		return nil, f.fixErr
	}
	if f.fixed != nil {
		return f.fixed, nil
	}
	return &models.FixedContent{FileSet: snapshot.IsFileSet(), Code: "fixed"}, nil
}

func (f *fakeGateway) Chat(context.Context, []models.ChatMessage, string, string, models.Options) (string, error) {
	return "", nil
}

func (f *fakeGateway) count(kind models.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func review(score float64) models.Result {
	return models.Result{Kind: models.KindReview, Review: &models.Review{OverallScore: score, ExecutiveSummary: "ok"}}
}

func setup(t *testing.T) (*Orchestrator, *fakeGateway, *project.Input, *history.Store) {
	t.Helper()
	gw := newFakeGateway()
	input := project.NewInput(nil)
	hist := history.NewStore(storage.NewMemoryStore())
	return New(gw, input, hist, models.Options{Language: "typescript"}), gw, input, hist
}

func TestReview_SucceedsAndRecordsHistory(t *testing.T) {
	o, gw, input, hist := setup(t)
	gw.results[models.KindReview] = review(82)

	input.SetText("const x = 1")
	require.True(t, o.Start(context.Background(), models.KindReview))
	o.Wait()

	state := o.State(models.KindReview)
	assert.Equal(t, Succeeded, state.Status)
	assert.Equal(t, models.KindReview, o.View())

	items := hist.List(history.Query{})
	require.Len(t, items, 1)
	assert.Equal(t, 82.0, items[0].Score)
	assert.Equal(t, project.RawCode("const x = 1"), items[0].Snapshot)
}

func TestStart_GuardWhileRunning(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindSecurityAudit] = models.Result{Kind: models.KindSecurityAudit, Security: &models.SecurityAudit{SecurityScore: 70}}
	release := gw.hold(models.KindSecurityAudit)

	input.SetText("eval(userInput)")
	assert.True(t, o.Start(context.Background(), models.KindSecurityAudit))
	assert.False(t, o.Start(context.Background(), models.KindSecurityAudit))
	assert.Equal(t, Running, o.State(models.KindSecurityAudit).Status)

	release()
	o.Wait()
	assert.Equal(t, 1, gw.count(models.KindSecurityAudit))
	assert.Equal(t, Succeeded, o.State(models.KindSecurityAudit).Status)
	assert.Equal(t, models.KindSecurityAudit, o.View())
}

func TestReview_MalformedLeavesViewAndHistory(t *testing.T) {
	o, gw, input, hist := setup(t)
	gw.results[models.KindExplanation] = models.Result{Kind: models.KindExplanation, Explanation: &models.Explanation{Title: "t"}}
	gw.errs[models.KindReview] = gateway.ErrMalformedResponse

	input.SetText("const x = 1")
	require.True(t, o.Start(context.Background(), models.KindExplanation))
	o.Wait()
	require.Equal(t, models.KindExplanation, o.View())

	require.True(t, o.Start(context.Background(), models.KindReview))
	o.Wait()

	state := o.State(models.KindReview)
	assert.Equal(t, Failed, state.Status)
	assert.ErrorIs(t, state.Err, gateway.ErrMalformedResponse)
	assert.ErrorIs(t, o.LastError(), gateway.ErrMalformedResponse)
	assert.Equal(t, models.KindExplanation, o.View())
	assert.Zero(t, hist.Len())
}

func TestStart_EmptyInputIsNoop(t *testing.T) {
	o, gw, input, _ := setup(t)
	assert.False(t, o.Start(context.Background(), models.KindReview))
	input.SetText("   ")
	assert.False(t, o.Start(context.Background(), models.KindGrowth))
	assert.False(t, o.Start(context.Background(), models.KindChat))
	o.Wait()
	assert.Zero(t, gw.count(models.KindReview))
	assert.Equal(t, Idle, o.State(models.KindReview).Status)
}

func TestKinds_RunIndependently(t *testing.T) {
	o, gw, input, hist := setup(t)
	gw.results[models.KindReview] = review(90)
	gw.results[models.KindGrowth] = models.Result{Kind: models.KindGrowth, Growth: &models.GrowthSuggestions{VisionStatement: "v"}}
	gw.errs[models.KindPerformanceAudit] = errors.New("timeout")
	releaseReview := gw.hold(models.KindReview)

	input.SetText("for (;;) {}")
	require.True(t, o.Start(context.Background(), models.KindReview))
	require.True(t, o.Start(context.Background(), models.KindGrowth))
	require.True(t, o.Start(context.Background(), models.KindPerformanceAudit))

	releaseReview()
	o.Wait()

	assert.Equal(t, Succeeded, o.State(models.KindReview).Status)
	assert.Equal(t, Succeeded, o.State(models.KindGrowth).Status)
	assert.Equal(t, Failed, o.State(models.KindPerformanceAudit).Status)
	assert.Equal(t, 1, hist.Len())
}

func TestSettle_DiscardsStaleSnapshot(t *testing.T) {
	o, gw, input, hist := setup(t)
	gw.results[models.KindReview] = review(50)
	release := gw.hold(models.KindReview)

	input.SetText("v1")
	require.True(t, o.Start(context.Background(), models.KindReview))
	input.SetText("v2")
	release()
	o.Wait()

	assert.Equal(t, Idle, o.State(models.KindReview).Status)
	assert.Zero(t, hist.Len())
	assert.Empty(t, o.View())
}

func TestReset_ClearsEverythingAndDropsInFlight(t *testing.T) {
	o, gw, input, hist := setup(t)
	gw.results[models.KindReview] = review(60)
	gw.results[models.KindExplanation] = models.Result{Kind: models.KindExplanation, Explanation: &models.Explanation{}}

	input.SetText("a")
	require.True(t, o.Start(context.Background(), models.KindReview))
	o.Wait()
	require.True(t, o.StartFix(context.Background()))
	o.Wait()
	require.NotNil(t, o.Fixed())

	release := gw.hold(models.KindExplanation)
	require.True(t, o.Start(context.Background(), models.KindExplanation))
	o.Reset()
	assert.Equal(t, Idle, o.State(models.KindExplanation).Status)

	release()
	o.Wait()

	for _, k := range models.AnalysisKinds {
		assert.Equal(t, Idle, o.State(k).Status, k)
	}
	assert.Nil(t, o.Fixed())
	assert.Empty(t, o.View())
	assert.True(t, input.Snapshot().IsEmpty())
	assert.Equal(t, 1, hist.Len())
}

func TestAcquisition_ClearsDerivedState(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindReview] = review(70)
	gw.results[models.KindGrowth] = models.Result{Kind: models.KindGrowth, Growth: &models.GrowthSuggestions{}}

	input.SetText("a")
	o.Start(context.Background(), models.KindReview)
	o.Start(context.Background(), models.KindGrowth)
	o.Wait()
	require.True(t, o.StartFix(context.Background()))
	o.Wait()

	input.Upload([]project.Candidate{{Name: "b.go", RelativePath: "b.go", Size: 3, Read: func() ([]byte, error) { return []byte("x:1"), nil }}})

	assert.Nil(t, o.Fixed())
	assert.Equal(t, Idle, o.State(models.KindGrowth).Status)
	assert.Equal(t, Succeeded, o.State(models.KindReview).Status)
}

func TestFix_GatedOnCurrentReview(t *testing.T) {
	o, gw, input, _ := setup(t)
	input.SetText("a")
	assert.False(t, o.StartFix(context.Background()))

	gw.results[models.KindReview] = review(40)
	o.Start(context.Background(), models.KindReview)
	o.Wait()

	input.SetText("b")
	assert.False(t, o.StartFix(context.Background()))
	o.Wait()
	assert.Zero(t, gw.fixes)
}

func TestFix_ShapeAndGuard(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindReview] = review(40)
	gw.fixGate = make(chan struct{})
	gw.fixed = &models.FixedContent{FileSet: true, Files: []models.FixedFile{{Path: "a.go", Content: "package a"}}}

	input.Upload([]project.Candidate{{Name: "a.go", RelativePath: "a.go", Size: 9, Read: func() ([]byte, error) { return []byte("package b"), nil }}})
	o.Start(context.Background(), models.KindReview)
	o.Wait()

	require.True(t, o.StartFix(context.Background()))
	assert.True(t, o.FixRunning())
	assert.False(t, o.StartFix(context.Background()))
	close(gw.fixGate)
	o.Wait()

	assert.False(t, o.FixRunning())
	assert.Equal(t, 1, gw.fixes)
	require.NotNil(t, o.Fixed())
	assert.True(t, o.Fixed().FileSet)
}

func TestFix_FailureSurfacesInSharedSlot(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindReview] = review(40)
	gw.fixErr = errors.New("quota")

	input.SetText("a")
	o.Start(context.Background(), models.KindReview)
	o.Wait()
	require.True(t, o.StartFix(context.Background()))
	o.Wait()

	assert.False(t, o.FixRunning())
	assert.Nil(t, o.Fixed())
	assert.ErrorContains(t, o.LastError(), "quota")

	o.ClearError()
	assert.NoError(t, o.LastError())
}

func TestRestore_ReplaysHistoryItem(t *testing.T) {
	o, gw, input, hist := setup(t)
	snap := project.FileSet([]project.ProjectFile{{Name: "a.ts", Path: "src/a.ts", Content: "let a"}})
	perf := models.Result{Kind: models.KindPerformanceAudit, Performance: &models.PerformanceAudit{PerformanceScore: 55}}
	item, err := hist.Append(snap, perf)
	require.NoError(t, err)

	input.SetText("something else")
	gotSnap, gotResult, err := hist.Restore(item.ID)
	require.NoError(t, err)
	require.NoError(t, o.Restore(gotSnap, gotResult))

	assert.Equal(t, snap, input.Snapshot())
	result, ok := o.Result(models.KindPerformanceAudit)
	require.True(t, ok)
	assert.Equal(t, perf, result)
	assert.Equal(t, models.KindPerformanceAudit, o.View())
	assert.Zero(t, gw.count(models.KindPerformanceAudit))
	assert.Equal(t, 1, hist.Len())
}

func TestRestore_RejectsInvalidResult(t *testing.T) {
	o, _, _, _ := setup(t)
	assert.Error(t, o.Restore(project.RawCode("a"), models.Result{Kind: models.KindReview}))
}

func TestWorkspace_RoundTrip(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindReview] = review(77)
	input.SetText("const a = 1")
	o.Start(context.Background(), models.KindReview)
	o.Wait()
	require.True(t, o.StartFix(context.Background()))
	o.Wait()

	ws := o.Workspace()

	o2, _, input2, _ := setup(t)
	o2.Hydrate(ws)
	assert.Equal(t, input.Snapshot(), input2.Snapshot())
	result, ok := o2.Result(models.KindReview)
	require.True(t, ok)
	assert.Equal(t, 77.0, result.Review.OverallScore)
	assert.Equal(t, models.KindReview, o2.View())
	require.NotNil(t, o2.Fixed())
	assert.Equal(t, "fixed", o2.Fixed().Code)

	// the hydrated review gates fixes for the hydrated input
	assert.True(t, o2.StartFix(context.Background()))
	o2.Wait()
}

func TestStart_ClearsSharedError(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.errs[models.KindReview] = gateway.ErrTransport

	input.SetText("const x = 1")
	require.True(t, o.Start(context.Background(), models.KindReview))
	o.Wait()
	require.Error(t, o.LastError())

	delete(gw.errs, models.KindReview)
	gw.results[models.KindGrowth] = models.Result{Kind: models.KindGrowth, Growth: &models.GrowthSuggestions{VisionStatement: "v"}}
	require.True(t, o.Start(context.Background(), models.KindGrowth))
	assert.NoError(t, o.LastError())
	o.Wait()
	assert.Equal(t, Failed, o.State(models.KindReview).Status)
}

func TestReReview_DropsFixEvenWhenItFails(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindReview] = review(40)

	input.SetText("a")
	require.True(t, o.Start(context.Background(), models.KindReview))
	o.Wait()
	require.True(t, o.StartFix(context.Background()))
	o.Wait()
	require.NotNil(t, o.Fixed())

	gw.errs[models.KindReview] = gateway.ErrTransport
	require.True(t, o.Start(context.Background(), models.KindReview))
	assert.Nil(t, o.Fixed())
	o.Wait()

	assert.Equal(t, Failed, o.State(models.KindReview).Status)
	assert.Nil(t, o.Fixed())
	assert.False(t, o.FixRunning())
}

func TestReReview_DiscardsInFlightFix(t *testing.T) {
	o, gw, input, _ := setup(t)
	gw.results[models.KindReview] = review(40)

	input.SetText("a")
	require.True(t, o.Start(context.Background(), models.KindReview))
	o.Wait()

	gw.fixGate = make(chan struct{})
	require.True(t, o.StartFix(context.Background()))
	require.True(t, o.Start(context.Background(), models.KindReview))
	assert.False(t, o.FixRunning())
	close(gw.fixGate)
	o.Wait()

	assert.Nil(t, o.Fixed())
	assert.Equal(t, Succeeded, o.State(models.KindReview).Status)
}
