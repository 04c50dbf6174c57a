package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/meysamhadeli/revai/gateway/contracts"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/project"
	providercontracts "github.com/meysamhadeli/revai/providers/contracts"
	pm "github.com/meysamhadeli/revai/providers/models"
	"github.com/sirupsen/logrus"
)

var temperatures = map[models.Kind]float32{
	models.KindReview:           0.1,
	models.KindSecurityAudit:    0.1,
	models.KindPerformanceAudit: 0.1,
	models.KindExplanation:      0.2,
	models.KindGrowth:           0.7,
	models.KindFix:              0.1,
	models.KindChat:             0.5,
}

// Gateway builds requests per analysis kind and enforces the response shape.
type Gateway struct {
	provider providercontracts.IModelProvider
}

// NewGateway wraps a model provider.
func NewGateway(provider providercontracts.IModelProvider) contracts.IAnalysisGateway {
	return &Gateway{provider: provider}
}

func (g *Gateway) Review(ctx context.Context, snapshot project.Snapshot, opts models.Options) (*models.Review, error) {
	out := &models.Review{}
	if err := g.structured(ctx, models.KindReview, snapshot, reviewSchema(), opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) SecurityAudit(ctx context.Context, snapshot project.Snapshot, opts models.Options) (*models.SecurityAudit, error) {
	out := &models.SecurityAudit{}
	if err := g.structured(ctx, models.KindSecurityAudit, snapshot, securitySchema(), opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) PerformanceAudit(ctx context.Context, snapshot project.Snapshot, opts models.Options) (*models.PerformanceAudit, error) {
	out := &models.PerformanceAudit{}
	if err := g.structured(ctx, models.KindPerformanceAudit, snapshot, performanceSchema(), opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) Explain(ctx context.Context, snapshot project.Snapshot, opts models.Options) (*models.Explanation, error) {
	out := &models.Explanation{}
	if err := g.structured(ctx, models.KindExplanation, snapshot, explanationSchema(), opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) SuggestGrowth(ctx context.Context, snapshot project.Snapshot, opts models.Options) (*models.GrowthSuggestions, error) {
	out := &models.GrowthSuggestions{}
	if err := g.structured(ctx, models.KindGrowth, snapshot, growthSchema(), opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Analyze dispatches to the typed operation for kind and wraps the result.
func (g *Gateway) Analyze(ctx context.Context, kind models.Kind, snapshot project.Snapshot, opts models.Options) (models.Result, error) {
	result := models.Result{Kind: kind}
	var err error
	switch kind {
	case models.KindReview:
		result.Review, err = g.Review(ctx, snapshot, opts)
	case models.KindSecurityAudit:
		result.Security, err = g.SecurityAudit(ctx, snapshot, opts)
	case models.KindPerformanceAudit:
		result.Performance, err = g.PerformanceAudit(ctx, snapshot, opts)
	case models.KindExplanation:
		result.Explanation, err = g.Explain(ctx, snapshot, opts)
	case models.KindGrowth:
		result.Growth, err = g.SuggestGrowth(ctx, snapshot, opts)
	default:
		return models.Result{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return models.Result{}, err
	}
	return result, nil
}

// ApplyFixes asks for corrected code in the same shape as snapshot:
// raw code yields Code, a file set yields Files.
func (g *Gateway) ApplyFixes(ctx context.Context, snapshot project.Snapshot, review *models.Review, opts models.Options) (*models.FixedContent, error) {
	if snapshot.IsEmpty() {
		return nil, ErrEmptyInput
	}
	if review == nil {
		return nil, fmt.Errorf("apply fixes: review is required")
	}
	fileSet := snapshot.IsFileSet()
	system, err := instruction(models.KindFix, opts, map[string]any{"fileSet": fileSet})
	if err != nil {
		return nil, err
	}
	payload, err := fixPayload(snapshot, review)
	if err != nil {
		return nil, err
	}

	text, err := g.generate(ctx, models.KindFix, pm.GenerateRequest{
		SystemInstruction: system,
		Contents:          []pm.Content{{Role: pm.RoleUser, Text: payload}},
		Schema:            fixSchema(fileSet),
		Temperature:       temperatures[models.KindFix],
	})
	if err != nil {
		return nil, err
	}

	// The shape flag comes from the snapshot, never from the reply.
	var wire struct {
		Code  string             `json:"fixedCode"`
		Files []models.FixedFile `json:"fixedFiles"`
	}
	if err := decodeStrict(text, fixSchema(fileSet), &wire); err != nil {
		return nil, err
	}
	out := &models.FixedContent{FileSet: fileSet}
	if fileSet {
		out.Files = wire.Files
		if out.Files == nil {
			out.Files = []models.FixedFile{}
		}
	} else {
		out.Code = wire.Code
	}
	return out, nil
}

// Chat runs one stateless conversational turn. The full history is replayed on every call.
func (g *Gateway) Chat(ctx context.Context, history []models.ChatMessage, utterance string, projectContext string, opts models.Options) (string, error) {
	if projectContext == "" {
		projectContext = NoProjectContext
	}
	system, err := instruction(models.KindChat, opts, map[string]any{"context": projectContext})
	if err != nil {
		return "", err
	}

	contents := make([]pm.Content, 0, len(history)+1)
	for _, m := range history {
		role := pm.RoleUser
		if m.Role == models.ChatRoleAssistant {
			role = pm.RoleModel
		}
		contents = append(contents, pm.Content{Role: role, Text: m.Text})
	}
	contents = append(contents, pm.Content{Role: pm.RoleUser, Text: utterance})

	return g.generate(ctx, models.KindChat, pm.GenerateRequest{
		SystemInstruction: system,
		Contents:          contents,
		Temperature:       temperatures[models.KindChat],
	})
}

func (g *Gateway) structured(ctx context.Context, kind models.Kind, snapshot project.Snapshot, schema *pm.Schema, opts models.Options, out any) error {
	if snapshot.IsEmpty() {
		return ErrEmptyInput
	}
	system, err := instruction(kind, opts, nil)
	if err != nil {
		return err
	}
	text, err := g.generate(ctx, kind, pm.GenerateRequest{
		SystemInstruction: system,
		Contents:          []pm.Content{{Role: pm.RoleUser, Text: Payload(snapshot)}},
		Schema:            schema,
		Temperature:       temperatures[kind],
	})
	if err != nil {
		return err
	}
	if err := decodeStrict(text, schema, out); err != nil {
		logrus.WithField("kind", kind).WithError(err).Warn("rejected model response")
		return err
	}
	return nil
}

func (g *Gateway) generate(ctx context.Context, kind models.Kind, request pm.GenerateRequest) (string, error) {
	start := time.Now()
	resp, err := g.provider.Generate(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	logrus.WithFields(logrus.Fields{
		"kind":     kind,
		"elapsed":  time.Since(start).Round(time.Millisecond),
		"tokens":   resp.InputTokens + resp.OutputTokens,
		"response": len(resp.Text),
	}).Debug("model call finished")
	return resp.Text, nil
}
