package contracts

import (
	"context"

	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/project"
)

// IAnalysisGateway is the single seam between a project snapshot and the model.
type IAnalysisGateway interface {
	Analyze(ctx context.Context, kind models.Kind, snapshot project.Snapshot, opts models.Options) (models.Result, error)
	ApplyFixes(ctx context.Context, snapshot project.Snapshot, review *models.Review, opts models.Options) (*models.FixedContent, error)
	Chat(ctx context.Context, history []models.ChatMessage, utterance string, projectContext string, opts models.Options) (string, error)
}
