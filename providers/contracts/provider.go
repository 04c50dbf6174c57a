package contracts

import (
	"context"

	"github.com/meysamhadeli/revai/providers/models"
)

// IModelProvider is the transport to one generative model backend.
type IModelProvider interface {
	Generate(ctx context.Context, request models.GenerateRequest) (models.GenerateResponse, error)
}
