package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait is how long a loader collects keys before it calls the repository
const batchWait = 2 * time.Millisecond

// Loaders holds the request-scoped dataloaders
type Loaders struct {
	OwnerLoader *dataloader.Loader[string, *entities.Owner]
}

// NewLoaders creates a fresh set of loaders. Create one per request so cached
// results never leak between callers.
func NewLoaders(ownerRepo repositories.OwnerRepository) *Loaders {
	return &Loaders{
		OwnerLoader: dataloader.NewBatchedLoader(
			ownerBatch(ownerRepo),
			dataloader.WithWait[string, *entities.Owner](batchWait),
		),
	}
}

func ownerBatch(ownerRepo repositories.OwnerRepository) dataloader.BatchFunc[string, *entities.Owner] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Owner] {
		results := make([]*dataloader.Result[*entities.Owner], len(keys))
		owners, err := ownerRepo.GetByIDs(ctx, keys)

		ownerMap := make(map[string]*entities.Owner, len(owners))
		if err == nil {
			for _, o := range owners {
				if o != nil {
					ownerMap[o.ID] = o
				}
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[*entities.Owner]{Error: apperrors.NewEnrichmentError("owner lookup failed", err)}
			} else if o, ok := ownerMap[key]; ok {
				results[i] = &dataloader.Result[*entities.Owner]{Data: o}
			} else {
				results[i] = &dataloader.Result[*entities.Owner]{Error: apperrors.NewNotFoundError("owner " + key + " not found")}
			}
		}
		return results
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
