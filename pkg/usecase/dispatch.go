package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// Dispatch routes one inbound event through its kind-specific pipeline.
// Validation failures and unknown kinds are terminal for the event; recipient
// and channel level failures are isolated further down the pipeline.
func (uc *UseCases) Dispatch(ctx context.Context, kind types.EventKind, p *model.Payload) error {
	logger := logging.From(ctx).With("kind", kind)
	ctx = logging.With(ctx, logger)

	if p == nil || p.Repository == nil || p.Repository.Name == "" {
		return goerr.Wrap(ErrInvalidPayload, "missing repository", goerr.V("kind", kind))
	}

	switch kind {
	case types.EventComment:
		return uc.dispatchComment(ctx, p)

	case types.EventApprove, types.EventChangesRequested:
		return uc.dispatchReview(ctx, kind, p)

	case types.EventReviewRequested:
		return uc.dispatchReviewRequest(ctx, p)

	case types.EventSchedule:
		return uc.dispatchSchedule(ctx, p)

	case types.EventDeploy:
		return uc.dispatchDeploy(ctx, p)

	case types.EventCI:
		return uc.dispatchCI(ctx, p)

	default:
		return goerr.Wrap(ErrUnknownEventKind, "cannot dispatch event",
			goerr.V("kind", kind),
			goerr.V("supported", types.SupportedEventKinds()),
		)
	}
}
