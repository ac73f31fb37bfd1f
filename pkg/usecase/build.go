package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// dispatchCI notifies the workflow actor when a CI run finishes with a
// non-success conclusion. Successful runs are silent.
func (uc *UseCases) dispatchCI(ctx context.Context, p *model.Payload) error {
	if p.WorkflowRun == nil {
		return goerr.Wrap(ErrInvalidPayload, "missing workflow run object")
	}

	owner, repo := uc.repoCoords(p)

	run := p.WorkflowRun
	if run.Actor == nil || run.Actor.Login == "" {
		fetched, err := uc.github.WorkflowRun(ctx, owner, repo, run.ID)
		if err != nil {
			return err
		}
		run = fetched
	}

	if run.Conclusion == "" || run.Conclusion == "success" {
		logging.From(ctx).Info("workflow run needs no notification",
			"run_id", run.ID,
			"conclusion", run.Conclusion,
		)
		return nil
	}

	if run.Actor == nil || run.Actor.Login == "" {
		logging.From(ctx).Info("workflow run has no actor, nothing to notify",
			"run_id", run.ID,
		)
		return nil
	}

	text := workflowText(uc.repoFullName(p), run)
	return uc.notify(ctx, []types.GitHubLogin{run.Actor.Login}, text)
}

// dispatchDeploy notifies the deployment creator's team channel about a
// deployment and its current state
func (uc *UseCases) dispatchDeploy(ctx context.Context, p *model.Payload) error {
	if p.Deployment == nil {
		return goerr.Wrap(ErrInvalidPayload, "missing deployment object")
	}

	var creator types.GitHubLogin
	if p.Deployment.Creator != nil {
		creator = p.Deployment.Creator.Login
	}
	if creator == "" {
		return goerr.Wrap(ErrInvalidPayload, "missing deployment creator")
	}

	state := "created"
	if p.DeploymentStatus != nil && p.DeploymentStatus.State != "" {
		state = p.DeploymentStatus.State
	}

	text := deployText(uc.repoFullName(p), p.Deployment, state)
	return uc.notify(ctx, []types.GitHubLogin{creator}, text)
}
