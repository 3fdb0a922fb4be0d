package auth

import (
	"context"
	"fmt"

	"codeassist/internal/catalog"
	"codeassist/pkg/logging"
)

func (o *Orchestrator) defaultModelID() string {
	return o.provider.DefaultModelID
}

// ConfigureDefaultModel selects the default model for both plan and act
// mode. If the catalog cannot be reached, the default id is applied without
// model info. If the catalog lacks the default, the first available model
// is used.
func (o *Orchestrator) ConfigureDefaultModel(ctx context.Context, session *Session) error {
	preferred := o.defaultModelID()

	models, err := o.fetchModels(ctx, session)
	if err != nil {
		o.deps.Notifier.Warning("Could not fetch models: %v. Using default model %s", err, preferred)
		return o.applyModel(ctx, preferred, nil)
	}

	id, info, err := catalog.SelectDefault(models, preferred)
	if err != nil {
		return err
	}
	if id != preferred {
		o.deps.Notifier.Warning("Default model %s not available, using %s", preferred, id)
	}
	return o.applyModel(ctx, id, info)
}

// Models lists the models available to the signed-in user together with the
// currently selected model id.
func (o *Orchestrator) Models(ctx context.Context) (catalog.Models, string, error) {
	if !o.IsAuthenticated(ctx) {
		return nil, "", ErrNotAuthenticated
	}

	session, err := o.sessionFromState(ctx)
	if err != nil {
		return nil, "", err
	}
	models, err := o.fetchModels(ctx, session)
	if err != nil {
		return nil, "", err
	}

	state, err := o.Status(ctx)
	if err != nil {
		return nil, "", err
	}
	return models, state.ModelID, nil
}

// ChangeModel switches to modelID, or asks the user to pick one when
// modelID is empty.
func (o *Orchestrator) ChangeModel(ctx context.Context, modelID string) error {
	models, current, err := o.Models(ctx)
	if err != nil {
		return err
	}

	if modelID == "" {
		if o.deps.Prompter == nil {
			return fmt.Errorf("no model given")
		}
		modelID, err = o.deps.Prompter.SelectModel(ctx, models.IDs(), current)
		if err != nil {
			return fmt.Errorf("model selection failed: %w", err)
		}
	}

	info, ok := models[modelID]
	if !ok {
		return fmt.Errorf("model %s not found", modelID)
	}
	return o.applyModel(ctx, modelID, info)
}

// sessionFromState rebuilds a session from the stored mode, asking the user
// when no mode is stored.
func (o *Orchestrator) sessionFromState(ctx context.Context) (*Session, error) {
	raw, err := o.deps.Store.GetLatestState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	mode, err := o.fields.GetModeFromState(raw)
	if err != nil {
		logging.Debug(loggerSubsystem, "Could not retrieve mode from state: %v", err)
		if o.deps.Prompter == nil {
			return nil, err
		}
		if mode, err = o.deps.Prompter.SelectMode(ctx); err != nil {
			return nil, err
		}
	}
	return NewSession(mode, ""), nil
}

func (o *Orchestrator) fetchModels(ctx context.Context, session *Session) (catalog.Models, error) {
	raw, err := o.deps.Store.GetLatestState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	state, err := o.fields.ParseProviderState(raw)
	if err != nil {
		return nil, err
	}
	if state.APIKey == "" {
		return nil, ErrNotAuthenticated
	}

	baseURL := state.BaseURL
	if baseURL == "" {
		baseURL = o.provider.Mode(session.Mode).BaseURL
	}

	logging.Debug(loggerSubsystem, "Fetching models (mode: %s)", session.Mode)
	return o.deps.Catalog.ListModels(ctx, baseURL, state.APIKey, requestID(session.ID, state.APIKey))
}

func (o *Orchestrator) applyModel(ctx context.Context, modelID string, info *catalog.ModelInfo) error {
	update := ProviderUpdatesPartial{ModelID: &modelID}
	if info != nil {
		update.ModelInfo = info.Settings()
	}
	if err := o.update(ctx, update, true); err != nil {
		return fmt.Errorf("failed to apply model %s: %w", modelID, err)
	}
	o.deps.Notifier.ModelSelected(modelID)
	return nil
}
