package app

import (
	"errors"
	"fmt"
	"log"

	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/drag"
	"github.com/ayusman/gayaku/internal/store"
)

// restoreSettings applies what the previous run saved. Missing or unreadable
// entries keep the configured defaults.
func (a *App) restoreSettings() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()

	var fit customize.State
	if err := settings.GetJSON(store.SettingCustomization, &fit); err == nil {
		a.session.RestoreCustomization(fit)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Ignoring saved customization: %v", err)
	}

	var enabled bool
	if err := settings.GetJSON(store.SettingGestureEnabled, &enabled); err == nil {
		a.session.SetGestureEnabled(enabled)
	}

	var policy drag.Policy
	if err := settings.GetJSON(store.SettingDragPolicy, &policy); err == nil {
		a.session.SetDragPolicy(policy)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Ignoring saved drag policy: %v", err)
	}

	if id, err := settings.Get(store.SettingSelectedAsset); err == nil {
		if id == "" {
			a.session.ClearSelection()
		} else if err := a.session.Select(id); err != nil {
			log.Printf("Saved selection %q no longer in catalog", id)
		}
	}
}

// SaveSettings persists the customization, gesture mode, drag policy and
// selection.
func (a *App) SaveSettings() error {
	if a.config.Store == nil {
		return nil
	}
	settings := a.config.Store.Settings()

	if err := a.saveCustomization(); err != nil {
		return err
	}
	if err := settings.SetJSON(store.SettingGestureEnabled, a.session.GestureEnabled()); err != nil {
		return fmt.Errorf("failed to save gesture mode: %w", err)
	}
	if err := settings.SetJSON(store.SettingDragPolicy, a.session.DragPolicy()); err != nil {
		return fmt.Errorf("failed to save drag policy: %w", err)
	}

	selected := ""
	if asset, ok := a.session.Selected(); ok {
		selected = asset.ID
	}
	if err := settings.Set(store.SettingSelectedAsset, selected); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

func (a *App) saveCustomization() error {
	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Settings().SetJSON(store.SettingCustomization, a.session.Customization()); err != nil {
		return fmt.Errorf("failed to save customization: %w", err)
	}
	return nil
}
