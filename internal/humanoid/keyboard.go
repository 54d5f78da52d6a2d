// internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// modifierKeys lists the modifier key names in press order.
var modifierKeys = []struct {
	mod  schemas.KeyModifier
	name string
}{
	{schemas.ModCtrl, "ctrl"},
	{schemas.ModAlt, "alt"},
	{schemas.ModShift, "shift"},
	{schemas.ModMeta, "meta"},
}

// SendHotkey presses the modifiers, taps key and releases the modifiers in
// reverse order. Keys already pressed are released even if a later step fails.
func (h *Humanoid) SendHotkey(ctx context.Context, key string, mods schemas.KeyModifier, window schemas.WindowTarget) (err error) {
	if key == "" {
		return fmt.Errorf("humanoid: empty key")
	}

	var held []string
	defer func() {
		release := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if upErr := h.driver.KeyUp(release, held[i], window); upErr != nil && err == nil {
				err = fmt.Errorf("humanoid: key up %s: %w", held[i], upErr)
			}
		}
	}()

	for _, m := range modifierKeys {
		if !mods.Has(m.mod) {
			continue
		}
		if err := h.keyDown(ctx, m.name, window); err != nil {
			return err
		}
		held = append(held, m.name)
	}

	if err := h.keyDown(ctx, key, window); err != nil {
		return err
	}
	held = append(held, key)

	h.logger.Debug("Sending hotkey", zap.String("key", key), zap.Stringer("modifiers", mods))
	return h.driver.Sleep(ctx, time.Duration(h.cfg.KeyHoldMs)*time.Millisecond)
}

func (h *Humanoid) keyDown(ctx context.Context, key string, window schemas.WindowTarget) error {
	if err := h.paced(ctx, func() error { return h.driver.KeyDown(ctx, key, window) }); err != nil {
		return fmt.Errorf("humanoid: key down %s: %w", key, err)
	}
	return nil
}
