package browser

import (
	"context"
	"errors"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Settle waits for the network-idle signal and then the fixed settle delay.
// A network-idle timeout is tolerated: busy pages never go fully idle.
func Settle(ctx context.Context, page playwright.Page, delay time.Duration) error {
	err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
	if err != nil && !errors.Is(err, playwright.ErrTimeout) {
		return err
	}
	return Sleep(ctx, delay)
}
