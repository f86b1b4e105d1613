package browser

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/playwright-community/playwright-go"
)

const maxScrollSteps = 20

// RandomDelay waits a random duration in [min, max], or until ctx is done.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	return Sleep(ctx, jitter(min, max))
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min+1)
}

// ScrollToBottom scrolls in half-viewport steps until the viewport reaches
// the end of the document, pausing between steps so lazy-loaded cards can
// render, then jumps to the very bottom.
func ScrollToBottom(ctx context.Context, page playwright.Page, pause time.Duration) error {
	for i := 0; i < maxScrollSteps; i++ {
		atBottom, err := page.Evaluate(`() => {
			window.scrollBy(0, window.innerHeight / 2);
			return window.innerHeight + window.scrollY >= document.body.scrollHeight - 2;
		}`)
		if err != nil {
			return err
		}
		if err := RandomDelay(ctx, pause/2, pause); err != nil {
			return err
		}
		if done, _ := atBottom.(bool); done {
			break
		}
	}
	_, err := page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return err
}
