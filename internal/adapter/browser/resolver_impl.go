package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/linkcleaner-service/internal/repository"
	"github.com/user/linkcleaner-service/pkg/utils"
)

// RedirectResolver implements repository.LinkExtractor by actually navigating
// the input URL in a headless browser: redirect wrappers unwind on their own,
// and known tracking parameters are stripped from the final location.
type RedirectResolver struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
}

// NewRedirectResolver creates a browser-backed link extractor.
func NewRedirectResolver(pageLoadTimeout time.Duration) (*RedirectResolver, error) {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	return &RedirectResolver{
		allocatorPool: pool,
		timeout:       pageLoadTimeout,
	}, nil
}

// ExtractOriginalLink navigates rawURL and returns the final location with
// tracking parameters removed.
func (r *RedirectResolver) ExtractOriginalLink(ctx context.Context, rawURL string) (string, error) {
	allocCtx := r.allocatorPool.Get().(context.Context)
	defer r.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, r.timeout)
	defer cancel()

	// Count server-side redirect hops for logging.
	var hops int
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if req, ok := ev.(*network.EventRequestWillBeSent); ok && req.RedirectResponse != nil {
			hops++
		}
	})

	var finalURL string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return "", &repository.ExtractionError{
			Message: fmt.Sprintf("failed to resolve URL in browser: %v", err),
		}
	}

	cleaned := utils.StripTrackingParams(finalURL)
	slog.Info("Resolved URL in browser", "input", rawURL, "final", cleaned, "redirect_hops", hops)
	return cleaned, nil
}

var _ repository.LinkExtractor = (*RedirectResolver)(nil)
