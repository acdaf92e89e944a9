// package destinations defines the Destination interface for broadcast platforms
//
// Mixcloud, Radio.co
package destinations

import (
	"context"
	"net/http"

	"github.com/desertthunder/setcast/internal/models"
	"golang.org/x/time/rate"
)

// Destination encapsulates one platform's multi-step upload protocol and
// its metadata shape. Implementations build platform metadata from the
// canonical Songlist without I/O, then perform the upload steps; any step's
// non-success response aborts the remaining steps for that destination,
// reported as a single [models.DestinationResult].
type Destination interface {
	// Name returns the destination key used in status detail maps and
	// metadata destination lists (e.g., "mixcloud").
	Name() string

	// Upload runs the platform's upload protocol for one audio file and its
	// songlist. It never returns an error: every outcome, including
	// failures, is folded into the DestinationResult.
	Upload(ctx context.Context, audioPath string, list *models.Songlist) models.DestinationResult
}

// Order is the fixed invocation order for known destinations. Uploads run
// strictly sequentially in this order so per-destination log ordering and
// partial-failure status stay deterministic.
var Order = []string{"mixcloud", "radioco"}

// Registry holds the configured destination adapters.
type Registry struct {
	byName map[string]Destination
}

// NewRegistry creates a Registry from the given adapters.
func NewRegistry(dests ...Destination) *Registry {
	r := &Registry{byName: make(map[string]Destination, len(dests))}
	for _, d := range dests {
		r.byName[d.Name()] = d
	}
	return r
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Destination, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Supported reports whether a destination name is currently registered.
func (r *Registry) Supported(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Known returns the registered destination names in fixed declared order.
// The status detail map enumerates exactly this set for every upload.
func (r *Registry) Known() []string {
	var names []string
	for _, name := range Order {
		if r.Supported(name) {
			names = append(names, name)
		}
	}
	return names
}

// Client is a rate-limited HTTP client shared by destination adapters so a
// burst of uploads cannot trip platform rate limits.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient wraps httpClient with a requests-per-second limit. A nil
// httpClient falls back to [http.DefaultClient].
func NewClient(httpClient *http.Client, rps float64) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if rps <= 0 {
		rps = 5.0
	}
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Do waits for rate-limit headroom, then performs the request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
