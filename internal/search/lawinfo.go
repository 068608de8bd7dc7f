package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kueblaw/belex/internal/api/belex"
)

// LawLookup is the part of the BELEX client the resolver needs.
type LawLookup interface {
	GetTextOfLaw(ctx context.Context, bsgNumber string) (*belex.TextOfLaw, error)
}

// LawResolver resolves BSG numbers to law display names, caching results so
// repeated searches over the same statutes don't hammer the BELEX API.
type LawResolver struct {
	client LawLookup
	cache  *expirable.LRU[string, string]
	logger *slog.Logger
}

// NewLawResolver creates a resolver whose cache entries expire after ttl.
func NewLawResolver(client LawLookup, ttl time.Duration, logger *slog.Logger) *LawResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LawResolver{
		client: client,
		cache:  expirable.NewLRU[string, string](256, nil, ttl),
		logger: logger,
	}
}

// LawName returns the display name for a BSG number, or an empty string when
// the lookup fails. Failures are logged but not cached; the caller keeps the
// raw document title either way.
func (r *LawResolver) LawName(ctx context.Context, bsgNumber string) string {
	if name, ok := r.cache.Get(bsgNumber); ok {
		return name
	}

	law, err := r.client.GetTextOfLaw(ctx, bsgNumber)
	if err != nil {
		r.logger.Debug("law lookup failed",
			slog.String("bsg_number", bsgNumber),
			slog.String("error", err.Error()),
		)
		return ""
	}

	name := law.DisplayName()
	r.cache.Add(bsgNumber, name)
	return name
}
