package ai

import (
	"context"

	"placepilot/internal/places"
)

// Provider is the contract for turning free text into the structured
// fields each conversation step needs. Implementations are stateless per
// call; merging results across turns is the caller's responsibility.
//
// Parse methods degrade instead of escalating: a response the model
// mangled comes back with IsValid=false (and, for search filters, a
// best-effort fallback), never as a panic or a fatal error. Callers treat
// both a non-nil error and IsValid=false as "re-prompt the same step".
type Provider interface {
	// ParseSearchFilters extracts search filters from one turn. current is
	// passed as prompt context so the model refines rather than restarts.
	ParseSearchFilters(ctx context.Context, text string, current places.SearchFilters) (SearchFilterResult, error)

	ParseContactInfo(ctx context.Context, text string) (ContactInfo, error)
	ParseHours(ctx context.Context, text string) (HoursInfo, error)
	ParseHoursToAPI(ctx context.Context, text string) (HoursAPIResult, error)
	ParseAddress(ctx context.Context, text string) (AddressInfo, error)
	ParseCoordinates(ctx context.Context, text string) (Coordinates, error)

	// ClassifyRefineIntent decides "end" vs "refine" after results were
	// shown. Anything unclear classifies as refine.
	ClassifyRefineIntent(ctx context.Context, text string) (RefineIntent, error)

	// ExtractCategoryNames pulls candidate category phrases out of free
	// text ("it's a cozy arcade bar" -> ["arcade", "bar"]).
	ExtractCategoryNames(ctx context.Context, text string) ([]string, error)

	// ResultsHeader and RefinePrompt produce conversational one-liners
	// around a result list. Their phrasing is non-deterministic; callers
	// must not depend on exact wording.
	ResultsHeader(ctx context.Context, filters places.SearchFilters) (string, error)
	RefinePrompt(ctx context.Context, filters places.SearchFilters) (string, error)

	// RankResults asks the model to reorder results and returns place ids
	// in preferred order. Best effort: callers fall back to the
	// deterministic rating/distance sort on any error or incomplete answer.
	RankResults(ctx context.Context, query string, results []places.PlaceResult) ([]string, error)
}
