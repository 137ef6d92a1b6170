package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/util"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// DefaultMaxComposedSegments bounds the breadth-first search depth. The
// segment graph is small and locally curated, anything needing more hops is
// handed off to the external routing provider.
const DefaultMaxComposedSegments = 3

// SegmentRepository is the read-only view of stored reference data the
// composer needs. Persistence belongs to the caller.
type SegmentRepository interface {
	Location(ctx context.Context, locationRef string) (*transit.Location, error)
	SegmentsBetween(ctx context.Context, startLocationRef string, endLocationRef string) ([]*transit.Segment, error)
	AllSegments(ctx context.Context) ([]*transit.Segment, error)
}

// Composer stitches stored segments, forward or reversed, into an
// end-to-end route. Stateless - safe for concurrent use.
type Composer struct {
	Repository SegmentRepository
	Policy     *ReversalPolicy

	// Optional composition result cache, keyed by endpoint pair
	ResultCache *cache.Cache[string]

	MaxComposedSegments int
}

func NewComposer(repository SegmentRepository) *Composer {
	return &Composer{
		Repository:          repository,
		Policy:              DefaultReversalPolicy(),
		MaxComposedSegments: DefaultMaxComposedSegments,
	}
}

// Compose finds a direct or multi-segment chain between two locations.
// Returns (nil, nil) when the search bound is exhausted without a hit -
// that is not an error, the caller decides the fallback.
func (c *Composer) Compose(ctx context.Context, startLocationRef string, endLocationRef string) (*transit.RouteComposition, error) {
	var startLocation *transit.Location
	var endLocation *transit.Location

	lookups := pool.New().WithErrors().WithContext(ctx)
	lookups.Go(func(ctx context.Context) error {
		var err error
		startLocation, err = c.Repository.Location(ctx, startLocationRef)
		return err
	})
	lookups.Go(func(ctx context.Context) error {
		var err error
		endLocation, err = c.Repository.Location(ctx, endLocationRef)
		return err
	})
	if err := lookups.Wait(); err != nil {
		return nil, err
	}

	if startLocation == nil {
		return nil, transit.NotFoundError{Resource: "Location", Identifier: startLocationRef}
	}
	if endLocation == nil {
		return nil, transit.NotFoundError{Resource: "Location", Identifier: endLocationRef}
	}

	if composition := c.cachedComposition(ctx, startLocationRef, endLocationRef); composition != nil {
		return composition, nil
	}

	composition, err := c.composeDirect(ctx, startLocationRef, endLocationRef)
	if err != nil {
		return nil, err
	}

	if composition == nil {
		composition, err = c.composeMultiSegment(ctx, startLocationRef, endLocationRef)
		if err != nil {
			return nil, err
		}
	}

	if composition != nil {
		c.storeComposition(ctx, startLocationRef, endLocationRef, composition)
	}

	return composition, nil
}

// composeDirect looks for a single segment covering the whole trip, forward
// first and then the swapped pair gated on reversibility
func (c *Composer) composeDirect(ctx context.Context, startLocationRef string, endLocationRef string) (*transit.RouteComposition, error) {
	forward, err := c.Repository.SegmentsBetween(ctx, startLocationRef, endLocationRef)
	if err != nil {
		return nil, err
	}

	if len(forward) > 0 {
		segment := pickDirectSegment(forward)
		return c.buildComposition(startLocationRef, endLocationRef, transit.CompositionConfidenceDirect, []graphEdge{{
			Segment: segment,
			From:    startLocationRef,
			To:      endLocationRef,
		}})
	}

	swapped, err := c.Repository.SegmentsBetween(ctx, endLocationRef, startLocationRef)
	if err != nil {
		return nil, err
	}

	util.InPlaceFilter(&swapped, func(segment *transit.Segment) bool {
		ok, reason := c.Policy.IsReversible(segment)
		if !ok {
			log.Debug().Str("segment", segment.PrimaryIdentifier).Str("reason", reason).Msg("Skipping irreversible segment")
		}
		return ok
	})

	if len(swapped) > 0 {
		segment := pickDirectSegment(swapped)
		return c.buildComposition(startLocationRef, endLocationRef, transit.CompositionConfidenceDirect, []graphEdge{{
			Segment:  segment,
			Reversed: true,
			From:     startLocationRef,
			To:       endLocationRef,
		}})
	}

	return nil, nil
}

// pickDirectSegment applies the direct-match tie-break - higher usage count
// first, shorter duration second
func pickDirectSegment(candidates []*transit.Segment) *transit.Segment {
	sorted := make([]*transit.Segment, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UsageCount != sorted[j].UsageCount {
			return sorted[i].UsageCount > sorted[j].UsageCount
		}
		return sorted[i].DurationSeconds < sorted[j].DurationSeconds
	})

	return sorted[0]
}

func (c *Composer) composeMultiSegment(ctx context.Context, startLocationRef string, endLocationRef string) (*transit.RouteComposition, error) {
	segments, err := c.Repository.AllSegments(ctx)
	if err != nil {
		return nil, err
	}

	maxSegments := c.MaxComposedSegments
	if maxSegments <= 0 {
		maxSegments = DefaultMaxComposedSegments
	}

	graph := buildSegmentGraph(segments, c.Policy)

	path := graph.shortestPath(startLocationRef, endLocationRef, maxSegments)
	if path == nil {
		return nil, nil
	}

	return c.buildComposition(startLocationRef, endLocationRef, transit.CompositionConfidenceComposed, path)
}

// buildComposition materialises the chosen edge chain - reversing segment
// views where needed and aggregating distance, duration and fare
func (c *Composer) buildComposition(startLocationRef string, endLocationRef string, confidence transit.CompositionConfidence, path []graphEdge) (*transit.RouteComposition, error) {
	composition := &transit.RouteComposition{
		Confidence:       confidence,
		StartLocationRef: startLocationRef,
		EndLocationRef:   endLocationRef,
		ReversedSegments: []int{},
	}

	for index, edge := range path {
		segment := edge.Segment

		if edge.Reversed {
			reversed, err := c.Policy.Reverse(segment)
			if err != nil {
				return nil, err
			}
			segment = reversed

			composition.ReversedSegments = append(composition.ReversedSegments, index)
		}

		composition.Segments = append(composition.Segments, transit.ComposedSegment{
			Segment:  segment,
			Reversed: edge.Reversed,
		})

		composition.TotalDistanceMeters += segment.DistanceMeters
		composition.TotalDurationSeconds += segment.DurationSeconds
		composition.TotalFare.Minimum += segment.Fare.Minimum
		composition.TotalFare.Maximum += segment.Fare.Maximum
		if composition.TotalFare.Currency == "" {
			composition.TotalFare.Currency = segment.Fare.Currency
		}

		if segment.Instructions != "" {
			composition.Instructions = append(composition.Instructions, segment.Instructions)
		}
	}

	return composition, nil
}

func compositionCacheKey(startLocationRef string, endLocationRef string) string {
	return fmt.Sprintf("composition:%s:%s", startLocationRef, endLocationRef)
}

func (c *Composer) cachedComposition(ctx context.Context, startLocationRef string, endLocationRef string) *transit.RouteComposition {
	if c.ResultCache == nil {
		return nil
	}

	cached, _ := c.ResultCache.Get(ctx, compositionCacheKey(startLocationRef, endLocationRef))
	if cached == "" {
		return nil
	}

	var composition *transit.RouteComposition
	if err := json.Unmarshal([]byte(cached), &composition); err != nil {
		return nil
	}

	return composition
}

func (c *Composer) storeComposition(ctx context.Context, startLocationRef string, endLocationRef string, composition *transit.RouteComposition) {
	if c.ResultCache == nil {
		return
	}

	compositionJson, err := json.Marshal(composition)
	if err != nil {
		return
	}

	err = c.ResultCache.Set(ctx, compositionCacheKey(startLocationRef, endLocationRef), string(compositionJson))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to cache composition")
	}
}
