package composer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/jinzhu/copier"
	"golang.org/x/exp/slices"
)

// ReversedSegmentSuffix marks the identifier of an in-memory reversed view
const ReversedSegmentSuffix = ":REVERSED"

// ReversalPolicy decides whether a segment can be travelled against its
// authored direction and produces the reversed view when it can. This is a
// heuristic - it does not prove the reverse journey is physically or legally
// possible, which is why reversed instructions carry a disclaimer.
type ReversalPolicy struct {
	// Name substrings that mark a segment as one-way
	OneWayMarkers []string

	// Transport modes that only ever run in their authored direction
	OneWayOnlyModes []transit.TransportMode
}

func DefaultReversalPolicy() *ReversalPolicy {
	return &ReversalPolicy{
		OneWayMarkers: []string{"one-way", "one way", "oneway", "express only"},
		OneWayOnlyModes: []transit.TransportMode{
			transit.TransportModeExpressBus,
			transit.TransportModeShuttle,
		},
	}
}

// IsReversible reports whether the segment may be used in reverse, with a
// reason when it may not. A rejection is not an error - the composer just
// treats the reverse edge as unavailable.
func (p *ReversalPolicy) IsReversible(segment *transit.Segment) (bool, string) {
	if segment.Bidirectional {
		return true, ""
	}

	lowerName := strings.ToLower(segment.Name)
	for _, marker := range p.OneWayMarkers {
		if strings.Contains(lowerName, marker) {
			return false, fmt.Sprintf("segment name contains one-way marker %q", marker)
		}
	}

	for _, mode := range segment.TransportModes {
		if slices.Contains(p.OneWayOnlyModes, mode) {
			return false, fmt.Sprintf("transport mode %s only runs in the authored direction", mode)
		}
	}

	return true, ""
}

// Reverse produces a transient reversed view of the segment - endpoints
// swapped, intermediate stops reversed and renumbered, landmarks reversed
// and instructions rewritten best-effort. The stored segment is never
// mutated and the view must never be persisted.
func (p *ReversalPolicy) Reverse(segment *transit.Segment) (*transit.Segment, error) {
	var reversed transit.Segment
	err := copier.CopyWithOption(&reversed, segment, copier.Option{DeepCopy: true})
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(reversed.PrimaryIdentifier, ReversedSegmentSuffix) {
		reversed.PrimaryIdentifier = reversed.PrimaryIdentifier + ReversedSegmentSuffix
	} else {
		reversed.PrimaryIdentifier = strings.TrimSuffix(reversed.PrimaryIdentifier, ReversedSegmentSuffix)
	}

	reversed.StartLocationRef = segment.EndLocationRef
	reversed.EndLocationRef = segment.StartLocationRef

	slices.Reverse(reversed.IntermediateStops)
	for index := range reversed.IntermediateStops {
		reversed.IntermediateStops[index].Order = index + 1
	}

	slices.Reverse(reversed.Landmarks)

	reversed.Instructions = rewriteInstructions(segment.Instructions, segment.Name)

	return &reversed, nil
}

var instructionSwapPatterns = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	// "From X to Y" -> "From Y to X", keeping the original casing of "from"
	{regexp.MustCompile(`(?i)\b(from)\s+(.+?)\s+to\s+(.+?)(\.|,|;|$)`), "$1 $3 to $2$4"},
	// Marker keeps the second pattern from undoing the first
	{regexp.MustCompile(`(?i)\bstarts? at\b`), "e\x00nds at"},
	{regexp.MustCompile(`(?i)\bends? at\b`), "starts at"},
	{regexp.MustCompile(`e\x00nds at`), "ends at"},
	{regexp.MustCompile(`(?i)\byour destination\b`), "your starting point"},
	{regexp.MustCompile(`(?i)\bthe destination\b`), "the starting point"},
}

// rewriteInstructions applies the fixed pattern substitutions to free-text
// directions. Best effort natural language transformation only - the
// prepended disclaimer tells the consumer not to trust it blindly.
func rewriteInstructions(instructions string, segmentName string) string {
	rewritten := instructions
	for _, swap := range instructionSwapPatterns {
		rewritten = swap.pattern.ReplaceAllString(rewritten, swap.replacement)
	}

	disclaimer := fmt.Sprintf("These directions were automatically reversed from %q and may not read exactly right.", segmentName)

	if rewritten == "" {
		return disclaimer
	}

	return disclaimer + " " + rewritten
}
