package composer

import "github.com/AvigateGroup/avigate-app-sub000/pkg/transit"

// graphEdge is a segment usable in one concrete direction
type graphEdge struct {
	Segment  *transit.Segment
	Reversed bool

	From string
	To   string
}

// segmentGraph is the adjacency structure the breadth-first search runs
// over. Built once per composition call from repository reads so the search
// itself never touches I/O.
type segmentGraph struct {
	edges map[string][]graphEdge
}

func buildSegmentGraph(segments []*transit.Segment, policy *ReversalPolicy) *segmentGraph {
	graph := &segmentGraph{
		edges: map[string][]graphEdge{},
	}

	for _, segment := range segments {
		graph.edges[segment.StartLocationRef] = append(graph.edges[segment.StartLocationRef], graphEdge{
			Segment: segment,
			From:    segment.StartLocationRef,
			To:      segment.EndLocationRef,
		})

		if reversible, _ := policy.IsReversible(segment); reversible {
			graph.edges[segment.EndLocationRef] = append(graph.edges[segment.EndLocationRef], graphEdge{
				Segment:  segment,
				Reversed: true,
				From:     segment.EndLocationRef,
				To:       segment.StartLocationRef,
			})
		}
	}

	return graph
}

func (g *segmentGraph) edgesFrom(locationRef string) []graphEdge {
	return g.edges[locationRef]
}

// searchPath is one frontier entry of the breadth-first search
type searchPath struct {
	Location string
	Edges    []graphEdge
}

// shortestPath finds the fewest-segment chain from start to end within the
// hop bound. Breadth-first order means the first hit is accepted, and the
// visited set guarantees termination on cyclic graphs.
func (g *segmentGraph) shortestPath(start string, end string, maxSegments int) []graphEdge {
	visited := map[string]bool{start: true}

	queue := []searchPath{{Location: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if len(current.Edges) >= maxSegments {
			continue
		}

		for _, edge := range g.edgesFrom(current.Location) {
			if edge.To == end {
				return append(current.Edges, edge)
			}

			if visited[edge.To] {
				continue
			}
			visited[edge.To] = true

			nextEdges := make([]graphEdge, len(current.Edges), len(current.Edges)+1)
			copy(nextEdges, current.Edges)

			queue = append(queue, searchPath{
				Location: edge.To,
				Edges:    append(nextEdges, edge),
			})
		}
	}

	return nil
}
