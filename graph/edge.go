package graph

// Router inspects the post-barrier state and returns the label naming which
// conditional successor to take. It must be a pure function of state.
type Router func(state State) string

// conditionalEdge is a router plus its label-to-target map, attached to a
// single source node.
type conditionalEdge struct {
	from   string
	router Router
	labels map[string]string
}
