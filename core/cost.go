package core

// Cost accumulates resource usage across provider calls within a single
// invocation. Values are additive; the engine sums the deltas returned by
// each layer and exposes only the aggregate to the caller.
type Cost struct {
	USD    float64 `json:"usd"`
	Tokens int     `json:"tokens"`
	MS     int64   `json:"ms"`
}

// Add returns the component-wise sum of c and other.
func (c Cost) Add(other Cost) Cost {
	return Cost{
		USD:    c.USD + other.USD,
		Tokens: c.Tokens + other.Tokens,
		MS:     c.MS + other.MS,
	}
}
