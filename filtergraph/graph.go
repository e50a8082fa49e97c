// Package filtergraph models ffmpeg filter graphs as typed fragments.
//
// Graph construction stays fully inspectable and testable here; the
// textual -filter_complex syntax is produced only when a command
// builder serializes the graph with String.
package filtergraph

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter is a single named operation with its parameter string, e.g.
// {Name: "scale", Args: "1920:1080"}.
type Filter struct {
	Name string
	Args string
}

// Filterf builds a Filter with a printf-style parameter string.
func Filterf(name, format string, args ...any) Filter {
	return Filter{Name: name, Args: fmt.Sprintf(format, args...)}
}

// String renders the filter in ffmpeg syntax.
func (f Filter) String() string {
	if f.Args == "" {
		return f.Name
	}
	return f.Name + "=" + f.Args
}

// Chain applies a filter sequence between labeled pads.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// Validate checks the chain is well-formed.
func (c Chain) Validate() error {
	if len(c.Filters) == 0 {
		return fmt.Errorf("chain has no filters")
	}
	for _, label := range append(append([]string{}, c.Inputs...), c.Outputs...) {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("chain has an empty pad label")
		}
	}
	return nil
}

// String renders the chain in ffmpeg syntax:
// [in0][in1]filter1,filter2[out0].
func (c Chain) String() string {
	var b strings.Builder
	for _, in := range c.Inputs {
		b.WriteString("[" + in + "]")
	}
	parts := make([]string, len(c.Filters))
	for i, f := range c.Filters {
		parts[i] = f.String()
	}
	b.WriteString(strings.Join(parts, ","))
	for _, out := range c.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// Graph is an ordered set of chains that together form one
// -filter_complex argument.
type Graph struct {
	chains []Chain
}

// Add appends a chain to the graph.
func (g *Graph) Add(c Chain) {
	g.chains = append(g.chains, c)
}

// Chains returns the chains in insertion order.
func (g *Graph) Chains() []Chain {
	return g.chains
}

// Len returns the number of chains.
func (g *Graph) Len() int {
	return len(g.chains)
}

// Empty reports whether the graph has no chains.
func (g *Graph) Empty() bool {
	return len(g.chains) == 0
}

// Merge appends all chains of other to the graph.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	g.chains = append(g.chains, other.chains...)
}

// CountFilter returns how many times a filter with the given name
// appears across all chains.
func (g *Graph) CountFilter(name string) int {
	count := 0
	for _, c := range g.chains {
		for _, f := range c.Filters {
			if f.Name == name {
				count++
			}
		}
	}
	return count
}

// Validate checks every chain in the graph.
func (g *Graph) Validate() error {
	if g.Empty() {
		return fmt.Errorf("graph has no chains")
	}
	for i, c := range g.chains {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("chain %d: %w", i, err)
		}
	}
	return nil
}

// String renders the full graph, chains joined by semicolons.
func (g *Graph) String() string {
	parts := make([]string, len(g.chains))
	for i, c := range g.chains {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

// ff formats a float the way filter parameters expect: no trailing
// zeros, no exponent notation for the magnitudes this pipeline uses.
func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
