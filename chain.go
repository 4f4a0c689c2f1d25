package strata

import "sort"

// MigrationChain declares which single-step transitions between schema
// versions are allowed. The three declaration shapes (empty, ordered list,
// parent-to-child map) all normalize to one adjacency map before
// validation, so every query below works the same way regardless of how
// the chain was declared.
//
// Two invariants are enforced at construction and can never be violated
// by a chain that escapes a constructor: no version is the destination of
// more than one declared transition, and following transitions never
// revisits a version. A wrong migration sequence risks data loss, so a
// malformed declaration fails loudly instead of producing a partially
// usable chain.
//
// A chain is immutable once built and safe for concurrent use.
type MigrationChain struct {
	nodes map[string]struct{}
	next  map[string]string // source -> destination, at most one per source
	prev  map[string]string // destination -> source, unique by construction
}

// EmptyChain returns a chain with no declared versions. It is valid and
// trivially empty: any single version passes without migration.
func EmptyChain() *MigrationChain {
	return &MigrationChain{
		nodes: map[string]struct{}{},
		next:  map[string]string{},
		prev:  map[string]string{},
	}
}

// LinearChain builds a chain from an ordered list of distinct versions,
// each implicitly allowed to migrate to the next. No arguments yield an
// empty chain; a single argument yields a degenerate chain that declares
// the version but no transitions.
func LinearChain(versions ...string) (*MigrationChain, error) {
	c := EmptyChain()
	for _, v := range versions {
		if v == "" {
			return nil, ErrEmptyVersion
		}
		if _, ok := c.nodes[v]; ok {
			return nil, NewDuplicateVersionError(v)
		}
		c.nodes[v] = struct{}{}
	}
	for i := 0; i+1 < len(versions); i++ {
		c.next[versions[i]] = versions[i+1]
		c.prev[versions[i+1]] = versions[i]
	}
	return c, nil
}

// TreeChain builds a chain from explicit source-to-destination edges.
// Versions that appear only as destinations are declared implicitly.
func TreeChain(edges map[string]string) (*MigrationChain, error) {
	c := EmptyChain()
	// Detect two sources sharing a destination before anything else:
	// the reverse map silently keeps one edge otherwise.
	sources := make(map[string][]string, len(edges))
	for src, dst := range edges {
		if src == "" || dst == "" {
			return nil, ErrEmptyVersion
		}
		sources[dst] = append(sources[dst], src)
	}
	for dst, srcs := range sources {
		if len(srcs) > 1 {
			sort.Strings(srcs)
			return nil, NewAmbiguousChainError(dst, srcs...)
		}
	}
	for src, dst := range edges {
		c.nodes[src] = struct{}{}
		c.nodes[dst] = struct{}{}
		c.next[src] = dst
		c.prev[dst] = src
	}
	if cycle := c.findCycle(); cycle != nil {
		return nil, NewCyclicChainError(cycle)
	}
	return c, nil
}

// findCycle walks next-edges from every node and returns the loop it
// finds, or nil. Walks are bounded by the node count.
func (c *MigrationChain) findCycle() []string {
	done := make(map[string]struct{}, len(c.nodes))
	for _, start := range c.sortedNodes() {
		if _, ok := done[start]; ok {
			continue
		}
		seen := map[string]int{}
		var path []string
		v := start
		for {
			if _, finished := done[v]; finished {
				break
			}
			if at, revisited := seen[v]; revisited {
				return append(path[at:], v)
			}
			seen[v] = len(path)
			path = append(path, v)
			next, ok := c.next[v]
			if !ok {
				break
			}
			v = next
		}
		for _, v := range path {
			done[v] = struct{}{}
		}
	}
	return nil
}

// Empty reports whether the chain declares no transitions. A chain with a
// single version and no edges is still empty in this sense.
func (c *MigrationChain) Empty() bool {
	return len(c.next) == 0
}

// Len returns the number of declared versions.
func (c *MigrationChain) Len() int {
	return len(c.nodes)
}

// Contains reports whether v is a declared version.
func (c *MigrationChain) Contains(v string) bool {
	_, ok := c.nodes[v]
	return ok
}

// NextVersionFrom returns the single version that v is allowed to migrate
// to. ok is false if v is a leaf or not declared at all.
func (c *MigrationChain) NextVersionFrom(v string) (next string, ok bool) {
	next, ok = c.next[v]
	return next, ok
}

// Versions returns all declared versions, sorted.
func (c *MigrationChain) Versions() []string {
	return c.sortedNodes()
}

// RootVersions returns the declared versions with no incoming transition,
// sorted. For a valid non-empty chain these are the possible oldest
// store versions.
func (c *MigrationChain) RootVersions() []string {
	roots := make([]string, 0, len(c.nodes))
	for v := range c.nodes {
		if _, ok := c.prev[v]; !ok {
			roots = append(roots, v)
		}
	}
	sort.Strings(roots)
	return roots
}

// LeafVersions returns the declared versions with no outgoing transition,
// sorted. Every migration walk terminates at one of these.
func (c *MigrationChain) LeafVersions() []string {
	leaves := make([]string, 0, len(c.nodes))
	for v := range c.nodes {
		if _, ok := c.next[v]; !ok {
			leaves = append(leaves, v)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Path returns the version sequence from from to to, inclusive of both
// endpoints, following declared transitions. It fails with
// UnknownVersionError if from is not declared, and with NoPathError if a
// leaf is reached before to. Acyclicity bounds the walk by the number of
// declared versions.
func (c *MigrationChain) Path(from, to string) ([]string, error) {
	if !c.Contains(from) {
		return nil, NewUnknownVersionError(from)
	}
	path := []string{from}
	for v := from; v != to; {
		next, ok := c.next[v]
		if !ok {
			return nil, NewNoPathError(from, to)
		}
		path = append(path, next)
		v = next
	}
	return path, nil
}

func (c *MigrationChain) sortedNodes() []string {
	nodes := make([]string, 0, len(c.nodes))
	for v := range c.nodes {
		nodes = append(nodes, v)
	}
	sort.Strings(nodes)
	return nodes
}
