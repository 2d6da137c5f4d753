// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type prefixNode struct {
	children map[rune]*prefixNode
	end      bool
	label    string
	value    any
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[rune]*prefixNode)}
}

// PrefixIndex is a case-insensitive prefix tree over filter option
// values. Lookups are O(len(prefix)) plus the size of the matching
// subtree. Values keep their original case and Go type, so a match can be
// sent back to clients and later bound as a query argument unchanged.
type PrefixIndex struct {
	mu   sync.RWMutex
	root *prefixNode
	size int
}

// NewPrefixIndex indexes values by their fmt.Sprint form.
func NewPrefixIndex(values []any) *PrefixIndex {
	p := &PrefixIndex{root: newPrefixNode()}
	for _, v := range values {
		p.Insert(v)
	}
	return p
}

// Insert adds v. Nil values and values that print as "" are ignored; a
// second value with the same label replaces the first.
func (p *PrefixIndex) Insert(v any) {
	if v == nil {
		return
	}
	label := fmt.Sprint(v)
	if label == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	node := p.root
	for _, ch := range strings.ToLower(label) {
		next := node.children[ch]
		if next == nil {
			next = newPrefixNode()
			node.children[ch] = next
		}
		node = next
	}
	if !node.end {
		p.size++
	}
	node.end = true
	node.label = label
	node.value = v
}

// Len returns the number of indexed values.
func (p *PrefixIndex) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// Match returns up to limit values starting with prefix, ordered by
// label. An empty prefix matches everything. limit <= 0 means no limit.
func (p *PrefixIndex) Match(prefix string, limit int) []any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	node := p.root
	for _, ch := range strings.ToLower(prefix) {
		node = node.children[ch]
		if node == nil {
			return []any{}
		}
	}

	var found []*prefixNode
	collect(node, &found)
	sort.Slice(found, func(i, j int) bool { return found[i].label < found[j].label })

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]any, len(found))
	for i, n := range found {
		out[i] = n.value
	}
	return out
}

func collect(node *prefixNode, out *[]*prefixNode) {
	if node.end {
		*out = append(*out, node)
	}
	for _, child := range node.children {
		collect(child, out)
	}
}
