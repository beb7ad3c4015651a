// Package cache provides a byte-bounded LRU for whole blob contents.
//
// Entries are immutable byte slices keyed by blob name. When a
// resource.Controller is attached, every cached byte is charged against its
// memory limit and released on eviction; a value the controller refuses is
// simply not cached.
package cache
