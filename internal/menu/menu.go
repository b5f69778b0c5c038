// Package menu is the engine's view of the user-facing menu. Entries added
// by the engine carry the peer's network address as an opaque attribute so a
// later selection can be mapped back to a copy request.
package menu

import "errors"

// ErrNotFound means no entry matched the removal target.
var ErrNotFound = errors.New("menu: entry not found")

// Entry is one selectable menu item. Addr is empty for static entries.
type Entry struct {
	Label string
	Addr  string
}

// Handler runs when the user selects an entry.
type Handler func(Entry)

// Menu is the collaborator contract the engine drives. Dynamic entries are
// the per-peer "copy from" items; static entries survive rediscovery.
type Menu interface {
	AddStatic(label string, h Handler) error
	AddDynamic(label, addr string, h Handler) error
	RemoveDynamic(addr string) error
	RemoveAllDynamic() error
	Stop()
}
