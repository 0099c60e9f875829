// Package radserver implements the RADIUS server side: multi-socket
// bind across addresses and packet families, a peer host table, a
// goroutine-per-socket receive loop, role-based decode/dispatch, and a
// reply factory (RFC 2865 §3, RFC 2866 §3, RFC 3576/5176 §2).
package radserver

import (
	"net/netip"
	"sync"
)

// RemoteHost is an authorised peer: its source address, shared secret,
// and a symbolic name used only for logging.
type RemoteHost struct {
	Address netip.Addr
	Secret  []byte
	Name    string
}

// HostTable is the server's peer admission list, keyed by source IP.
// It is owned by the Server and may be mutated while the poll loop is
// running; a sync.RWMutex supplies the synchronisation rather than
// leaving it to caller discipline.
type HostTable struct {
	mu    sync.RWMutex
	hosts map[netip.Addr]RemoteHost
}

// NewHostTable returns an empty HostTable.
func NewHostTable() *HostTable {
	return &HostTable{hosts: make(map[netip.Addr]RemoteHost)}
}

// Add registers or replaces the entry for h.Address.
func (t *HostTable) Add(h RemoteHost) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hosts[h.Address] = h
}

// Remove deletes the entry for addr, if any.
func (t *HostTable) Remove(addr netip.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hosts, addr)
}

// Lookup returns the entry for addr and whether it is present.
func (t *HostTable) Lookup(addr netip.Addr) (RemoteHost, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.hosts[addr]
	return h, ok
}
