// Package netwatch notifies the engine when the host's network addresses
// change. The callback runs on the watcher's own goroutine; it must only
// enqueue a command, never touch engine state directly.
package netwatch

import (
	"net"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Watcher is the network-change collaborator contract.
type Watcher interface {
	Start() error
	Stop()
}

// Poller detects changes by periodically fingerprinting the IPv4 addresses
// of all up interfaces. Every detected difference fires the callback,
// regardless of change direction; debouncing is the engine's job.
type Poller struct {
	interval time.Duration
	callback func()
	log      *zap.Logger

	lister func() string
	stopCh chan struct{}
}

// NewPoller builds a watcher firing cb on address changes.
func NewPoller(interval time.Duration, cb func(), log *zap.Logger) *Poller {
	return &Poller{
		interval: interval,
		callback: cb,
		log:      log,
		lister:   addressFingerprint,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling on a background goroutine.
func (p *Poller) Start() error {
	go p.loop()
	return nil
}

// Stop ends polling.
func (p *Poller) Stop() {
	close(p.stopCh)
}

func (p *Poller) loop() {
	last := p.lister()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			current := p.lister()
			if current != last {
				p.log.Info("network change detected")
				last = current
				p.callback()
			}
		}
	}
}

// addressFingerprint renders the up-interface IPv4 addresses as a stable
// string for comparison.
func addressFingerprint() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	var parts []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ipv4 := ipnet.IP.To4(); ipv4 != nil {
					parts = append(parts, iface.Name+"/"+ipv4.String())
				}
			}
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
