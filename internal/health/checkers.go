package health

import (
	"time"

	"github.com/lanclip/lanclip/internal/transport"
)

// NetworkChecker reports whether the host currently has a usable LAN
// address. Without one the node cannot discover or be discovered.
type NetworkChecker struct{}

func (NetworkChecker) Name() string { return "network" }

func (NetworkChecker) Check() Component {
	component := Component{Name: "network", LastChecked: time.Now()}
	ip, err := transport.LocalIP()
	if err != nil {
		component.Status = StatusUnhealthy
		component.Message = err.Error()
		return component
	}
	component.Status = StatusHealthy
	component.Message = ip.String()
	return component
}
