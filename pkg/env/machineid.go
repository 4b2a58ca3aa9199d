package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const hostIDApp = "boardlink"

// HostID retrieves an ID identifying this host, derived from the machine ID
// so the raw machine ID isn't exposed to the broker.
// The hostname is used where no machine ID is available.
func HostID() string {
	id, err := machineid.ProtectedID(hostIDApp)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return hostIDApp
}
