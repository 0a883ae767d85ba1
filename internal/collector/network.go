package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/internal/metrics"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Network collects interface details, throughput/drop rates, and the
// socket table.
type Network struct {
	log     logger.Logger
	sysRoot string

	rxBytes *metrics.CounterSet
	txBytes *metrics.CounterSet
	rxDrops *metrics.CounterSet
	txDrops *metrics.CounterSet
}

// NewNetwork creates the network collector.
func NewNetwork(log logger.Logger) *Network {
	return &Network{
		log:     log,
		sysRoot: "/sys",
		rxBytes: metrics.NewCounterSet(),
		txBytes: metrics.NewCounterSet(),
		rxDrops: metrics.NewCounterSet(),
		txDrops: metrics.NewCounterSet(),
	}
}

// Kind returns payload.KindNetwork.
func (n *Network) Kind() payload.Kind {
	return payload.KindNetwork
}

// Collect reads interface hardware details, derives per-interface rates,
// and snapshots the socket table.
func (n *Network) Collect(ctx context.Context) (payload.Message, error) {
	msg := &payload.Network{}

	physical := n.physicalInterfaces()

	msg.Details = n.readDetails(ctx, physical)
	msg.Stats = n.readStats(ctx, physical, time.Now())
	msg.Connections = n.readConnections(ctx)

	return msg, nil
}

// physicalInterfaces lists interfaces backed by hardware: those with a
// device symlink in sysfs. Bridges, veths, and loopback have none.
func (n *Network) physicalInterfaces() map[string]bool {
	physical := make(map[string]bool)

	entries, err := os.ReadDir(filepath.Join(n.sysRoot, "class/net"))
	if err != nil {
		n.log.Debug("[network] sysfs scan failed: %v", err)
		return physical
	}
	for _, e := range entries {
		devPath := filepath.Join(n.sysRoot, "class/net", e.Name(), "device")
		if _, err := os.Lstat(devPath); err == nil {
			physical[e.Name()] = true
		}
	}
	return physical
}

// readDetails describes each physical interface.
func (n *Network) readDetails(ctx context.Context, physical map[string]bool) map[string]payload.InterfaceDetails {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		n.log.Debug("[network] interface list failed: %v", err)
		return nil
	}

	details := make(map[string]payload.InterfaceDetails)
	for _, iface := range ifaces {
		if !physical[iface.Name] {
			continue
		}

		ipv4, ipv6 := splitAddrs(iface.Addrs)
		details[iface.Name] = payload.InterfaceDetails{
			MAC:       iface.HardwareAddr,
			Type:      n.interfaceType(iface.Name),
			IPv4:      ipv4,
			IPv6:      ipv6,
			SpeedMbps: n.linkSpeed(iface.Name),
			MTU:       iface.MTU,
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// interfaceType classifies an interface from its uevent DEVTYPE.
func (n *Network) interfaceType(name string) string {
	uevent := readFileString(filepath.Join(n.sysRoot, "class/net", name, "uevent"))
	return classifyInterface(uevent)
}

// classifyInterface maps a uevent body to a display type. Wireless
// interfaces carry DEVTYPE=wlan; everything else physical is Ethernet.
func classifyInterface(uevent string) string {
	for _, line := range strings.Split(uevent, "\n") {
		if strings.TrimSpace(line) == "DEVTYPE=wlan" {
			return "WiFi"
		}
	}
	return "Ethernet"
}

// linkSpeed reads the negotiated link speed in Mb/s, or -1 when the kernel
// does not report one (typical for wireless).
func (n *Network) linkSpeed(name string) int {
	raw := strings.TrimSpace(readFileString(filepath.Join(n.sysRoot, "class/net", name, "speed")))
	speed, err := strconv.Atoi(raw)
	if err != nil || speed < 0 {
		return -1
	}
	return speed
}

// splitAddrs separates an interface's addresses into v4 and v6 lists,
// dropping the prefix length.
func splitAddrs(addrs []net.InterfaceAddr) (ipv4, ipv6 []string) {
	for _, a := range addrs {
		ip := a.Addr
		if i := strings.IndexByte(ip, '/'); i >= 0 {
			ip = ip[:i]
		}
		if strings.Contains(ip, ":") {
			ipv6 = append(ipv6, ip)
		} else {
			ipv4 = append(ipv4, ip)
		}
	}
	return ipv4, ipv6
}

// readStats derives throughput and drop rates per physical interface from
// the kernel's cumulative counters.
func (n *Network) readStats(ctx context.Context, physical map[string]bool, now time.Time) map[string]payload.InterfaceStats {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		n.log.Debug("[network] io counters failed: %v", err)
		return nil
	}

	stats := make(map[string]payload.InterfaceStats)
	live := make(map[string]bool)

	for _, io := range counters {
		if !physical[io.Name] {
			continue
		}
		live[io.Name] = true

		stats[io.Name] = payload.InterfaceStats{
			RxMBps:    n.rxBytes.Update(io.Name, float64(io.BytesRecv), now) / (1024 * 1024),
			TxMBps:    n.txBytes.Update(io.Name, float64(io.BytesSent), now) / (1024 * 1024),
			RxDropped: n.rxDrops.Update(io.Name, float64(io.Dropin), now),
			TxDropped: n.txDrops.Update(io.Name, float64(io.Dropout), now),
		}
		if n.rxBytes.Rebased(io.Name) || n.txBytes.Rebased(io.Name) {
			n.log.Debug("[network] %s byte counters went backwards, rebasing", io.Name)
		}
	}

	n.rxBytes.Prune(live)
	n.txBytes.Prune(live)
	n.rxDrops.Prune(live)
	n.txDrops.Prune(live)

	if len(stats) == 0 {
		return nil
	}
	return stats
}

// readConnections snapshots the TCP/UDP socket table with process
// attribution where the kernel allows it.
func (n *Network) readConnections(ctx context.Context) map[string]payload.Connection {
	conns, err := net.ConnectionsWithContext(ctx, "all")
	if err != nil {
		n.log.Debug("[network] connection table failed: %v", err)
		return nil
	}

	names := make(map[int32]string)
	result := make(map[string]payload.Connection)

	for _, c := range conns {
		proto := protocolName(c.Family, c.Type)
		if proto == "" {
			continue
		}

		entry := payload.Connection{
			PID:            c.Pid,
			Process:        n.processName(ctx, c.Pid, names),
			Protocol:       proto,
			State:          connectionState(proto, c.Status),
			LocalAddress:   formatSockAddr(c.Laddr.IP, c.Laddr.Port),
			ForeignAddress: formatSockAddr(c.Raddr.IP, c.Raddr.Port),
		}
		result[connectionKey(entry)] = entry
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// processName resolves a pid to its short command name, caching per pass.
func (n *Network) processName(ctx context.Context, pid int32, cache map[int32]string) string {
	if pid <= 0 {
		return "-"
	}
	if name, ok := cache[pid]; ok {
		return name
	}

	name := "-"
	if p, err := process.NewProcessWithContext(ctx, pid); err == nil {
		if pn, err := p.NameWithContext(ctx); err == nil && pn != "" {
			name = pn
		}
	}
	cache[pid] = name
	return name
}

// protocolName maps a socket's family and type to its display protocol.
func protocolName(family, sockType uint32) string {
	const (
		afInet     = 2
		afInet6    = 10
		sockStream = 1
		sockDgram  = 2
	)

	switch {
	case family == afInet && sockType == sockStream:
		return "tcp"
	case family == afInet6 && sockType == sockStream:
		return "tcp6"
	case family == afInet && sockType == sockDgram:
		return "udp"
	case family == afInet6 && sockType == sockDgram:
		return "udp6"
	}
	return ""
}

// connectionState normalizes a socket status for display. UDP sockets are
// stateless and show "N/A".
func connectionState(proto, status string) string {
	if strings.HasPrefix(proto, "udp") {
		return "N/A"
	}
	if status == "" || status == "NONE" {
		return "N/A"
	}
	return status
}

// formatSockAddr renders ip:port, bracketing IPv6 addresses.
func formatSockAddr(ip string, port uint32) string {
	if ip == "" {
		ip = "0.0.0.0"
	}
	if strings.Contains(ip, ":") {
		return fmt.Sprintf("[%s]:%d", ip, port)
	}
	return fmt.Sprintf("%s:%d", ip, port)
}

// connectionKey builds the stable identity of a socket table entry.
func connectionKey(c payload.Connection) string {
	return c.Protocol + "/" + c.LocalAddress + "->" + c.ForeignAddress
}
