package payload

// Network is the message for the network stream. All sections refresh every
// tick, so interface hotplug shows up without a reconnect.
type Network struct {
	Meta

	// Details maps physical interface names to hardware descriptions.
	Details map[string]InterfaceDetails `json:"details,omitempty"`

	// Stats maps interface names to current throughput and drop rates.
	Stats map[string]InterfaceStats `json:"stats,omitempty"`

	// Connections maps "<proto>/<local>-><foreign>" ids to socket entries.
	Connections map[string]Connection `json:"connections,omitempty"`
}

// InterfaceDetails describes one physical network interface.
type InterfaceDetails struct {
	MAC  string `json:"mac"`
	Type string `json:"type"` // "Ethernet" or "WiFi"

	IPv4 []string `json:"ipv4"`
	IPv6 []string `json:"ipv6"`

	// SpeedMbps is the link speed; -1 when the kernel does not report one
	// (common for wireless and virtual links).
	SpeedMbps int `json:"speed"`
	MTU       int `json:"mtu"`
}

// InterfaceStats reports per-interface rates derived from the kernel's
// cumulative counters. Throughput is in MiB/s under the historical field
// names; drop figures are packets per second.
type InterfaceStats struct {
	RxMBps    float64 `json:"rx_mbps"`
	TxMBps    float64 `json:"tx_mbps"`
	RxDropped float64 `json:"rx_dropped"`
	TxDropped float64 `json:"tx_dropped"`
}

// Connection is one socket table entry. State carries the canonical TCP
// state name, or "N/A" for UDP sockets. Byte counts are zero: the kernel
// does not expose per-connection byte accounting.
type Connection struct {
	PID            int32  `json:"pid"`
	Process        string `json:"process"`
	Protocol       string `json:"protocol"` // "tcp", "tcp6", "udp", "udp6"
	State          string `json:"state"`
	LocalAddress   string `json:"local_address"`
	ForeignAddress string `json:"foreign_address"`
	SentBytes      uint64 `json:"sent_bytes"`
	ReceivedBytes  uint64 `json:"received_bytes"`
}

// Kind returns KindNetwork.
func (*Network) Kind() Kind { return KindNetwork }

// WithoutDetails returns the message unchanged; network sections all
// refresh every tick.
func (n *Network) WithoutDetails() Message { return n }
