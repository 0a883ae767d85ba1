package payload

// Disk is the message for the disk stream. Both sections refresh every tick
// so device hotplug is visible without reconnecting.
type Disk struct {
	Meta

	// Disks is the block-device topology: physical disks with their
	// partitions as children.
	Disks []BlockDevice `json:"disks,omitempty"`

	// Speeds maps a physical disk name (e.g. "nvme0n1") to its current
	// read/write throughput.
	Speeds map[string]DiskSpeed `json:"disks_speeds,omitempty"`
}

// BlockDevice mirrors one lsblk JSON entry. SizeBytes is populated from
// lsblk --bytes; string fields may be empty where the device does not
// report a value.
type BlockDevice struct {
	Name       string        `json:"name"`
	Label      string        `json:"label,omitempty"`
	Type       string        `json:"type"`
	Serial     string        `json:"serial,omitempty"`
	SizeBytes  int64         `json:"size"`
	Mountpoint string        `json:"mountpoint,omitempty"`
	Vendor     string        `json:"vendor,omitempty"`
	Model      string        `json:"model,omitempty"`
	Path       string        `json:"path,omitempty"`
	PartNum    *int          `json:"partn,omitempty"`
	PartType   string        `json:"parttypename,omitempty"`
	FSType     string        `json:"fstype,omitempty"`
	FSVersion  string        `json:"fsver,omitempty"`
	Transport  string        `json:"tran,omitempty"`
	TableType  string        `json:"pttype,omitempty"`
	UUID       string        `json:"uuid,omitempty"`
	Rotational bool          `json:"rota"`
	Children   []BlockDevice `json:"children,omitempty"`
}

// DiskSpeed reports smoothed throughput in MB/s.
type DiskSpeed struct {
	ReadSpeed  float64 `json:"read_speed"`
	WriteSpeed float64 `json:"write_speed"`
}

// Kind returns KindDisk.
func (*Disk) Kind() Kind { return KindDisk }

// WithoutDetails returns the message unchanged; both disk sections refresh
// every tick.
func (d *Disk) WithoutDetails() Message { return d }
