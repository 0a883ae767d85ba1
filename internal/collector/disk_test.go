package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3y5tr0k3/sysmonify/internal/logger"
)

const lsblkFixture = `{
  "blockdevices": [
    {
      "name": "nvme0n1", "label": null, "type": "disk", "serial": " S4EVNF0M123456 ",
      "size": 500107862016, "mountpoint": null, "vendor": null,
      "model": "Samsung SSD 970 EVO ", "path": "/dev/nvme0n1", "partn": null,
      "parttypename": null, "fstype": null, "fsver": null, "tran": "nvme",
      "pttype": "gpt", "uuid": null, "rota": false,
      "children": [
        {
          "name": "nvme0n1p1", "label": "root", "type": "part", "serial": null,
          "size": 499000000000, "mountpoint": "/", "vendor": null, "model": null,
          "path": "/dev/nvme0n1p1", "partn": 1, "parttypename": "Linux filesystem",
          "fstype": "ext4", "fsver": "1.0", "tran": null, "pttype": null,
          "uuid": "0a1b2c3d", "rota": false
        }
      ]
    },
    {
      "name": "sda", "label": null, "type": "disk", "serial": "WD-1234",
      "size": 2000398934016, "mountpoint": null, "vendor": "ATA     ",
      "model": "WDC WD20EZRZ", "path": "/dev/sda", "partn": null,
      "parttypename": null, "fstype": null, "fsver": null, "tran": "sata",
      "pttype": "gpt", "uuid": null, "rota": true
    },
    {
      "name": "loop0", "label": null, "type": "loop", "serial": null,
      "size": 4096, "mountpoint": "/snap/core", "vendor": null, "model": null,
      "path": "/dev/loop0", "partn": null, "parttypename": null, "fstype": null,
      "fsver": null, "tran": null, "pttype": null, "uuid": null, "rota": false
    }
  ]
}`

func TestParseLsblk(t *testing.T) {
	devices, err := parseLsblk([]byte(lsblkFixture))
	require.NoError(t, err)
	require.Len(t, devices, 3)

	nvme := devices[0]
	assert.Equal(t, "nvme0n1", nvme.Name)
	assert.Equal(t, "disk", nvme.Type)
	assert.Equal(t, int64(500107862016), nvme.SizeBytes)
	assert.Equal(t, "nvme", nvme.Transport)
	assert.False(t, nvme.Rotational)
	assert.Equal(t, "Samsung SSD 970 EVO", nvme.Model, "padding trimmed")
	assert.Equal(t, "S4EVNF0M123456", nvme.Serial, "padding trimmed")

	require.Len(t, nvme.Children, 1)
	part := nvme.Children[0]
	assert.Equal(t, "nvme0n1p1", part.Name)
	assert.Equal(t, "root", part.Label)
	assert.Equal(t, "/", part.Mountpoint)
	require.NotNil(t, part.PartNum)
	assert.Equal(t, 1, *part.PartNum)
	assert.Equal(t, "ext4", part.FSType)

	sda := devices[1]
	assert.Equal(t, "ATA", sda.Vendor, "padding trimmed")
	assert.True(t, sda.Rotational)
}

func TestParseLsblkBadJSON(t *testing.T) {
	_, err := parseLsblk([]byte("lsblk: invalid option"))
	assert.Error(t, err)
}

// blockSysRoot builds a sysfs-shaped tree where nvme0n1 and sda resolve to
// real device paths and loop0 resolves under devices/virtual.
func blockSysRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	targets := map[string]string{
		"nvme0n1": "devices/pci0000:00/0000:00:1d.0/nvme/nvme0/nvme0n1",
		"sda":     "devices/pci0000:00/0000:00:17.0/ata1/host0/target0:0:0/0:0:0:0/block/sda",
		"loop0":   "devices/virtual/block/loop0",
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "block"), 0o755))
	for name, target := range targets {
		dir := filepath.Join(root, target)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.Symlink(dir, filepath.Join(root, "block", name)))
	}
	return root
}

func TestIsPhysical(t *testing.T) {
	d := NewDisk(logger.Noop())
	d.sysRoot = blockSysRoot(t)

	assert.True(t, d.isPhysical("nvme0n1"))
	assert.True(t, d.isPhysical("sda"))
	assert.False(t, d.isPhysical("loop0"))
	assert.False(t, d.isPhysical("missing"))
}

func TestReadTopology(t *testing.T) {
	d := NewDisk(logger.Noop())
	d.sysRoot = blockSysRoot(t)
	d.runCmd = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "lsblk", name)
		return []byte(lsblkFixture), nil
	}

	devices := d.readTopology(context.Background())

	require.Len(t, devices, 2, "loop device filtered out")
	assert.Equal(t, "nvme0n1", devices[0].Name)
	assert.Equal(t, "sda", devices[1].Name)
}

func TestReadTopologyLsblkMissing(t *testing.T) {
	calls := 0
	log := logger.NewBufferLogger()

	d := NewDisk(log)
	d.runCmd = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls++
		return nil, errors.New("exec: \"lsblk\": executable file not found in $PATH")
	}

	assert.Nil(t, d.readTopology(context.Background()))
	assert.Nil(t, d.readTopology(context.Background()))

	assert.Equal(t, 1, calls, "lsblk is not retried once it fails")
	assert.True(t, log.HasLevel("warn"))
	assert.Len(t, log.Messages, 1)
}
