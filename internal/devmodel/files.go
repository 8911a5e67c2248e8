package devmodel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const dmaSuffix = "_dma"

// DeviceName derives the device name from a config file path:
// "config/dbm/ahci-hd.json" -> "ahci-hd",
// "config/dbm/virtio-blk_dma.json" -> "virtio-blk".
func DeviceName(configPath string) string {
	name := strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	return strings.TrimSuffix(name, dmaSuffix)
}

// IsDMAConfig reports whether the path names a DMA sidecar config.
func IsDMAConfig(configPath string) bool {
	return strings.HasSuffix(filepath.Base(configPath), dmaSuffix+".json")
}

// DMAPathFor returns the sibling <device>_dma.json for a main config, or
// "" when none exists. A DMA config has no sidecar of its own.
func DMAPathFor(configPath string) string {
	if IsDMAConfig(configPath) {
		return ""
	}
	dmaPath := filepath.Join(filepath.Dir(configPath), DeviceName(configPath)+dmaSuffix+".json")
	if _, err := os.Stat(dmaPath); err != nil {
		return ""
	}
	return dmaPath
}

// ListConfigs returns the sorted main config files in a directory, skipping
// DMA sidecars. Orphan DMA configs (a _dma.json with no matching main
// config) are reported by name so callers can warn about them; they are
// not an error.
func ListConfigs(dir string) (configs []string, orphans []string, err error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, nil, fmt.Errorf("config folder not found: %s", dir)
	}

	all, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("listing configs in %s: %w", dir, err)
	}
	sort.Strings(all)

	mainNames := make(map[string]bool)
	var dmaFiles []string
	for _, path := range all {
		if IsDMAConfig(path) {
			dmaFiles = append(dmaFiles, path)
			continue
		}
		configs = append(configs, path)
		mainNames[DeviceName(path)] = true
	}

	for _, path := range dmaFiles {
		if !mainNames[DeviceName(path)] {
			orphans = append(orphans, filepath.Base(path))
		}
	}

	return configs, orphans, nil
}
