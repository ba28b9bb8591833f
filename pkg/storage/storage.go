// Package storage provides persistent configuration storage using LittleFS.
// It handles atomic writes, version checking, and cleanup of temporary files.
package storage

import (
	"errors"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ferretbit/tinygo-deskpet/pkg/config"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	configDir   = "/config"
	themesDir   = "/config/themes"
	deviceFile  = "/config/device.bin"
	tempSuffix  = ".tmp"
	themeSuffix = ".bin"
)

var (
	ErrThemeNotFound   = errors.New("theme not found")
	ErrFlashFull       = errors.New("insufficient flash space")
	ErrInvalidData     = errors.New("invalid stored data")
	ErrVersionMismatch = errors.New("config version mismatch")
)

// Manager handles config persistence using LittleFS.
type Manager struct {
	fs       *littlefs.LFS
	blockDev tinyfs.BlockDevice
	mounted  bool
}

// Stats provides information about storage usage.
type Stats struct {
	TotalSpace int64
	UsedSpace  int64
	FreeSpace  int64
	ThemeCount int
}

// New initializes the storage system with the given block device.
// It mounts the filesystem and performs boot-time cleanup.
// If format is true and mount fails, it will format the filesystem.
func New(blockDev tinyfs.BlockDevice, format bool) (*Manager, error) {
	lfs := littlefs.New(blockDev)

	// Conservative settings for reliability on small flash parts
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})

	err := lfs.Mount()
	if err != nil {
		if !format {
			return nil, err
		}
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		fs:       lfs,
		blockDev: blockDev,
		mounted:  true,
	}

	// Leftover temp files from interrupted writes
	m.bootCleanup()

	// A version mismatch after a firmware update wipes stored configs;
	// the host controller is expected to restore them.
	needsWipe, err := m.checkVersion()
	if err != nil {
		// No device config yet - first boot
		needsWipe = false
	}
	if needsWipe {
		if err := m.wipeAll(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Close unmounts the filesystem.
func (m *Manager) Close() error {
	if m.mounted {
		m.mounted = false
		return m.fs.Unmount()
	}
	return nil
}

// bootCleanup removes temporary files left over from interrupted writes.
func (m *Manager) bootCleanup() error {
	for _, dir := range []string{configDir, themesDir} {
		entries, err := m.readDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasSuffix(name, tempSuffix) {
				m.fs.Remove(path.Join(dir, name))
			}
		}
	}
	return nil
}

// readDir reads the directory entries at the given path.
func (m *Manager) readDir(dirPath string) ([]os.FileInfo, error) {
	f, err := m.fs.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !f.IsDir() {
		return nil, errors.New("not a directory")
	}

	return f.Readdir(-1)
}

// checkVersion reads the device config and reports whether stored configs
// should be wiped (version mismatch).
func (m *Manager) checkVersion() (bool, error) {
	var deviceCfg config.DeviceConfig
	if err := m.LoadDevice(&deviceCfg); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return deviceCfg.Version != config.CurrentVersion, nil
}

// wipeAll removes all configuration files.
func (m *Manager) wipeAll() error {
	slots, err := m.ListThemes()
	if err == nil {
		for _, slot := range slots {
			m.DeleteTheme(slot)
		}
	}
	m.fs.Remove(deviceFile)
	return nil
}

// ensureDirs creates the config directories if they don't exist.
func (m *Manager) ensureDirs() error {
	if err := m.fs.Mkdir(configDir, 0755); err != nil && !isExist(err) {
		return err
	}
	if err := m.fs.Mkdir(themesDir, 0755); err != nil && !isExist(err) {
		return err
	}
	return nil
}

// isExist checks if an error is "already exists".
// LittleFS errors don't always match os.IsExist, so we check the message too.
func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// LoadDevice loads the device configuration.
func (m *Manager) LoadDevice(cfg *config.DeviceConfig) error {
	f, err := m.fs.Open(deviceFile)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, config.DeviceConfigSize)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	if n != config.DeviceConfigSize {
		return ErrInvalidData
	}

	return cfg.UnmarshalBinary(buf)
}

// SaveDevice saves the device configuration atomically.
func (m *Manager) SaveDevice(cfg *config.DeviceConfig) error {
	if err := m.ensureDirs(); err != nil {
		return err
	}

	cfg.Version = config.CurrentVersion

	data, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}

	return m.atomicWrite(deviceFile, data)
}

// LoadTheme loads a theme from the given slot.
func (m *Manager) LoadTheme(slot uint8, theme *config.Theme) error {
	f, err := m.fs.Open(m.themePath(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrThemeNotFound
		}
		// LittleFS reports missing files with its own error text
		if strings.Contains(err.Error(), "No directory entry") {
			return ErrThemeNotFound
		}
		return err
	}
	defer f.Close()

	buf := make([]byte, config.ThemeSize)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	if n != config.ThemeSize {
		return ErrInvalidData
	}

	return theme.UnmarshalBinary(buf)
}

// SaveTheme saves a theme to the given slot atomically.
func (m *Manager) SaveTheme(slot uint8, theme *config.Theme) error {
	if err := m.ensureDirs(); err != nil {
		return err
	}

	theme.Version = config.CurrentVersion

	data, err := theme.MarshalBinary()
	if err != nil {
		return err
	}

	return m.atomicWrite(m.themePath(slot), data)
}

// DeleteTheme removes a theme from the given slot.
func (m *Manager) DeleteTheme(slot uint8) error {
	return m.fs.Remove(m.themePath(slot))
}

// ThemeExists checks if a theme exists in the given slot.
func (m *Manager) ThemeExists(slot uint8) bool {
	f, err := m.fs.Open(m.themePath(slot))
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// ListThemes returns a list of occupied theme slots.
func (m *Manager) ListThemes() ([]uint8, error) {
	entries, err := m.readDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []uint8{}, nil
		}
		return nil, err
	}

	var slots []uint8
	for _, entry := range entries {
		name := entry.Name()
		// Parse "N.bin" format
		if !strings.HasSuffix(name, themeSuffix) {
			continue
		}
		if strings.HasSuffix(name, tempSuffix) {
			continue
		}

		numStr := strings.TrimSuffix(name, themeSuffix)
		if slot, err := strconv.ParseUint(numStr, 10, 8); err == nil {
			slots = append(slots, uint8(slot))
		}
	}

	return slots, nil
}

// GetStats returns storage statistics.
func (m *Manager) GetStats() (*Stats, error) {
	themes, err := m.ListThemes()
	if err != nil {
		if strings.Contains(err.Error(), "No directory entry") {
			themes = []uint8{}
		} else {
			return nil, err
		}
	}

	// Rough estimate: each theme costs its data plus LittleFS metadata
	// overhead, plus a fixed budget for the device config and directories.
	used := int64(len(themes)*64 + 100)
	total := m.blockDev.Size()

	return &Stats{
		TotalSpace: total,
		UsedSpace:  used,
		FreeSpace:  total - used,
		ThemeCount: len(themes),
	}, nil
}

// themePath returns the filesystem path for a theme slot.
func (m *Manager) themePath(slot uint8) string {
	return path.Join(themesDir, strconv.Itoa(int(slot))+themeSuffix)
}

// atomicWrite writes data to a temporary file, syncs it, then renames.
// The original file is never left in a partially written state.
func (m *Manager) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix

	// Remove temp file if it exists (from interrupted previous write)
	m.fs.Remove(tempPath)

	f, err := m.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		m.fs.Remove(tempPath)
		return err
	}

	// Sync ensures data hits flash before the rename
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			m.fs.Remove(tempPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	// Remove existing file if present (LittleFS rename doesn't replace)
	m.fs.Remove(filepath)

	if err := m.fs.Rename(tempPath, filepath); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	return nil
}

// ForceWipe completely erases all configuration.
func (m *Manager) ForceWipe() error {
	return m.wipeAll()
}
