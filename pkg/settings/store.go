package settings

import (
	"os"
	"strings"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	configDir    = "/config"
	settingsFile = "/config/keyboard.bin"
	tempSuffix   = ".tmp"
)

// Store persists Settings on a LittleFS filesystem. Writes are atomic:
// a half-written file from a power cut never replaces the last good
// one.
type Store struct {
	fs      *littlefs.LFS
	mounted bool
}

// NewStore mounts the filesystem on the given block device. If format
// is true and the mount fails, the device is formatted and mounted
// fresh. Boot-time cleanup removes temp files left by interrupted
// writes, and a version mismatch wipes the stale settings file.
func NewStore(blockDev tinyfs.BlockDevice, format bool) (*Store, error) {
	lfs := littlefs.New(blockDev)
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

	s := &Store{fs: lfs, mounted: true}
	s.fs.Remove(settingsFile + tempSuffix)

	var stored Settings
	switch err := s.Load(&stored); {
	case err == nil && stored.Version != CurrentVersion:
		s.fs.Remove(settingsFile)
	case err != nil && !isNotExist(err):
		// Unreadable settings are as good as none.
		s.fs.Remove(settingsFile)
	}

	return s, nil
}

// Close unmounts the filesystem.
func (s *Store) Close() error {
	if s.mounted {
		s.mounted = false
		return s.fs.Unmount()
	}
	return nil
}

// Load reads the stored settings. A missing file is reported with an
// os.IsNotExist-style error; callers fall back to Default.
func (s *Store) Load(cfg *Settings) error {
	f, err := s.fs.Open(settingsFile)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 12)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	if n != 12 {
		return ErrInvalidSize
	}
	return cfg.UnmarshalBinary(buf)
}

// Save writes the settings atomically, stamping the current version.
func (s *Store) Save(cfg *Settings) error {
	if err := s.fs.Mkdir(configDir, 0755); err != nil && !isExist(err) {
		return err
	}

	cfg.Version = CurrentVersion
	data, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}
	return s.atomicWrite(settingsFile, data)
}

// Wipe removes the stored settings.
func (s *Store) Wipe() error {
	return s.fs.Remove(settingsFile)
}

// atomicWrite writes data to a temp file, syncs it, then renames it
// over the destination.
func (s *Store) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix
	s.fs.Remove(tempPath)

	f, err := s.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tempPath)
		return err
	}

	// Sync before the rename so the data is on flash, not in cache.
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			s.fs.Remove(tempPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		s.fs.Remove(tempPath)
		return err
	}

	// LittleFS rename doesn't replace an existing file.
	s.fs.Remove(filepath)
	if err := s.fs.Rename(tempPath, filepath); err != nil {
		s.fs.Remove(tempPath)
		return err
	}
	return nil
}

// isExist checks for "already exists". LittleFS errors don't always
// match os.IsExist, so the message is checked too.
func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// isNotExist is the mirror check for missing files.
func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "No directory entry")
}
