package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Options configures the storage engine. It is fixed at construction;
// nothing mutates it at runtime.
type Options struct {
	// Dir is the directory holding the segment files.
	Dir string `yaml:"dir"`

	// MaxSegmentSize is the size budget of one segment in bytes.
	// An append that would push past it rotates to a new segment.
	MaxSegmentSize int64 `yaml:"max_segment_size"`

	// SyncWrites forces an fsync after every append. When false the
	// OS decides when buffered data reaches the disk.
	SyncWrites bool `yaml:"sync_writes"`
}

var DefaultOptions = Options{
	Dir:            "data",
	MaxSegmentSize: 256 * 1024 * 1024,
	SyncWrites:     false,
}

// Load reads options from a YAML file, filling unset fields from
// DefaultOptions.
func Load(path string) (Options, error) {
	buf, err := os.ReadFile(path)

	if err != nil {
		return Options{}, errors.Wrapf(err, "read config file %s", path)
	}

	opts := DefaultOptions

	if err := yaml.Unmarshal(buf, &opts); err != nil {
		return Options{}, errors.Wrapf(err, "parse config file %s", path)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

func (o Options) Validate() error {
	if o.Dir == "" {
		return errors.New("storage directory is empty")
	}

	if o.MaxSegmentSize <= 0 {
		return errors.New("max segment size must be greater than 0")
	}

	return nil
}
