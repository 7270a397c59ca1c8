// Package config loads engine tunables for the record manager and merge
// sorter from an ini file.
package config

import (
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/shirou/gopsutil/mem"
	"gopkg.in/ini.v1"

	"github.com/xxlcore/xxl/logger"
)

// Cfg holds the tunables the record manager and merge sorter otherwise
// take as constructor parameters.
type Cfg struct {
	Raw *ini.File

	// DataDir is where file-backed containers and spill queues are rooted.
	DataDir string

	// PageSize is the fixed size, in bytes, of every page the record
	// manager's block container hands back.
	PageSize uint32

	// NumberOfDirectReserves bounds the in-memory reservation slots a
	// PageInformation carries.
	NumberOfDirectReserves int

	// Sort holds the merge sorter's memory budget and buffer ratios.
	Sort SortCfg
}

// SortCfg mirrors the merge sorter's memory-budget parameters.
type SortCfg struct {
	ObjectSize             int64
	MemSize                int64
	FinalMemSize           int64
	FirstOutputBufferRatio float64
	OutputBufferRatio      float64
	InputBufferRatio       float64
	FinalInputBufferRatio  float64
	BlockSize              int64
}

// MaxMemoryFraction is the fraction of available system RAM above which
// Cfg.Validate warns, rather than errors - the memory budget is the
// caller's call to make.
const MaxMemoryFraction = 0.75

// Default returns a reasonable starting configuration.
func Default() *Cfg {
	return &Cfg{
		Raw:                    ini.Empty(),
		DataDir:                "./xxl-data",
		PageSize:               4096,
		NumberOfDirectReserves: 4,
		Sort: SortCfg{
			ObjectSize:   12,
			MemSize:      12 * 4096,
			FinalMemSize: 4 * 4096,
			BlockSize:    4096,
		},
	}
}

// Load reads path as an ini file with [engine] and [sort] sections,
// falling back to Default() for any key not present.
func Load(path string) (*Cfg, error) {
	cfg := Default()

	exists, err := fileExists(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !exists {
		return cfg, nil
	}

	raw, err := ini.Load(path)
	if err != nil {
		return nil, errors.Annotatef(err, "loading config file %s", path)
	}
	cfg.Raw = raw

	section := raw.Section("engine")
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
	cfg.PageSize = uint32(section.Key("page_size").MustUint(uint(cfg.PageSize)))
	cfg.NumberOfDirectReserves = section.Key("direct_reserves").MustInt(cfg.NumberOfDirectReserves)

	sortSection := raw.Section("sort")
	cfg.Sort.ObjectSize = sortSection.Key("object_size").MustInt64(cfg.Sort.ObjectSize)
	cfg.Sort.MemSize = sortSection.Key("mem_size").MustInt64(cfg.Sort.MemSize)
	cfg.Sort.FinalMemSize = sortSection.Key("final_mem_size").MustInt64(cfg.Sort.FinalMemSize)
	cfg.Sort.BlockSize = sortSection.Key("block_size").MustInt64(int64(cfg.PageSize))
	cfg.Sort.FirstOutputBufferRatio = sortSection.Key("first_output_buffer_ratio").MustFloat64(cfg.Sort.FirstOutputBufferRatio)
	cfg.Sort.OutputBufferRatio = sortSection.Key("output_buffer_ratio").MustFloat64(cfg.Sort.OutputBufferRatio)
	cfg.Sort.InputBufferRatio = sortSection.Key("input_buffer_ratio").MustFloat64(cfg.Sort.InputBufferRatio)
	cfg.Sort.FinalInputBufferRatio = sortSection.Key("final_input_buffer_ratio").MustFloat64(cfg.Sort.FinalInputBufferRatio)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Validate sanity-checks the configured budgets and warns (never errors)
// when they look too large for the host.
func (cfg *Cfg) Validate() error {
	if cfg.PageSize == 0 {
		return errors.New("page size must be positive")
	}
	if cfg.Sort.ObjectSize <= 0 {
		return errors.New("sort object size must be positive")
	}
	if cfg.Sort.MemSize <= 0 || cfg.Sort.FinalMemSize <= 0 {
		return errors.New("sort memSize and finalMemSize must be positive")
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Warnf("could not read host memory stats, skipping budget check: %v", err)
		return nil
	}
	budget := uint64(cfg.Sort.MemSize)
	if cfg.Sort.FinalMemSize > cfg.Sort.MemSize {
		budget = uint64(cfg.Sort.FinalMemSize)
	}
	if float64(budget) > float64(vm.Available)*MaxMemoryFraction {
		logger.Warnf("configured sort memory budget %d bytes exceeds %.0f%% of available host memory (%d bytes)",
			budget, MaxMemoryFraction*100, vm.Available)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (cfg *Cfg) String() string {
	return fmt.Sprintf("Cfg{DataDir:%s PageSize:%d DirectReserves:%d Sort:%+v}",
		cfg.DataDir, cfg.PageSize, cfg.NumberOfDirectReserves, cfg.Sort)
}
