package renderer

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// HostInfo summarizes the machine a render runs on
type HostInfo struct {
	CPUModel     string
	LogicalCores int
	TotalMemory  uint64 // bytes
	FreeMemory   uint64 // bytes available without swapping
}

// DefaultNumWorkers returns the number of logical CPUs, falling back to
// runtime.NumCPU when the host cannot be queried.
func DefaultNumWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// GetHostInfo queries CPU and memory information
func GetHostInfo() (HostInfo, error) {
	cpuInfo, err := cpu.Info()
	if err != nil {
		return HostInfo{}, err
	}
	if len(cpuInfo) == 0 {
		return HostInfo{}, fmt.Errorf("no CPU information available")
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return HostInfo{}, err
	}

	return HostInfo{
		CPUModel:     cpuInfo[0].ModelName,
		LogicalCores: DefaultNumWorkers(),
		TotalMemory:  memInfo.Total,
		FreeMemory:   memInfo.Available,
	}, nil
}

// FrameBufferBytes estimates the memory held by a frame buffer and its PNG copy
func FrameBufferBytes(width, height int) uint64 {
	pixels := uint64(width) * uint64(height)
	return pixels*3 + pixels*4
}

// CheckMemory reports an error if the frame for config would not fit in
// the memory currently available on the host.
func CheckMemory(config Config) error {
	memInfo, err := mem.VirtualMemory()
	if err != nil {
		// Unknown hosts are allowed to try
		return nil
	}
	need := FrameBufferBytes(config.Width, config.Height)
	if need > memInfo.Available {
		return fmt.Errorf("%w: %dx%d frame needs %d MiB, only %d MiB available",
			ErrInvalidConfig, config.Width, config.Height, need>>20, memInfo.Available>>20)
	}
	return nil
}
