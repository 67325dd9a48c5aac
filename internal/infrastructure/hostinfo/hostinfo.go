// Package hostinfo describes the local machine as a [domain.ClusterNode]
// using gopsutil.
package hostinfo

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/andreybell91/ignite/internal/domain"
)

// Label and attribute keys set on the local node.
const (
	LabelOS            = "os"
	LabelArch          = "arch"
	AttrCPUs           = "cpus"
	AttrMemoryBytes    = "memory_bytes"
	AttrPlatform       = "platform"
	AttrKernel         = "kernel"
	AttrVirtualization = "virtualization"
)

// LocalNode probes the host. Extra labels are merged over the probed ones.
func LocalNode(ctx context.Context, extra map[string]string) (domain.ClusterNode, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return domain.ClusterNode{}, fmt.Errorf("host info: %w", err)
	}
	cpus, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return domain.ClusterNode{}, fmt.Errorf("cpu count: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return domain.ClusterNode{}, fmt.Errorf("virtual memory: %w", err)
	}
	return NodeFromHost(info, cpus, vm.Total, extra), nil
}

// NodeFromHost builds the node view from already-probed host data. The
// node ID is the host ID, or the hostname when the host has none.
func NodeFromHost(info *host.InfoStat, cpus int, memTotal uint64, extra map[string]string) domain.ClusterNode {
	id := info.HostID
	if id == "" {
		id = info.Hostname
	}
	arch := info.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}

	labels := map[string]string{
		LabelOS:   info.OS,
		LabelArch: arch,
	}
	for k, v := range extra {
		labels[k] = v
	}

	attrs := map[string]string{
		AttrCPUs:        strconv.Itoa(cpus),
		AttrMemoryBytes: strconv.FormatUint(memTotal, 10),
		AttrPlatform:    info.Platform + " " + info.PlatformVersion,
		AttrKernel:      info.KernelVersion,
	}
	if info.VirtualizationSystem != "" {
		attrs[AttrVirtualization] = info.VirtualizationSystem + "/" + info.VirtualizationRole
	}

	return domain.ClusterNode{
		ID:         domain.NodeID(id),
		Name:       info.Hostname,
		Labels:     labels,
		Attributes: attrs,
	}
}
