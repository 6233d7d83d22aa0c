// xpuinfo builds an os-agnostic (host-backed) device topology from the
// current debug flags, prints it, and runs one no-op submission through a
// command queue to exercise the full reserve/submit/synchronize path.
//
// Example:
//
//	NEO_CreateMultipleSubDevices=2 NEO_EngineInstancedSubDevices=1 go run ./cmd/xpuinfo
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/lukaszgotszaldintel/compute-runtime/cmdqueue"
	"github.com/lukaszgotszaldintel/compute-runtime/csr"
	"github.com/lukaszgotszaldintel/compute-runtime/debugflags"
	"github.com/lukaszgotszaldintel/compute-runtime/device"
	"github.com/lukaszgotszaldintel/compute-runtime/enginetypes"
	"github.com/lukaszgotszaldintel/compute-runtime/hwinfo"
	"github.com/lukaszgotszaldintel/compute-runtime/memmgr"
)

var (
	flagFlagsFile = flag.String("flags", "neo.config", "path of the optional YAML debug flags file")
	flagCCSCount  = flag.Uint("ccs", 2, "number of compute engine instances the mock hardware reports")
	flagFamily    = flag.String("family", "ProductTGLLP", "product family to report")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	flags := must.M1(debugflags.Load(*flagFlagsFile))
	family := must.M1(hwinfo.ProductFamilyString(*flagFamily))

	env := &device.ExecutionEnvironment{
		MemoryManager: memmgr.NewOsAgnosticMemoryManager(),
		HardwareInfo: &hwinfo.HardwareInfo{
			Family:       family,
			GtSystemInfo: hwinfo.GtSystemInfo{CCSCount: uint32(*flagCCSCount)},
			CapabilityTable: hwinfo.CapabilityTable{
				DefaultEngineType:     enginetypes.EngineRCS,
				DefaultPreemptionMode: hwinfo.PreemptionMidThread,
			},
		},
		Flags: flags,
	}

	root := must.M1(device.NewRootDevice(env, 0))
	defer root.DecRefInternal()

	fmt.Printf("Root device 0 (%s)\n", family)
	printDevice(root, "  ")

	engine := root.DefaultEngine()
	queue := must.M1(cmdqueue.Create(family, root, engine.CommandStreamReceiver,
		cmdqueue.Descriptor{Mode: cmdqueue.ModeAsynchronous, Throttle: csr.ThrottleHigh},
		false, false))
	defer queue.Destroy()

	must.M(queue.ReserveLinearStreamSize(64))
	stream := must.M1(queue.CommandStream())
	must.M1(stream.Space(64))
	must.M(queue.SubmitBatchBuffer(0, nil, stream.Used()))
	must.M(queue.Synchronize(cmdqueue.WaitForever))
	fmt.Printf("Submitted and synchronized 1 batch (task count %d)\n", queue.TaskCount())

	os.Exit(0)
}

func printDevice(d *device.Device, indent string) {
	for _, engine := range d.Engines() {
		ctx := engine.OsContext
		fmt.Printf("%sengine %s/%s context=%d initialized=%t default=%t root=%t\n",
			indent, ctx.EngineType(), ctx.EngineUsage(), ctx.ContextID(),
			ctx.IsInitialized(), ctx.IsDefaultContext(), ctx.IsRootDevice())
	}
	for i := uint32(0); i < d.NumSubDevices(); i++ {
		sub := must.M1(d.DeviceByID(i))
		kind := "sub-device"
		if sub.EngineInstanced() {
			kind = fmt.Sprintf("engine-instanced sub-device (%s)", sub.InstancedEngineType())
		}
		fmt.Printf("%s%s %d bitfield=%#b\n", indent, kind, sub.SubDeviceIndex(), sub.DeviceBitfield())
		printDevice(sub, indent+"  ")
	}
}
