package armv7m

import "fmt"

// CPUID fields.
const (
	CPUIDImplementerARM uint32 = 0x41
	CPUIDPartMask       uint32 = 0xFFF0
)

var cpuidParts = map[uint32]string{
	0xC200: "Cortex-M0",
	0xC210: "Cortex-M1",
	0xC230: "Cortex-M3",
	0xC240: "Cortex-M4",
	0xC270: "Cortex-M7",
	0xC600: "Cortex-M0+",
	0xD200: "Cortex-M23",
	0xD210: "Cortex-M33",
}

// CPUIDPartName returns the core name for a CPUID value.
func CPUIDPartName(cpuid uint32) string {
	if cpuid>>24 != CPUIDImplementerARM {
		return fmt.Sprintf("unknown (implementer 0x%02x)", cpuid>>24)
	}
	if name, ok := cpuidParts[cpuid&CPUIDPartMask]; ok {
		return name
	}
	return fmt.Sprintf("unknown (part 0x%03x)", (cpuid&CPUIDPartMask)>>4)
}

// CPUIDRevision returns the rNpM revision string.
func CPUIDRevision(cpuid uint32) string {
	return fmt.Sprintf("r%dp%d", (cpuid>>20)&0xF, cpuid&0xF)
}
