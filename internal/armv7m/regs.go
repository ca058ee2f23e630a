// Package armv7m holds the ARMv7-M debug architecture definitions used by the
// HLA target: debug register addresses and bit patterns, core register
// selectors, execution mode decode and the core register cache.
package armv7m

// System control and debug block addresses (ARMv7-M ARM, C1.6).
const (
	CPUID     uint32 = 0xE000ED00
	NVICAIRCR uint32 = 0xE000ED0C
	DCBDHCSR  uint32 = 0xE000EDF0
	DCBDCRSR  uint32 = 0xE000EDF4
	DCBDCRDR  uint32 = 0xE000EDF8
	DCBDEMCR  uint32 = 0xE000EDFC
)

// DHCSR bits. Writes that set C_DEBUGEN must carry DBGKEY in the top half.
const (
	DBGKEY        uint32 = 0xA05F << 16
	CDebugEn      uint32 = 1 << 0
	CHalt         uint32 = 1 << 1
	CStep         uint32 = 1 << 2
	CMaskInts     uint32 = 1 << 3
	SRegRdy       uint32 = 1 << 16
	SHalt         uint32 = 1 << 17
	SSleep        uint32 = 1 << 18
	SLockup       uint32 = 1 << 19
	SRetireSt     uint32 = 1 << 24
	SResetSt      uint32 = 1 << 25
	DHCSRCtrlMask uint32 = 0xFFFF
)

// DEMCR bits.
const (
	TRCENA      uint32 = 1 << 24
	VCHardErr   uint32 = 1 << 10
	VCIntErr    uint32 = 1 << 9
	VCBusErr    uint32 = 1 << 8
	VCStatErr   uint32 = 1 << 7
	VCChkErr    uint32 = 1 << 6
	VCNoCPErr   uint32 = 1 << 5
	VCMMErr     uint32 = 1 << 4
	VCCoreReset uint32 = 1 << 0
)

// AIRCR fields. Writes are ignored unless VECTKEY is in the top half.
const (
	AIRCRVectKey     uint32 = 0x05FA << 16
	AIRCRVectKeyMask uint32 = 0xFFFF << 16
	AIRCRSysResetReq uint32 = 1 << 2
	AIRCRVectReset   uint32 = 1 << 0
)

// DCC control byte: bit 0 set means the data byte is valid and not yet
// consumed by the debugger.
const DCCBusy uint8 = 1 << 0

// DCRSR register selectors.
const (
	RegselR0          uint32 = 0x00
	RegselSP          uint32 = 0x0D
	RegselLR          uint32 = 0x0E
	RegselPC          uint32 = 0x0F
	RegselXPSR        uint32 = 0x10
	RegselMSP         uint32 = 0x11
	RegselPSP         uint32 = 0x12
	RegselSpecialPack uint32 = 0x14 // PRIMASK[7:0] BASEPRI[15:8] FAULTMASK[23:16] CONTROL[31:24]
)

// ExceptionMask selects the IPSR exception number field of xPSR.
const ExceptionMask uint32 = 0x1FF
