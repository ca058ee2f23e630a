package armv7m

// IsWideThumb tests if a halfword is the first half of a 32-bit instruction,
// as opposed to a complete 16-bit instruction.
func IsWideThumb(insthw uint16) bool {
	return (insthw & 0xF800) >= 0xE800
}

// ThumbSize returns the byte size of the instruction starting with insthw.
func ThumbSize(insthw uint16) uint32 {
	if IsWideThumb(insthw) {
		return 4
	}
	return 2
}

// IsBkpt tests for the 16-bit BKPT #imm8 encoding.
func IsBkpt(insthw uint16) bool {
	return (insthw & 0xFF00) == 0xBE00
}

// BkptImm returns the immediate of a BKPT instruction.
func BkptImm(insthw uint16) uint8 {
	return uint8(insthw)
}

// IsSemihostingBkpt tests for BKPT 0xAB, the ARMv7-M semihosting trap.
func IsSemihostingBkpt(insthw uint16) bool {
	return insthw == 0xBEAB
}

// IsWfiWfe tests a 16-bit or 32-bit (first halfword in the top half) Thumb
// encoding for WFI or WFE.
func IsWfiWfe(inst uint32) bool {
	if (inst & 0xfffffffe) == 0xf3af8002 {
		// WFI & WFE (encoding T2)
		return true
	} else if (inst & 0xffef0000) == 0xbf200000 {
		// WFI & WFE (encoding T1)
		return true
	}
	return false
}

// IsUDF tests a Thumb encoding for the permanently undefined instruction.
func IsUDF(inst uint32) bool {
	if (inst & 0xff000000) == 0xde000000 {
		return true // T1
	} else if (inst & 0xfff0f000) == 0xf7f0a000 {
		return true // T2
	}
	return false
}
