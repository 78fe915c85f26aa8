package cpu

import (
	"strings"

	syscpu "golang.org/x/sys/cpu"
)

// Features lists the SIMD extensions detected on the host CPU.
type Features struct {
	AVX2    bool
	AVX512F bool
	FMA     bool
	ASIMD   bool // arm64 Advanced SIMD (NEON)
}

// DetectFeatures queries the running CPU.
func DetectFeatures() Features {
	return Features{
		AVX2:    syscpu.X86.HasAVX2,
		AVX512F: syscpu.X86.HasAVX512F,
		FMA:     syscpu.X86.HasFMA,
		ASIMD:   syscpu.ARM64.HasASIMD,
	}
}

// String returns the detected extensions joined by '+', or "generic".
func (f Features) String() string {
	var names []string
	if f.AVX2 {
		names = append(names, "avx2")
	}
	if f.AVX512F {
		names = append(names, "avx512f")
	}
	if f.FMA {
		names = append(names, "fma")
	}
	if f.ASIMD {
		names = append(names, "asimd")
	}
	if len(names) == 0 {
		return "generic"
	}
	return strings.Join(names, "+")
}
