package kernel

import (
	"os"
	"strings"
	"unsafe"

	"github.com/hupe1980/paircount/internal/num"
)

// ISA is the vector instruction set that sizes the Vector kernel's lane
// groups.
type ISA uint8

const (
	// Generic means no SIMD unit was detected.
	Generic ISA = iota
	// NEON is ARM64 Advanced SIMD (128-bit).
	NEON
	// AVX2 is x86-64 AVX2 with FMA (256-bit).
	AVX2
	// AVX512 is x86-64 AVX-512F (512-bit).
	AVX512
)

var isaNames = [...]string{
	Generic: "generic",
	NEON:    "neon",
	AVX2:    "avx2",
	AVX512:  "avx512",
}

// String returns the lower-case ISA name.
func (i ISA) String() string {
	if int(i) < len(isaNames) {
		return isaNames[i]
	}
	return "unknown"
}

// ParseISA parses an ISA name. ok is false for unknown names.
func ParseISA(s string) (isa ISA, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range isaNames {
		if s == name {
			return ISA(i), true
		}
	}
	return Generic, false
}

// RegisterBytes returns the vector register size the ISA works with.
// Generic uses 32 bytes, which keeps the lane loops short enough to unroll.
func (i ISA) RegisterBytes() int {
	switch i {
	case NEON:
		return 16
	case AVX512:
		return 64
	default:
		return 32
	}
}

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "PAIRCOUNT_SIMD"

var (
	// detected is the best ISA the CPU supports, set by the per-arch init.
	detected ISA

	activeISA  ISA
	overridden bool
)

// initCapabilities picks the active ISA: the override when it names an ISA
// this CPU supports, the detected one otherwise.
func initCapabilities() {
	activeISA, overridden = detected, false
	if isa, ok := ParseISA(os.Getenv(EnvOverride)); ok && available(isa) {
		activeISA, overridden = isa, true
	}
}

// available reports whether the CPU can run isa. AVX-512 hosts also run
// AVX2.
func available(isa ISA) bool {
	return isa == Generic || isa == detected || (isa == AVX2 && detected == AVX512)
}

// ActiveISA returns the ISA in use.
func ActiveISA() ISA {
	return activeISA
}

// DetectedISA returns the best ISA the CPU supports, ignoring the override.
func DetectedISA() ISA {
	return detected
}

// IsOverridden reports whether PAIRCOUNT_SIMD selected the active ISA.
func IsOverridden() bool {
	return overridden
}

// LaneWidth returns the number of T lanes in one register of the active
// ISA, clamped to [2, MaxLanes].
func LaneWidth[T num.Float]() int {
	return laneWidth[T](activeISA)
}

func laneWidth[T num.Float](isa ISA) int {
	var zero T
	w := isa.RegisterBytes() / int(unsafe.Sizeof(zero))
	return min(max(w, 2), MaxLanes)
}
