//go:build amd64

package kernel

import "golang.org/x/sys/cpu"

func init() {
	switch {
	case cpu.X86.HasAVX512F:
		detected = AVX512
	case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
		detected = AVX2
	}
	initCapabilities()
}
