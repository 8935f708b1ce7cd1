package layout

import "fmt"

// Target describes the ABI target the debug info was produced for.
type Target struct {
	Triple  string // e.g. "x86_64-linux-gnu"
	PtrSize uint64 // bytes
}

func X86_64LinuxGNU() Target {
	return Target{Triple: "x86_64-linux-gnu", PtrSize: 8}
}

// TargetForPointerSize returns a generic target with the given address size.
func TargetForPointerSize(ptrSize uint64) Target {
	if ptrSize == 0 || ptrSize == 8 {
		return X86_64LinuxGNU()
	}
	return Target{Triple: fmt.Sprintf("generic-%dbit", ptrSize*8), PtrSize: ptrSize}
}
