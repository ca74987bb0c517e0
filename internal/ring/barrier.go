//go:build linux && cgo

package ring

/*
#include <stdint.h>

static inline void sfence_impl(void) {
    __asm__ __volatile__("sfence" ::: "memory");
}

static inline void mfence_impl(void) {
    __asm__ __volatile__("mfence" ::: "memory");
}
*/
import "C"

// sfence issues a store fence (x86 SFENCE), ensuring all prior SQE writes
// are globally visible before the tail update that publishes them.
func sfence() {
	C.sfence_impl()
}

// mfence issues a full memory fence (x86 MFENCE), used when acquiring the
// kernel's completion-queue writes before reading the CQ tail.
func mfence() {
	C.mfence_impl()
}
