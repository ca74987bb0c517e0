// Package ring is a thin, single-threaded wrapper over the kernel
// io_uring submission/completion ring. It understands exactly three
// operations — polling a descriptor for readiness, arming a timeout,
// and cancelling a previously submitted entry — which is all the
// reactor needs from its I/O multiplexer. It does not attempt to be a
// general-purpose io_uring binding.
package ring

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wllclngn/ABRAXAS/internal/logging"
)

const (
	sysIOURingSetup = 425
	sysIOURingEnter = 426
)

const (
	offSQRing = 0x00000000
	offCQRing = 0x08000000
	offSQEs   = 0x10000000
)

const enterGetEvents = 1 << 0

// Opcodes for the three operations the reactor submits.
const (
	opPollAdd     = 6
	opTimeout     = 11
	opAsyncCancel = 14
)

// pollIn mirrors unix.POLLIN; the reactor only ever waits for readability.
const pollIn = 0x0001

type sqOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Flags       uint32
	Dropped     uint32
	Array       uint32
	Resv1       uint32
	UserAddr    uint64
}

type cqOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Overflow    uint32
	CQEs        uint32
	Flags       uint32
	Resv1       uint32
	UserAddr    uint64
}

type params struct {
	SQEntries    uint32
	CQEntries    uint32
	Flags        uint32
	SQThreadCPU  uint32
	SQThreadIdle uint32
	Features     uint32
	WQFd         uint32
	Resv         [3]uint32
	SQOff        sqOffsets
	CQOff        cqOffsets
}

// sqe is the kernel's 64-byte submission queue entry, laid out exactly
// as include/uapi/linux/io_uring.h describes it.
type sqe struct {
	Opcode      uint8
	Flags       uint8
	IoPrio      uint16
	FD          int32
	Off         uint64
	Addr        uint64
	Len         uint32
	OpFlags     uint32
	UserData    uint64
	BufIndex    uint16
	Personality uint16
	SpliceFDIn  int32
	Pad         [2]uint64
}

// cqe is the kernel's 16-byte completion queue entry.
type cqe struct {
	UserData uint64
	Res      int32
	Flags    uint32
}

// kernelTimespec mirrors struct __kernel_timespec, the wire format
// IORING_OP_TIMEOUT expects rather than the host's time.Duration.
type kernelTimespec struct {
	Sec  int64
	Nsec int64
}

// Ring owns the three mmap'd regions backing one io_uring instance and
// the cached offsets needed to index them.
type Ring struct {
	fd int

	sqRing   []byte
	cqRing   []byte
	sqesMem  []byte

	sqHead    *uint32
	sqTail    *uint32
	sqMask    uint32
	sqArray   *uint32
	sqEntries uint32

	cqHead    *uint32
	cqTail    *uint32
	cqMask    uint32
	cqes      *cqe

	sqes []sqe

	// pending holds kernel_timespec values for timeout SQEs prepared but
	// not yet submitted. IORING_OP_TIMEOUT copies the timespec into the
	// kernel's own request state while processing the SQE inside
	// io_uring_enter, so the backing memory only needs to survive from
	// prep through that syscall returning, not past it; pending exists
	// to root it against the GC for that window; see SubmitAndWait.
	pending []*kernelTimespec
}

// Init creates an io_uring instance with the given submission-queue
// depth, maps its three shared regions into process memory, and caches
// the head/tail/mask/array offsets used on every hot-path call.
func Init(entries uint32) (*Ring, error) {
	var p params
	fd, _, errno := unix.Syscall(sysIOURingSetup, uintptr(entries), uintptr(unsafe.Pointer(&p)), 0)
	if errno != 0 {
		return nil, fmt.Errorf("io_uring_setup: %w", errno)
	}

	r := &Ring{fd: int(fd), sqEntries: p.SQEntries}

	sqRingSize := int(p.SQOff.Array) + int(p.SQEntries)*4
	cqRingSize := int(p.CQOff.CQEs) + int(p.CQEntries)*int(unsafe.Sizeof(cqe{}))
	sqesSize := int(p.SQEntries) * int(unsafe.Sizeof(sqe{}))

	sqRing, err := unix.Mmap(int(fd), offSQRing, sqRingSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Close(int(fd))
		return nil, fmt.Errorf("mmap sq ring: %w", err)
	}
	cqRing, err := unix.Mmap(int(fd), offCQRing, cqRingSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(sqRing)
		unix.Close(int(fd))
		return nil, fmt.Errorf("mmap cq ring: %w", err)
	}
	sqesMem, err := unix.Mmap(int(fd), offSQEs, sqesSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		unix.Munmap(sqRing)
		unix.Munmap(cqRing)
		unix.Close(int(fd))
		return nil, fmt.Errorf("mmap sqes: %w", err)
	}

	r.sqRing = sqRing
	r.cqRing = cqRing
	r.sqesMem = sqesMem

	r.sqHead = (*uint32)(unsafe.Pointer(&sqRing[p.SQOff.Head]))
	r.sqTail = (*uint32)(unsafe.Pointer(&sqRing[p.SQOff.Tail]))
	r.sqMask = *(*uint32)(unsafe.Pointer(&sqRing[p.SQOff.RingMask]))
	r.sqArray = (*uint32)(unsafe.Pointer(&sqRing[p.SQOff.Array]))

	r.cqHead = (*uint32)(unsafe.Pointer(&cqRing[p.CQOff.Head]))
	r.cqTail = (*uint32)(unsafe.Pointer(&cqRing[p.CQOff.Tail]))
	r.cqMask = *(*uint32)(unsafe.Pointer(&cqRing[p.CQOff.RingMask]))
	r.cqes = (*cqe)(unsafe.Pointer(&cqRing[p.CQOff.CQEs]))

	r.sqes = unsafe.Slice((*sqe)(unsafe.Pointer(&sqesMem[0])), p.SQEntries)

	logging.Default().Debug("ring initialized", "entries", p.SQEntries, "fd", int(fd))
	return r, nil
}

// nextSQE claims the next free submission slot and zeroes it.
func (r *Ring) nextSQE() (*sqe, uint32, error) {
	tail := *r.sqTail
	head := *r.sqHead
	if tail-head >= r.sqEntries {
		return nil, 0, fmt.Errorf("submission queue full")
	}
	idx := tail & r.sqMask
	s := &r.sqes[idx]
	*s = sqe{}
	return s, idx, nil
}

// commit publishes a prepared SQE by writing its index into the
// submission array and advancing the tail under a release fence.
func (r *Ring) commit(idx uint32) {
	tail := *r.sqTail
	arraySlot := (*uint32)(unsafe.Add(unsafe.Pointer(r.sqArray), uintptr(tail&r.sqMask)*4))
	*arraySlot = idx
	sfence()
	*r.sqTail = tail + 1
}

// PrepPoll enqueues a single-shot readiness wait on fd for input-ready,
// tagged with the caller-chosen user-data value.
func (r *Ring) PrepPoll(fd int, tag uint64) error {
	s, idx, err := r.nextSQE()
	if err != nil {
		return err
	}
	s.Opcode = opPollAdd
	s.FD = int32(fd)
	s.OpFlags = pollIn
	s.UserData = tag
	r.commit(idx)
	return nil
}

// PrepTimeout enqueues a relative timeout that completes when duration
// elapses, tagged with tag.
func (r *Ring) PrepTimeout(d time.Duration, tag uint64) error {
	s, idx, err := r.nextSQE()
	if err != nil {
		return err
	}
	ts := &kernelTimespec{
		Sec:  int64(d / time.Second),
		Nsec: int64(d % time.Second),
	}
	r.pending = append(r.pending, ts)

	s.Opcode = opTimeout
	s.Addr = uint64(uintptr(unsafe.Pointer(ts)))
	s.Len = 1
	s.UserData = tag
	r.commit(idx)
	return nil
}

// PrepCancel enqueues an asynchronous cancellation of the entry
// previously submitted with user-data targetTag.
func (r *Ring) PrepCancel(targetTag, tag uint64) error {
	s, idx, err := r.nextSQE()
	if err != nil {
		return err
	}
	s.Opcode = opAsyncCancel
	s.Addr = targetTag
	s.UserData = tag
	r.commit(idx)
	return nil
}

// SubmitAndWait publishes pending submissions and blocks until at
// least one completion is available. It returns the kernel's return
// value, or 0 if the call was interrupted by a signal.
func (r *Ring) SubmitAndWait() (int, error) {
	toSubmit := *r.sqTail - *r.sqHead
	n, _, errno := unix.Syscall6(sysIOURingEnter, uintptr(r.fd), uintptr(toSubmit), 1, enterGetEvents, 0, 0)
	if errno == unix.EINTR {
		return 0, nil
	}
	if errno != 0 {
		return 0, fmt.Errorf("io_uring_enter: %w", errno)
	}
	mfence()
	// io_uring_enter has already copied every submitted timeout's
	// timespec into kernel state by this point, so their backing memory
	// is safe to release.
	r.pending = r.pending[:0]
	return int(n), nil
}

// Completion is one drained completion queue entry.
type Completion struct {
	Tag    uint64
	Result int32
}

// PeekCQE returns the next unconsumed completion without advancing the
// head. The bool is false when the completion queue is empty.
func (r *Ring) PeekCQE() (Completion, bool) {
	head := *r.cqHead
	tail := *r.cqTail
	if head == tail {
		return Completion{}, false
	}
	c := (*cqe)(unsafe.Add(unsafe.Pointer(r.cqes), uintptr(head&r.cqMask)*unsafe.Sizeof(cqe{})))
	return Completion{Tag: c.UserData, Result: c.Res}, true
}

// CQESeen advances the completion queue head past the entry returned
// by the most recent PeekCQE.
func (r *Ring) CQESeen() {
	sfence()
	*r.cqHead = *r.cqHead + 1
}

// Close unmaps the ring's shared regions and closes the ring fd.
func (r *Ring) Close() error {
	unix.Munmap(r.sqRing)
	unix.Munmap(r.cqRing)
	unix.Munmap(r.sqesMem)
	return unix.Close(r.fd)
}
