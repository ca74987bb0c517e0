// Package sandbox installs a seccomp-bpf syscall whitelist and a
// landlock filesystem restriction before the reactor enters its event
// loop. Both are raw-syscall, no libseccomp/liblandlock dependency,
// matching the narrow fixed syscall surface a single-threaded
// poll/timeout/cancel reactor actually needs.
package sandbox

import (
	"fmt"
	"syscall"
	"unsafe"
)

const (
	prSetNoNewPrivs = 38
	prSetSeccomp    = 22
	seccompModeFilter = 2

	bpfLD  = 0x00
	bpfJMP = 0x05
	bpfRET = 0x06
	bpfW   = 0x00
	bpfABS = 0x20
	bpfJEQ = 0x10
	bpfK   = 0x00

	seccompRetKillProcess = 0x80000000
	seccompRetAllow       = 0x7fff0000

	auditArchX86_64 = 0xc000003e

	offsetArch = 4
	offsetNR   = 0
)

// x86_64 syscall numbers, from asm/unistd_64.h, restricted to what
// this daemon's reactor, its gamma backends, and its weather child
// process spawn path actually call.
const (
	nrRead             = 0
	nrWrite            = 1
	nrClose            = 3
	nrFstat            = 5
	nrPoll             = 7
	nrLseek            = 8
	nrMmap             = 9
	nrMprotect         = 10
	nrMunmap           = 11
	nrBrk              = 12
	nrRtSigaction      = 13
	nrRtSigprocmask    = 14
	nrRtSigreturn      = 15
	nrIoctl            = 16
	nrPread64          = 17
	nrWritev           = 20
	nrAccess           = 21
	nrSchedYield       = 24
	nrMremap           = 25
	nrMadvise          = 28
	nrDup2             = 33
	nrNanosleep        = 35
	nrGetpid           = 39
	nrSocket           = 41
	nrConnect          = 42
	nrSendto           = 44
	nrRecvfrom         = 45
	nrSendmsg          = 46
	nrRecvmsg          = 47
	nrShutdown         = 48
	nrBind             = 49
	nrGetsockname      = 51
	nrGetpeername      = 52
	nrSetsockopt       = 54
	nrGetsockopt       = 55
	nrClone            = 56
	nrExecve           = 59
	nrExit             = 60
	nrWait4            = 61
	nrKill             = 62
	nrUname            = 63
	nrFcntl            = 72
	nrFtruncate        = 77
	nrGetcwd           = 79
	nrMkdir            = 83
	nrUnlink           = 87
	nrReadlink         = 89
	nrGettimeofday     = 96
	nrGetuid           = 102
	nrGetgid           = 104
	nrGeteuid          = 107
	nrGetegid          = 108
	nrSigaltstack      = 131
	nrPrctl            = 157
	nrArchPrctl        = 158
	nrFutex            = 202
	nrSchedGetaffinity = 204
	nrGetdents64       = 217
	nrSetTidAddress    = 218
	nrClockGettime     = 228
	nrEpollWait        = 232
	nrClockNanosleep   = 230
	nrExitGroup        = 231
	nrEpollCreate1     = 291
	nrEpollCtl         = 233
	nrEpollPwait       = 281
	nrSignalfd4        = 289
	nrEventfd2         = 290
	nrDup3             = 292
	nrPipe2            = 293
	nrInotifyInit1     = 294
	nrInotifyAddWatch  = 254
	nrPrlimit64        = 302
	nrGetrandom        = 318
	nrMemfdCreate      = 319
	nrStatx            = 332
	nrRseq             = 334
	nrIoUringSetup     = 425
	nrIoUringEnter     = 426
	nrIoUringRegister  = 427
	nrClone3           = 435
	nrFaccessat2       = 439
	nrNewfstatat       = 262
	nrRecvmmsg         = 299
	nrSendmmsg         = 307
	nrSetRobustList    = 273
	nrPpoll            = 271
	nrUnlinkat         = 263
	nrReadlinkat       = 267
	nrOpenat           = 257
	nrMkdirat          = 258
)

var allowedSyscalls = []uint32{
	nrRead, nrWrite, nrNewfstatat, nrClose, nrFstat, nrLseek, nrPread64,
	nrMmap, nrMunmap, nrMprotect, nrBrk, nrMremap, nrMadvise,
	nrIoUringSetup, nrIoUringEnter, nrIoUringRegister,
	nrClockGettime, nrClockNanosleep, nrNanosleep, nrGettimeofday,
	nrIoctl,
	nrClone3, nrClone, nrExecve, nrPipe2, nrDup2, nrDup3, nrWait4,
	nrSetRobustList, nrRseq, nrPrlimit64, nrArchPrctl, nrSetTidAddress,
	nrRtSigprocmask, nrRtSigaction, nrRtSigreturn, nrSigaltstack,
	nrUnlink, nrMkdir, nrAccess, nrFaccessat2, nrFcntl, nrGetcwd,
	nrReadlink, nrStatx, nrGetrandom, nrFtruncate, nrMemfdCreate,
	nrOpenat, nrMkdirat, nrReadlinkat, nrUnlinkat,
	nrGetpid, nrGetuid, nrGeteuid, nrGetgid, nrGetegid, nrKill,
	nrPrctl, nrFutex,
	nrExit, nrExitGroup,
	nrSignalfd4, nrInotifyInit1, nrInotifyAddWatch,
	nrSocket, nrConnect, nrBind, nrSetsockopt, nrGetsockopt, nrShutdown,
	nrSendto, nrSendmsg, nrSendmmsg, nrRecvfrom, nrRecvmsg, nrRecvmmsg,
	nrGetpeername, nrGetsockname, nrPoll, nrPpoll, nrWritev, nrUname,
	nrEpollCreate1, nrEpollCtl, nrEpollWait, nrEpollPwait, nrEventfd2,
	nrGetdents64,
	nrSchedYield, nrSchedGetaffinity,
}

type sockFilter struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

type sockFprog struct {
	Len    uint16
	Filter *sockFilter
}

func bpfStmt(code uint16, k uint32) sockFilter {
	return sockFilter{Code: code, K: k}
}

func bpfJump(code uint16, k uint32, jt, jf uint8) sockFilter {
	return sockFilter{Code: code, Jt: jt, Jf: jf, K: k}
}

func buildFilter() []sockFilter {
	filter := []sockFilter{
		bpfStmt(bpfLD|bpfW|bpfABS, offsetArch),
		bpfJump(bpfJMP|bpfJEQ|bpfK, auditArchX86_64, 1, 0),
		bpfStmt(bpfRET|bpfK, seccompRetKillProcess),
		bpfStmt(bpfLD|bpfW|bpfABS, offsetNR),
	}
	for _, nr := range allowedSyscalls {
		filter = append(filter,
			bpfJump(bpfJMP|bpfJEQ|bpfK, nr, 0, 1),
			bpfStmt(bpfRET|bpfK, seccompRetAllow),
		)
	}
	filter = append(filter, bpfStmt(bpfRET|bpfK, seccompRetKillProcess))
	return filter
}

// InstallSeccomp sets PR_SET_NO_NEW_PRIVS and installs the syscall
// whitelist. Any syscall outside the whitelist kills the process
// immediately (SECCOMP_RET_KILL_PROCESS), matching the fail-closed
// posture of a daemon that runs unattended and unprivileged.
func InstallSeccomp() error {
	if _, _, errno := syscall.Syscall(syscall.SYS_PRCTL, prSetNoNewPrivs, 1, 0); errno != 0 {
		return fmt.Errorf("sandbox: prctl(PR_SET_NO_NEW_PRIVS): %w", errno)
	}

	filter := buildFilter()
	prog := sockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}

	if _, _, errno := syscall.Syscall(syscall.SYS_PRCTL, prSetSeccomp, seccompModeFilter,
		uintptr(unsafe.Pointer(&prog))); errno != 0 {
		return fmt.Errorf("sandbox: prctl(PR_SET_SECCOMP): %w", errno)
	}
	return nil
}
