package sandbox

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Raw landlock syscall numbers (x86_64); golang.org/x/sys/unix does not
// wrap these directly on most release tags, so they're dialed via
// unix.Syscall the same way the kernel ABI itself is unversioned here.
const (
	sysLandlockCreateRuleset = 444
	sysLandlockAddRule       = 445
	sysLandlockRestrictSelf  = 446

	landlockCreateRulesetVersion = 1 << 0
	landlockRulePathBeneath      = 1

	accessFSExecute    = 1 << 0
	accessFSWriteFile  = 1 << 1
	accessFSReadFile   = 1 << 2
	accessFSReadDir    = 1 << 3
	accessFSRemoveFile = 1 << 5
	accessFSMakeDir    = 1 << 7
	accessFSMakeReg    = 1 << 8
)

type rulesetAttr struct {
	HandledAccessFS  uint64
	HandledAccessNet uint64
}

type pathBeneathAttr struct {
	AllowedAccess uint64
	ParentFD      int32
}

func addPathRule(rulesetFD int, path string, access uint64) bool {
	fd, err := unix.Open(path, unix.O_PATH|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	rule := pathBeneathAttr{AllowedAccess: access, ParentFD: int32(fd)}
	_, _, errno := unix.Syscall6(sysLandlockAddRule, uintptr(rulesetFD), landlockRulePathBeneath,
		uintptr(unsafe.Pointer(&rule)), 0, 0, 0)
	return errno == 0
}

// InstallLandlock restricts filesystem access to the paths this daemon
// actually touches: its own config directory, /dev for DRM ioctls,
// /proc for process info, /usr and /lib* for the weather-fetch child's
// dynamic linker and curl binary, /etc for timezone/resolver data, and
// /tmp for the child's scratch files. Returns false without error on
// kernels lacking landlock (pre-5.13) — this is advisory hardening,
// not a hard requirement to run.
func InstallLandlock(configDir string) bool {
	abi, _, errno := unix.Syscall(sysLandlockCreateRuleset, 0, 0, landlockCreateRulesetVersion)
	if errno != 0 || int32(abi) < 0 {
		return false
	}

	attr := rulesetAttr{
		HandledAccessFS: accessFSReadFile | accessFSReadDir | accessFSWriteFile |
			accessFSRemoveFile | accessFSMakeReg | accessFSMakeDir | accessFSExecute,
	}
	rulesetFD, _, errno := unix.Syscall(sysLandlockCreateRuleset,
		uintptr(unsafe.Pointer(&attr)), unsafe.Sizeof(attr), 0)
	if errno != 0 || int32(rulesetFD) < 0 {
		return false
	}
	fd := int(rulesetFD)
	defer unix.Close(fd)

	readOnly := uint64(accessFSReadFile | accessFSReadDir)
	configAccess := accessFSReadFile | accessFSReadDir | accessFSWriteFile |
		accessFSRemoveFile | accessFSMakeReg | accessFSMakeDir

	addPathRule(fd, configDir, uint64(configAccess))
	addPathRule(fd, "/dev", readOnly)
	addPathRule(fd, "/proc", readOnly)
	addPathRule(fd, "/usr", readOnly|accessFSExecute)
	addPathRule(fd, "/etc", readOnly)
	addPathRule(fd, "/lib", readOnly)
	addPathRule(fd, "/lib64", readOnly)
	addPathRule(fd, "/tmp", uint64(accessFSReadFile|accessFSWriteFile|accessFSMakeReg))

	_, _, errno = unix.Syscall(sysLandlockRestrictSelf, uintptr(fd), 0, 0)
	return errno == 0
}
