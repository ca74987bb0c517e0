package abraxas

import (
	"errors"
	"fmt"
	"syscall"
)

// Code is a high-level error category.
type Code string

const (
	CodeInvalidTemp       Code = "invalid temperature"
	CodeDeviceOpen        Code = "device open failed"
	CodeDeviceResources   Code = "device resources unavailable"
	CodeCrtcMissing       Code = "crtc missing"
	CodeGammaSet          Code = "gamma set failed"
	CodeNoUsableCrtc      Code = "no usable crtc"
	CodePermission        Code = "permission denied"
	CodeCompositorConnect Code = "compositor connect failed"
	CodeCompositorProto   Code = "compositor protocol error"
	CodeCompositorDbus    Code = "compositor dbus error"
	CodeIoRing            Code = "io ring error"
	CodeSubprocess        Code = "subprocess error"
	CodeParse             Code = "parse error"
	CodeIo                Code = "io error"
)

// Error is a structured error with subsystem context and errno mapping.
type Error struct {
	Op      string // operation that failed, e.g. "gamma.init", "weather.fetch"
	Backend string // backend name, if applicable ("drm", "wlr", "dbus", "x11")
	CRTC    int    // CRTC index, -1 if not applicable
	Code    Code
	Errno   syscall.Errno
	Msg     string
	Inner   error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.CRTC >= 0 {
		parts = append(parts, fmt.Sprintf("crtc=%d", e.CRTC))
	}
	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("abraxas: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("abraxas: %s", msg)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// New creates a structured error.
func New(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg, CRTC: -1}
}

// NewWithErrno creates a structured error carrying a kernel errno.
func NewWithErrno(op string, code Code, errno syscall.Errno) *Error {
	return &Error{Op: op, Code: code, Errno: errno, Msg: errno.Error(), CRTC: -1}
}

// NewBackendError creates an error scoped to a specific gamma backend/CRTC.
func NewBackendError(op, backend string, crtc int, code Code, msg string) *Error {
	return &Error{Op: op, Backend: backend, CRTC: crtc, Code: code, Msg: msg}
}

// Wrap wraps an existing error with abraxas context, mapping syscall
// errnos to a Code where possible.
func Wrap(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if ae, ok := inner.(*Error); ok {
		return &Error{
			Op: op, Backend: ae.Backend, CRTC: ae.CRTC,
			Code: ae.Code, Errno: ae.Errno, Msg: ae.Msg, Inner: ae.Inner,
		}
	}

	if errno, ok := inner.(syscall.Errno); ok {
		return &Error{Op: op, CRTC: -1, Code: mapErrnoToCode(errno), Errno: errno, Msg: errno.Error(), Inner: inner}
	}

	return &Error{Op: op, CRTC: -1, Code: CodeIo, Msg: inner.Error(), Inner: inner}
}

func mapErrnoToCode(errno syscall.Errno) Code {
	switch errno {
	case syscall.EACCES, syscall.EPERM:
		return CodePermission
	case syscall.ENOENT, syscall.ENODEV:
		return CodeDeviceOpen
	case syscall.EBUSY, syscall.ENOMEM, syscall.ENOSPC:
		return CodeDeviceResources
	default:
		return CodeIo
	}
}

// IsCode reports whether err (or any error in its chain) has the given Code.
func IsCode(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
