//go:build linux

package ring

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func skipIfNoIOURing(t *testing.T) *Ring {
	t.Helper()
	r, err := Init(8)
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	return r
}

func TestInitClose(t *testing.T) {
	r := skipIfNoIOURing(t)
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPrepPollReadable(t *testing.T) {
	r := skipIfNoIOURing(t)
	defer r.Close()

	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair() error = %v", err)
	}
	defer syscall.Close(fds[0])
	defer syscall.Close(fds[1])

	if err := r.PrepPoll(fds[0], 42); err != nil {
		t.Fatalf("PrepPoll() error = %v", err)
	}
	if _, err := syscall.Write(fds[1], []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := r.SubmitAndWait(); err != nil {
		t.Fatalf("SubmitAndWait() error = %v", err)
	}

	c, ok := r.PeekCQE()
	if !ok {
		t.Fatal("expected a completion")
	}
	if c.Tag != 42 {
		t.Errorf("Tag = %d, want 42", c.Tag)
	}
	r.CQESeen()
}

func TestPrepTimeoutElapses(t *testing.T) {
	r := skipIfNoIOURing(t)
	defer r.Close()

	if err := r.PrepTimeout(20*time.Millisecond, 7); err != nil {
		t.Fatalf("PrepTimeout() error = %v", err)
	}

	start := time.Now()
	if _, err := r.SubmitAndWait(); err != nil {
		t.Fatalf("SubmitAndWait() error = %v", err)
	}
	elapsed := time.Since(start)

	c, ok := r.PeekCQE()
	if !ok {
		t.Fatal("expected a completion")
	}
	if c.Tag != 7 {
		t.Errorf("Tag = %d, want 7", c.Tag)
	}
	r.CQESeen()

	if elapsed < 10*time.Millisecond {
		t.Errorf("timeout fired too early: %v", elapsed)
	}
}

func TestPrepCancel(t *testing.T) {
	r := skipIfNoIOURing(t)
	defer r.Close()

	// Both entries are queued before the first submit so the cancel
	// races the timeout instead of waiting out its full duration.
	if err := r.PrepTimeout(10*time.Second, 100); err != nil {
		t.Fatalf("PrepTimeout() error = %v", err)
	}
	if err := r.PrepCancel(100, 200); err != nil {
		t.Fatalf("PrepCancel() error = %v", err)
	}

	seenCancel, seenTimeout := false, false
	for i := 0; i < 10 && !(seenCancel && seenTimeout); i++ {
		if _, err := r.SubmitAndWait(); err != nil {
			t.Fatalf("SubmitAndWait() error = %v", err)
		}
		for {
			c, ok := r.PeekCQE()
			if !ok {
				break
			}
			switch c.Tag {
			case 100:
				seenTimeout = true
			case 200:
				seenCancel = true
			}
			r.CQESeen()
		}
	}
	if !seenCancel || !seenTimeout {
		t.Errorf("seenCancel=%v seenTimeout=%v, want both true", seenCancel, seenTimeout)
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
