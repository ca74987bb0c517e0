package colorramp

import "testing"

func TestFillMonotonicAndBounded(t *testing.T) {
	const size = 64
	r := make([]uint16, size)
	g := make([]uint16, size)
	b := make([]uint16, size)

	if err := Fill(6500, size, r, g, b, 1.0); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	for i := 1; i < size; i++ {
		if r[i] < r[i-1] || g[i] < g[i-1] || b[i] < b[i-1] {
			t.Fatalf("ramp not monotonic at index %d", i)
		}
	}
}

func TestFillWarmerHasLessBlue(t *testing.T) {
	const size = 32
	rWarm := make([]uint16, size)
	gWarm := make([]uint16, size)
	bWarm := make([]uint16, size)
	rCool := make([]uint16, size)
	gCool := make([]uint16, size)
	bCool := make([]uint16, size)

	if err := Fill(2900, size, rWarm, gWarm, bWarm, 1.0); err != nil {
		t.Fatalf("Fill(2900) error = %v", err)
	}
	if err := Fill(6500, size, rCool, gCool, bCool, 1.0); err != nil {
		t.Fatalf("Fill(6500) error = %v", err)
	}

	if bWarm[size-1] >= bCool[size-1] {
		t.Errorf("warm blue %d should be less than cool blue %d", bWarm[size-1], bCool[size-1])
	}
}

func TestFillBrightnessScales(t *testing.T) {
	const size = 16
	rFull := make([]uint16, size)
	gFull := make([]uint16, size)
	bFull := make([]uint16, size)
	rHalf := make([]uint16, size)
	gHalf := make([]uint16, size)
	bHalf := make([]uint16, size)

	Fill(6500, size, rFull, gFull, bFull, 1.0)
	Fill(6500, size, rHalf, gHalf, bHalf, 0.5)

	if rHalf[size-1] >= rFull[size-1] {
		t.Errorf("half brightness red %d should be less than full %d", rHalf[size-1], rFull[size-1])
	}
}

func TestFillRejectsInvalidTemp(t *testing.T) {
	r := make([]uint16, 8)
	g := make([]uint16, 8)
	b := make([]uint16, 8)

	if err := Fill(500, 8, r, g, b, 1.0); err == nil {
		t.Error("expected error for temperature below range")
	}
	if err := Fill(30000, 8, r, g, b, 1.0); err == nil {
		t.Error("expected error for temperature above range")
	}
}

func TestFillRejectsUndersizedBuffers(t *testing.T) {
	r := make([]uint16, 4)
	g := make([]uint16, 4)
	b := make([]uint16, 4)

	if err := Fill(6500, 8, r, g, b, 1.0); err == nil {
		t.Error("expected error for undersized buffers")
	}
}

func TestIdentityRampIsLinear(t *testing.T) {
	const size = 8
	r := make([]uint16, size)
	g := make([]uint16, size)
	b := make([]uint16, size)

	Identity(size, r, g, b)

	if r[0] != 0 {
		t.Errorf("Identity ramp should start at 0, got %d", r[0])
	}
	if r[size-1] != 65535 {
		t.Errorf("Identity ramp should end at max, got %d", r[size-1])
	}
	for i := range r {
		if r[i] != g[i] || g[i] != b[i] {
			t.Errorf("Identity ramp should be equal across channels at index %d", i)
		}
	}
}
