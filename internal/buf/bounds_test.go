package buf

import "testing"

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(^uintptr(0), 1); ok {
		t.Fatalf("expected overflow when adding to ^uintptr(0)")
	}
	if sum, ok := AddOverflowSafe(^uintptr(0), 0); !ok || sum != ^uintptr(0) {
		t.Fatalf("adding zero to max should not overflow")
	}
}

func TestSubUnderflowSafe(t *testing.T) {
	if d, ok := SubUnderflowSafe(10, 4); !ok || d != 6 {
		t.Fatalf("SubUnderflowSafe(10,4)=%d,%v want 6,true", d, ok)
	}
	if _, ok := SubUnderflowSafe(4, 10); ok {
		t.Fatalf("expected underflow for 4-10")
	}
	if d, ok := SubUnderflowSafe(7, 7); !ok || d != 0 {
		t.Fatalf("SubUnderflowSafe(7,7)=%d,%v want 0,true", d, ok)
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(3, 0x1000); !ok || p != 0x3000 {
		t.Fatalf("MulOverflowSafe(3,0x1000)=%#x,%v", p, ok)
	}
	if p, ok := MulOverflowSafe(0, ^uintptr(0)); !ok || p != 0 {
		t.Fatalf("zero operand should give 0,true")
	}
	if _, ok := MulOverflowSafe(^uintptr(0)/2+1, 2); ok {
		t.Fatalf("expected overflow")
	}
}

func TestCheckRange(t *testing.T) {
	off, err := CheckRange(0x1000, 0x2000, 0x1800, 0x100)
	if err != nil || off != 0x800 {
		t.Fatalf("CheckRange = %#x, %v; want 0x800, nil", off, err)
	}
	if _, err := CheckRange(0x1000, 0x2000, 0x0fff, 1); err == nil {
		t.Fatalf("expected error below base")
	}
	if _, err := CheckRange(0x1000, 0x2000, 0x2f00, 0x200); err == nil {
		t.Fatalf("expected error past end")
	}
	if _, err := CheckRange(0, 0x2000, 0x10, ^uintptr(0)); err == nil {
		t.Fatalf("expected overflow error")
	}
	if off, err := CheckRange(0x1000, 0x2000, 0x3000, 0); err != nil || off != 0x2000 {
		t.Fatalf("empty range at end should be valid: %#x, %v", off, err)
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if got, _ := Slice(data, 1, 3); cap(got) != 3 {
		t.Fatalf("Slice cap = %d, want 3", cap(got))
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
