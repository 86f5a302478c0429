package store

import (
	"errors"
	"testing"
	"time"

	"github.com/SaadKaleem/redust/internal/rerr"
)

func TestStore_SetGet(t *testing.T) {
	s := New()

	_, existed, err := s.Set("k", StringValue("v1"), SetOptions{})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if existed {
		t.Errorf("existed = true, want false for first Set")
	}

	v, ok := s.Get("k")
	if !ok || v.Str != "v1" {
		t.Errorf("Get = (%+v, %v), want (v1, true)", v, ok)
	}

	prev, existed, err := s.Set("k", StringValue("v2"), SetOptions{})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !existed || prev.Str != "v1" {
		t.Errorf("got prev=%+v existed=%v, want v1/true", prev, existed)
	}
}

func TestStore_SetNX(t *testing.T) {
	s := New()
	s.Set("k", StringValue("v1"), SetOptions{})

	_, _, err := s.Set("k", StringValue("v2"), SetOptions{NX: true})
	var rerrErr *rerr.Error
	if !errors.As(err, &rerrErr) || rerrErr.Kind != rerr.ConditionNotMet {
		t.Fatalf("Set NX against existing key: err = %v, want ConditionNotMet", err)
	}

	v, _ := s.Get("k")
	if v.Str != "v1" {
		t.Errorf("value changed despite failed NX: got %q", v.Str)
	}

	_, _, err = s.Set("fresh", StringValue("v"), SetOptions{NX: true})
	if err != nil {
		t.Fatalf("Set NX against missing key failed: %v", err)
	}
}

func TestStore_SetXX(t *testing.T) {
	s := New()

	_, _, err := s.Set("missing", StringValue("v"), SetOptions{XX: true})
	var rerrErr *rerr.Error
	if !errors.As(err, &rerrErr) || rerrErr.Kind != rerr.ConditionNotMet {
		t.Fatalf("Set XX against missing key: err = %v, want ConditionNotMet", err)
	}

	s.Set("k", StringValue("v1"), SetOptions{})
	_, _, err = s.Set("k", StringValue("v2"), SetOptions{XX: true})
	if err != nil {
		t.Fatalf("Set XX against existing key failed: %v", err)
	}
}

func TestStore_SetTTLExpires(t *testing.T) {
	s := New()
	ttl := 10 * time.Millisecond
	s.Set("k", StringValue("v"), SetOptions{TTL: &ttl})

	if _, ok := s.Get("k"); !ok {
		t.Fatalf("key should exist immediately after Set")
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok := s.Get("k"); ok {
		t.Errorf("key should have expired")
	}
}

func TestStore_ExistsDel(t *testing.T) {
	s := New()
	s.Set("a", StringValue("1"), SetOptions{})
	s.Set("b", StringValue("2"), SetOptions{})

	if n := s.Exists("a", "b", "missing"); n != 2 {
		t.Errorf("Exists = %d, want 2", n)
	}
	if n := s.Del("a", "missing"); n != 1 {
		t.Errorf("Del = %d, want 1", n)
	}
	if n := s.Exists("a"); n != 0 {
		t.Errorf("Exists(a) after Del = %d, want 0", n)
	}
}

func TestStore_IncrDecr(t *testing.T) {
	s := New()

	n, err := s.Incr("counter", 1)
	if err != nil || n != 1 {
		t.Fatalf("Incr on missing key = (%d, %v), want (1, nil)", n, err)
	}

	n, err = s.Incr("counter", 1)
	if err != nil || n != 2 {
		t.Fatalf("Incr = (%d, %v), want (2, nil)", n, err)
	}

	n, err = s.Incr("counter", -1)
	if err != nil || n != 1 {
		t.Fatalf("Incr with negative delta = (%d, %v), want (1, nil)", n, err)
	}
}

func TestStore_IncrWrongType(t *testing.T) {
	s := New()
	s.LPush("list", "a")

	_, err := s.Incr("list", 1)
	var rerrErr *rerr.Error
	if !errors.As(err, &rerrErr) || rerrErr.Kind != rerr.ConditionNotMet {
		t.Fatalf("Incr against list: err = %v, want ConditionNotMet", err)
	}
}

func TestStore_IncrNotAnInteger(t *testing.T) {
	s := New()
	s.Set("k", StringValue("not-a-number"), SetOptions{})

	_, err := s.Incr("k", 1)
	var rerrErr *rerr.Error
	if !errors.As(err, &rerrErr) || rerrErr.Kind != rerr.ConditionNotMet {
		t.Fatalf("Incr on non-integer string: err = %v, want ConditionNotMet", err)
	}
}

func TestStore_LPushRPush(t *testing.T) {
	s := New()

	n, err := s.RPush("list", "a", "b")
	if err != nil || n != 2 {
		t.Fatalf("RPush = (%d, %v), want (2, nil)", n, err)
	}

	n, err = s.LPush("list", "z")
	if err != nil || n != 3 {
		t.Fatalf("LPush = (%d, %v), want (3, nil)", n, err)
	}

	vals, err := s.LRange("list", 0, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	want := []string{"z", "a", "b"}
	if !equalSlices(vals, want) {
		t.Errorf("LRange = %v, want %v", vals, want)
	}
}

func TestStore_LRangeNegativeIndices(t *testing.T) {
	s := New()
	s.RPush("list", "a", "b", "c", "d")

	vals, err := s.LRange("list", -2, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if !equalSlices(vals, []string{"c", "d"}) {
		t.Errorf("LRange(-2,-1) = %v, want [c d]", vals)
	}
}

func TestStore_LRangeMissingKey(t *testing.T) {
	s := New()
	vals, err := s.LRange("missing", 0, -1)
	if err != nil {
		t.Fatalf("LRange on missing key failed: %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("LRange on missing key = %v, want empty", vals)
	}
}

func TestStore_LRangeOutOfBounds(t *testing.T) {
	s := New()
	s.RPush("list", "a", "b")

	vals, err := s.LRange("list", 5, 10)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("LRange out of bounds = %v, want empty", vals)
	}
}

func TestStore_PushWrongType(t *testing.T) {
	s := New()
	s.Set("k", StringValue("v"), SetOptions{})

	_, err := s.LPush("k", "x")
	var rerrErr *rerr.Error
	if !errors.As(err, &rerrErr) || rerrErr.Kind != rerr.ConditionNotMet {
		t.Fatalf("LPush against string: err = %v, want ConditionNotMet", err)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
