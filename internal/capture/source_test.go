package capture

import (
	"context"
	"errors"
	"testing"
)

func TestValue(t *testing.T) {
	r := Record{
		FieldTransmitter: {"aa:bb:cc:dd:ee:ff", "11:22:33:44:55:66"},
		FieldNoise:       {},
	}

	if v, ok := Value(r, FieldTransmitter); !ok || v != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("expected first transmitter value, got %q (%v)", v, ok)
	}
	if _, ok := Value(r, FieldNoise); ok {
		t.Error("expected field without values to be absent")
	}
	if _, ok := Value(r, FieldBSSID); ok {
		t.Error("expected missing field to be absent")
	}
}

func TestRecord_SetAdd(t *testing.T) {
	r := Record{}
	r.Set(FieldChannel, "36")
	r.Add(FieldTags, SSIDTag("HomeNet"))
	r.Add(FieldTags, Tag("DS Parameter set", "Current Channel: 36"))

	if v, _ := Value(r, FieldChannel); v != "36" {
		t.Errorf("expected channel 36, got %q", v)
	}
	tags, _ := r.Lookup(FieldTags)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0] != `Tag: SSID parameter set: "HomeNet"` {
		t.Errorf("unexpected SSID tag %q", tags[0])
	}
}

func TestSliceSource(t *testing.T) {
	ctx := context.Background()
	src := NewSliceSource(Record{FieldBSSID: {"a"}}, Record{FieldBSSID: {"b"}})

	if src.Current() != nil {
		t.Error("expected no current frame before Next")
	}

	var got []string
	for src.Next(ctx) {
		v, _ := Value(src.Current(), FieldBSSID)
		got = append(got, v)
	}
	if err := src.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected frames %v", got)
	}
	if src.Next(ctx) {
		t.Error("expected exhausted source to stay exhausted")
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSliceSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSliceSource(Record{})
	if src.Next(ctx) {
		t.Fatal("expected Next to fail on cancelled context")
	}
	if !errors.Is(src.Error(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", src.Error())
	}
}

func TestSliceSource_Closed(t *testing.T) {
	src := NewSliceSource(Record{})
	_ = src.Close()

	if src.Next(context.Background()) {
		t.Fatal("expected Next to fail after Close")
	}
	if !errors.Is(src.Error(), ErrSourceClosed) {
		t.Errorf("expected ErrSourceClosed, got %v", src.Error())
	}
}
