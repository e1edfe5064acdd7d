package beacon

import "testing"

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator()

	if !d.Admit("AA:AA") {
		t.Error("expected first AA:AA to be admitted")
	}
	if d.Admit("AA:AA") {
		t.Error("expected second AA:AA to be rejected")
	}
	if !d.Admit("BB:BB") {
		t.Error("expected BB:BB to be admitted")
	}
	if d.Admit("AA:AA") {
		t.Error("expected AA:AA to stay rejected")
	}
	if d.Len() != 2 {
		t.Errorf("expected 2 identities, got %d", d.Len())
	}
}

func TestMerge(t *testing.T) {
	home := runFrames(t, "home_5g",
		beaconFrame("AA:AA", "-40", "-90"),
		beaconFrame("BB:BB", "-60", "-90"),
	)
	empty := runFrames(t, "empty")
	office := runFrames(t, "office",
		beaconFrame("AA:AA", "-70", ""),
		beaconFrame("CC:CC", "-50", ""),
		beaconFrame("DD:DD", "-52", ""),
	)

	merged := Merge(home, empty, office)

	if want := len(home.Records) + len(empty.Records) + len(office.Records); len(merged) != want {
		t.Fatalf("expected %d merged records, got %d", want, len(merged))
	}

	want := []struct{ source, bssid string }{
		{"home_5g", "AA:AA"},
		{"home_5g", "BB:BB"},
		{"office", "AA:AA"},
		{"office", "CC:CC"},
		{"office", "DD:DD"},
	}
	for i, w := range want {
		if merged[i].Source != w.source || merged[i].BSSID != w.bssid {
			t.Errorf("record %d: expected %s/%s, got %s/%s", i, w.source, w.bssid, merged[i].Source, merged[i].BSSID)
		}
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	run := runFrames(t, "s", beaconFrame("01", "-40", ""))
	merged := Merge(run)
	merged[0].SSID = "changed"

	if run.Records[0].SSID == "changed" {
		t.Error("expected merged slice to be independent of the run")
	}
}

func TestMerge_NoRuns(t *testing.T) {
	if got := Merge(); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
