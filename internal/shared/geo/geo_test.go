package geo

import "testing"

func TestHaversineKm(t *testing.T) {
	// Barcelona (41.3874, 2.1686) to Madrid (40.4168, -3.7038) ~ 500-510 km
	d := HaversineKm(41.3874, 2.1686, 40.4168, -3.7038)
	if d < 480 || d > 530 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestParsePoint(t *testing.T) {
	lat, lng, err := ParsePoint("41.3874, 2.1686")
	if err != nil {
		t.Fatalf("parse point: %v", err)
	}
	if lat != 41.3874 || lng != 2.1686 {
		t.Fatalf("unexpected coordinates: %v %v", lat, lng)
	}
}

func TestParsePointInvalid(t *testing.T) {
	for _, s := range []string{"", "41.3", "a,b", "91,0", "0,181"} {
		if _, _, err := ParsePoint(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
