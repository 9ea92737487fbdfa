package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPlatooningXML_RoundTrip(t *testing.T) {
	// GIVEN the generated platooning configuration on disk
	out, err := PlatooningXML()
	if err != nil {
		t.Fatalf("PlatooningXML: %v", err)
	}
	path := filepath.Join(t.TempDir(), "platooning.xml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}

	// WHEN it is loaded back
	s, err := LoadPlatooningXML(path)
	if err != nil {
		t.Fatalf("LoadPlatooningXML: %v", err)
	}

	// THEN the fields the run path consumes survive the trip
	if s.VehicleSelector != TypeTruck {
		t.Errorf("selector: got %q, want %q", s.VehicleSelector, TypeTruck)
	}
	if s.Leader != TypePlatoonLeader || s.Follower != TypePlatoonFollower {
		t.Errorf("vTypeMap: got leader %q follower %q", s.Leader, s.Follower)
	}
	if s.MaxVehicleLength != 12.0 {
		t.Errorf("maxVehicleLength: got %v, want 12.0", s.MaxVehicleLength)
	}
	if s.MaxPlatoonGap != 10.0 {
		t.Errorf("maxPlatoonGap: got %v, want 10.0", s.MaxPlatoonGap)
	}
	if s.CatchupHeadway != 2.0 {
		t.Errorf("catchupHeadway: got %v, want 2.0", s.CatchupHeadway)
	}
	if s.PlatoonSplitTime != 3.0 {
		t.Errorf("platoonSplitTime: got %v, want 3.0", s.PlatoonSplitTime)
	}
}

func TestLoadPlatooningXML_MissingVTypeMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platooning.xml")
	xml := `<configuration><vehicleSelectors value="truck"/><maxVehicleLength value="12"/></configuration>`
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadPlatooningXML(path)
	if err == nil || !strings.Contains(err.Error(), "vTypeMap") {
		t.Errorf("got %v, want missing vTypeMap error", err)
	}
}

func TestLoadPlatooningXML_NonNumericGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platooning.xml")
	xml := `<configuration>
  <vehicleSelectors value="truck"/>
  <maxVehicleLength value="12.0"/>
  <maxPlatoonGap value="ten"/>
  <catchupHeadway value="2.0"/>
  <platoonSplitTime value="3.0"/>
  <vTypeMap original="truck" leader="truck_platoon_leader" follower="truck_platoon_follower"/>
</configuration>`
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadPlatooningXML(path)
	if err == nil || !strings.Contains(err.Error(), "maxPlatoonGap") {
		t.Errorf("got %v, want maxPlatoonGap parse error", err)
	}
}

func TestLoadPlatooningXML_FileMissing(t *testing.T) {
	_, err := LoadPlatooningXML(filepath.Join(t.TempDir(), "nope.xml"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}
