package scenario

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
)

// Platooning subsystem (simpla) configuration. The vehicle selector names
// the original truck type; the subsystem retypes vehicles to the leader and
// follower types while they drive in formation.

type valueAttr struct {
	Value string `xml:"value,attr"`
}

type vTypeMap struct {
	Original string `xml:"original,attr"`
	Leader   string `xml:"leader,attr"`
	Follower string `xml:"follower,attr"`
}

type platooningConfig struct {
	XMLName                xml.Name  `xml:"configuration"`
	VehicleSelectors       valueAttr `xml:"vehicleSelectors"`
	MaxVehicleLength       valueAttr `xml:"maxVehicleLength"`
	MaxPlatoonGap          valueAttr `xml:"maxPlatoonGap"`
	CatchupHeadway         valueAttr `xml:"catchupHeadway"`
	PlatoonSplitTime       valueAttr `xml:"platoonSplitTime"`
	ManagedLanes           valueAttr `xml:"managedLanes"`
	MinGap                 valueAttr `xml:"mingap"`
	CatchupSpeed           valueAttr `xml:"catchupSpeed"`
	SwitchImpatienceFactor valueAttr `xml:"switchImpatienceFactor"`
	LCMode                 valueAttr `xml:"lcMode"`
	SpeedFactor            valueAttr `xml:"speedFactor"`
	Verbosity              valueAttr `xml:"verbosity"`
	VTypeMap               vTypeMap  `xml:"vTypeMap"`
}

// PlatooningXML renders the platooning subsystem configuration shared by
// all scenarios.
func PlatooningXML() ([]byte, error) {
	cfg := platooningConfig{
		VehicleSelectors:       valueAttr{TypeTruck},
		MaxVehicleLength:       valueAttr{"12.0"},
		MaxPlatoonGap:          valueAttr{"10.0"},
		CatchupHeadway:         valueAttr{"2.0"},
		PlatoonSplitTime:       valueAttr{"3.0"},
		ManagedLanes:           valueAttr{""},
		MinGap:                 valueAttr{"0.5"},
		CatchupSpeed:           valueAttr{"0.15"},
		SwitchImpatienceFactor: valueAttr{"1.0"},
		LCMode:                 valueAttr{"597"},
		SpeedFactor:            valueAttr{"1.0"},
		Verbosity:              valueAttr{"3"},
		VTypeMap: vTypeMap{
			Original: TypeTruck,
			Leader:   TypePlatoonLeader,
			Follower: TypePlatoonFollower,
		},
	}
	out, err := xml.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// PlatooningSettings is the parsed form of the platooning configuration the
// run path consumes.
type PlatooningSettings struct {
	VehicleSelector  string
	MaxVehicleLength float64
	MaxPlatoonGap    float64
	CatchupHeadway   float64
	PlatoonSplitTime float64

	Original string
	Leader   string
	Follower string
}

// LoadPlatooningXML reads a platooning configuration written by
// PlatooningXML (or hand-edited in the same format).
func LoadPlatooningXML(path string) (PlatooningSettings, error) {
	var s PlatooningSettings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	var cfg platooningConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return s, fmt.Errorf("parsing platooning config %s: %w", path, err)
	}

	s.VehicleSelector = cfg.VehicleSelectors.Value
	s.Original = cfg.VTypeMap.Original
	s.Leader = cfg.VTypeMap.Leader
	s.Follower = cfg.VTypeMap.Follower
	if s.VehicleSelector == "" || s.Leader == "" || s.Follower == "" {
		return s, fmt.Errorf("platooning config %s: missing vehicle selector or vTypeMap", path)
	}

	for _, field := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"maxVehicleLength", cfg.MaxVehicleLength.Value, &s.MaxVehicleLength},
		{"maxPlatoonGap", cfg.MaxPlatoonGap.Value, &s.MaxPlatoonGap},
		{"catchupHeadway", cfg.CatchupHeadway.Value, &s.CatchupHeadway},
		{"platoonSplitTime", cfg.PlatoonSplitTime.Value, &s.PlatoonSplitTime},
	} {
		v, err := strconv.ParseFloat(field.raw, 64)
		if err != nil {
			return s, fmt.Errorf("platooning config %s: %s %q is not a number", path, field.name, field.raw)
		}
		*field.dst = v
	}
	return s, nil
}
