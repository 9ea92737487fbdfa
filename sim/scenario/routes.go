package scenario

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// speedLimit is the main-road limit (50 mph) in m/s.
const speedLimit = 22.352

// Vehicle type identifiers. The platooning subsystem retypes qualifying
// trucks to the leader/follower types at runtime; the heuristic membership
// classifier recognizes them by substring.
const (
	TypeCar             = "car"
	TypeTruck           = "truck"
	TypePlatoonLeader   = "truck_platoon_leader"
	TypePlatoonFollower = "truck_platoon_follower"
)

type vType struct {
	ID       string  `xml:"id,attr"`
	Accel    float64 `xml:"accel,attr"`
	Decel    float64 `xml:"decel,attr"`
	Sigma    float64 `xml:"sigma,attr"`
	Length   float64 `xml:"length,attr"`
	MinGap   float64 `xml:"minGap,attr"`
	MaxSpeed float64 `xml:"maxSpeed,attr"`
	Color    string  `xml:"color,attr"`
}

type route struct {
	ID    string `xml:"id,attr"`
	Edges string `xml:"edges,attr"`
}

type flow struct {
	ID          string  `xml:"id,attr"`
	Type        string  `xml:"type,attr"`
	Route       string  `xml:"route,attr"`
	Begin       float64 `xml:"begin,attr"`
	End         float64 `xml:"end,attr,omitempty"`
	Number      int     `xml:"number,attr,omitempty"`
	Period      float64 `xml:"period,attr,omitempty"`
	DepartLane  string  `xml:"departLane,attr,omitempty"`
	DepartSpeed string  `xml:"departSpeed,attr,omitempty"`
}

type routesFile struct {
	XMLName xml.Name `xml:"routes"`
	VTypes  []vType  `xml:"vType"`
	Routes  []route  `xml:"route"`
	Flows   []flow   `xml:"flow"`
}

// platoonSpacing is the departure offset between successive platoons in
// seconds, wide enough that platoons do not merge on insertion.
const platoonSpacing = 40

// RoutesXML renders the route/flow definition for one scenario. Platoons
// are flows of PlatoonSize trucks released one second apart on lane 0 at
// the speed limit, so the platooning subsystem can close them up
// immediately. Background cars depend on the traffic level.
func RoutesXML(d Descriptor, mainRouteEdges []string, simTime int) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if len(mainRouteEdges) == 0 {
		return nil, fmt.Errorf("scenario %q: empty main route", d.Name)
	}

	doc := routesFile{
		VTypes: []vType{
			{ID: TypeTruck, Accel: 1.0, Decel: 3.0, Sigma: 0.5, Length: 10, MinGap: 3, MaxSpeed: speedLimit, Color: "1,1,0"},
			{ID: TypePlatoonLeader, Accel: 1.0, Decel: 3.0, Sigma: 0.0, Length: 10, MinGap: 2, MaxSpeed: speedLimit, Color: "0.8,0.4,0"},
			{ID: TypePlatoonFollower, Accel: 1.0, Decel: 3.0, Sigma: 0.0, Length: 10, MinGap: 0.5, MaxSpeed: speedLimit, Color: "0.8,0.8,0"},
		},
		Routes: []route{{ID: "main_route", Edges: strings.Join(mainRouteEdges, " ")}},
	}

	if period := d.TrafficLevel.backgroundPeriod(); period > 0 {
		doc.VTypes = append(doc.VTypes, vType{
			ID: TypeCar, Accel: 1.5, Decel: 4.5, Sigma: 0.5, Length: 5, MinGap: 2.5, MaxSpeed: speedLimit, Color: "0.5,0.5,0.5",
		})
		doc.Flows = append(doc.Flows, flow{
			ID:          fmt.Sprintf("%s_flow", d.TrafficLevel),
			Type:        TypeCar,
			Route:       "main_route",
			Begin:       0,
			End:         float64(simTime),
			Period:      period,
			DepartLane:  "random",
			DepartSpeed: "max",
		})
	}

	for i := 0; i < d.PlatoonCount; i++ {
		doc.Flows = append(doc.Flows, flow{
			ID:          fmt.Sprintf("truck_platoon_%d", i),
			Type:        TypeTruck,
			Route:       "main_route",
			Begin:       float64((i + 1) * platoonSpacing),
			Number:      d.PlatoonSize,
			Period:      1,
			DepartLane:  "0",
			DepartSpeed: fmt.Sprint(speedLimit),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
