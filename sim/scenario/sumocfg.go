package scenario

import (
	"encoding/xml"
	"strconv"
)

type inputSection struct {
	NetFile    valueAttr `xml:"net-file"`
	RouteFiles valueAttr `xml:"route-files"`
}

type timeSection struct {
	Begin valueAttr `xml:"begin"`
	End   valueAttr `xml:"end"`
}

type processingSection struct {
	LateralResolution valueAttr `xml:"lateral-resolution"`
}

type reportSection struct {
	Verbose   valueAttr `xml:"verbose"`
	NoStepLog valueAttr `xml:"no-step-log"`
}

type randomSection struct {
	Seed valueAttr `xml:"seed"`
}

type sumoConfig struct {
	XMLName    xml.Name          `xml:"configuration"`
	Input      inputSection      `xml:"input"`
	Time       timeSection       `xml:"time"`
	Processing processingSection `xml:"processing"`
	Report     reportSection     `xml:"report"`
	Random     randomSection     `xml:"random_number"`
}

// SumoCfgXML renders the simulator configuration for one scenario. The
// lateral resolution enables the sublane model the platooning subsystem
// needs for controlled lane changes.
func SumoCfgXML(netFile, routesFile string, simTime int, seed uint32) ([]byte, error) {
	cfg := sumoConfig{
		Input: inputSection{
			NetFile:    valueAttr{netFile},
			RouteFiles: valueAttr{routesFile},
		},
		Time: timeSection{
			Begin: valueAttr{"0"},
			End:   valueAttr{strconv.Itoa(simTime)},
		},
		Processing: processingSection{LateralResolution: valueAttr{"0.13"}},
		Report: reportSection{
			Verbose:   valueAttr{"true"},
			NoStepLog: valueAttr{"true"},
		},
		Random: randomSection{Seed: valueAttr{strconv.FormatUint(uint64(seed), 10)}},
	}
	out, err := xml.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
