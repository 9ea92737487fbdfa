package traci

// Command, variable and data-type identifiers for the subset of the TraCI
// protocol this client speaks. Values follow the constants published with
// SUMO (share/sumo/tools/traci/constants.py).

// Top-level commands.
const (
	cmdGetVersion byte = 0x00
	cmdSimStep    byte = 0x02
	cmdClose      byte = 0x7F
)

// Per-domain variable get/set commands. Each get command X has a matching
// response identifier X+0x10.
const (
	cmdGetTrafficLightVar byte = 0xa2
	cmdSetTrafficLightVar byte = 0xc2
	cmdGetLaneVar         byte = 0xa3
	cmdGetVehicleVar      byte = 0xa4
	cmdSetVehicleVar      byte = 0xc4
	cmdGetEdgeVar         byte = 0xaa
)

func responseFor(cmd byte) byte { return cmd + 0x10 }

// Variable identifiers.
const (
	varIDList byte = 0x00

	varLastStepVehicleNumber byte = 0x10
	varLastStepMeanSpeed     byte = 0x11
	varLastStepVehicleIDs    byte = 0x12

	varTLRedYellowGreenState byte = 0x20
	varTLPhaseIndex          byte = 0x22
	varTLPhaseDuration       byte = 0x24
	varTLControlledLanes     byte = 0x26
	varTLControlledLinks     byte = 0x27
	varTLCurrentPhase        byte = 0x28
	varTLCurrentProgram      byte = 0x29
	varTLCompleteDefinition  byte = 0x2b

	varLaneLinkNumber byte = 0x30
	varLaneEdgeID     byte = 0x31

	varSpeed        byte = 0x40
	varLength       byte = 0x44
	varTypeID       byte = 0x4f
	varRoadID       byte = 0x50
	varLaneIndex    byte = 0x52
	varLanePosition byte = 0x56
)

// Wire data types.
const (
	typeUByte      byte = 0x07
	typeByte       byte = 0x08
	typeInteger    byte = 0x09
	typeDouble     byte = 0x0B
	typeString     byte = 0x0C
	typeStringList byte = 0x0E
	typeCompound   byte = 0x0F
)

// Status result codes.
const (
	statusOK             byte = 0x00
	statusNotImplemented byte = 0x01
	statusErr            byte = 0xFF
)
