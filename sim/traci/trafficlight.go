package traci

import "fmt"

// Link is one signal-controlled connection: the lane a vehicle approaches
// on, the lane it leaves on, and the internal lane crossing the junction.
type Link struct {
	Incoming string
	Outgoing string
	Via      string
}

// Phase is one entry of a traffic light program.
type Phase struct {
	Duration float64 // nominal phase duration in seconds
	State    string  // one light character per control index
	MinDur   float64
	MaxDur   float64
	Next     []int
	Name     string
}

// Logic is one complete traffic light program.
type Logic struct {
	ProgramID    string
	Type         int
	CurrentPhase int
	Phases       []Phase
}

// TrafficLightIDs lists the identifiers of all traffic lights.
func (c *Client) TrafficLightIDs() ([]string, error) {
	return c.getStringList(cmdGetTrafficLightVar, varIDList, "")
}

// CurrentPhase returns the active phase index of a traffic light.
func (c *Client) CurrentPhase(id string) (int, error) {
	return c.getInt(cmdGetTrafficLightVar, varTLCurrentPhase, id)
}

// CurrentProgram returns the identifier of the active program.
func (c *Client) CurrentProgram(id string) (string, error) {
	return c.getString(cmdGetTrafficLightVar, varTLCurrentProgram, id)
}

// RedYellowGreenState returns the current light state string.
func (c *Client) RedYellowGreenState(id string) (string, error) {
	return c.getString(cmdGetTrafficLightVar, varTLRedYellowGreenState, id)
}

// SetPhase switches a traffic light to the given phase of its current
// program. The simulator restarts that phase's own timer; the coordination
// loop keeps its own.
func (c *Client) SetPhase(id string, phase int) error {
	var p packer
	p.writeUByte(varTLPhaseIndex)
	p.writeString(id)
	p.writeUByte(typeInteger)
	p.writeInt(int32(phase))
	_, err := c.roundTrip(cmdSetTrafficLightVar, p.buf)
	return err
}

// ControlledLinks returns, per signal (control index), the links that signal
// governs. The outer slice is ordered by control index.
func (c *Client) ControlledLinks(id string) ([][]Link, error) {
	resp, err := c.getVariable(cmdGetTrafficLightVar, varTLControlledLinks, id)
	if err != nil {
		return nil, err
	}
	// Compound layout: raw signal count, then per signal a typed link count
	// followed by one typed string list [in, out, via] per link.
	if _, err := resp.readCompound(); err != nil {
		return nil, err
	}
	numSignals, err := resp.readInt()
	if err != nil {
		return nil, err
	}
	links := make([][]Link, 0, numSignals)
	for i := int32(0); i < numSignals; i++ {
		numLinks, err := resp.readTypedInt()
		if err != nil {
			return nil, err
		}
		group := make([]Link, 0, numLinks)
		for j := int32(0); j < numLinks; j++ {
			parts, err := resp.readTypedStringList()
			if err != nil {
				return nil, err
			}
			if len(parts) != 3 {
				return nil, fmt.Errorf("link %d.%d of %q has %d lanes, want 3", i, j, id, len(parts))
			}
			group = append(group, Link{Incoming: parts[0], Outgoing: parts[1], Via: parts[2]})
		}
		links = append(links, group)
	}
	return links, nil
}

// PhaseDefinitions returns every program defined for a traffic light with
// its full phase table.
func (c *Client) PhaseDefinitions(id string) ([]Logic, error) {
	resp, err := c.getVariable(cmdGetTrafficLightVar, varTLCompleteDefinition, id)
	if err != nil {
		return nil, err
	}
	if _, err := resp.readCompound(); err != nil {
		return nil, err
	}
	numLogics, err := resp.readInt()
	if err != nil {
		return nil, err
	}
	logics := make([]Logic, 0, numLogics)
	for i := int32(0); i < numLogics; i++ {
		logic, err := readLogic(resp)
		if err != nil {
			return nil, fmt.Errorf("program %d of %q: %w", i, id, err)
		}
		logics = append(logics, logic)
	}
	return logics, nil
}

func readLogic(s *storage) (Logic, error) {
	var l Logic
	if _, err := s.readCompound(); err != nil {
		return l, err
	}
	programID, err := s.readTypedString()
	if err != nil {
		return l, err
	}
	typ, err := s.readTypedInt()
	if err != nil {
		return l, err
	}
	current, err := s.readTypedInt()
	if err != nil {
		return l, err
	}
	numPhases, err := s.readCompound()
	if err != nil {
		return l, err
	}
	phases := make([]Phase, 0, numPhases)
	for i := int32(0); i < numPhases; i++ {
		ph, err := readPhase(s)
		if err != nil {
			return l, fmt.Errorf("phase %d: %w", i, err)
		}
		phases = append(phases, ph)
	}
	// Trailing program parameters: count then key/value string lists.
	numParams, err := s.readCompound()
	if err != nil {
		return l, err
	}
	for i := int32(0); i < numParams; i++ {
		if _, err := s.readTypedStringList(); err != nil {
			return l, err
		}
	}
	l.ProgramID = programID
	l.Type = int(typ)
	l.CurrentPhase = int(current)
	l.Phases = phases
	return l, nil
}

func readPhase(s *storage) (Phase, error) {
	var p Phase
	if _, err := s.readCompound(); err != nil {
		return p, err
	}
	var err error
	if p.Duration, err = s.readTypedDouble(); err != nil {
		return p, err
	}
	if p.State, err = s.readTypedString(); err != nil {
		return p, err
	}
	if p.MinDur, err = s.readTypedDouble(); err != nil {
		return p, err
	}
	if p.MaxDur, err = s.readTypedDouble(); err != nil {
		return p, err
	}
	numNext, err := s.readCompound()
	if err != nil {
		return p, err
	}
	for i := int32(0); i < numNext; i++ {
		n, err := s.readTypedInt()
		if err != nil {
			return p, err
		}
		p.Next = append(p.Next, int(n))
	}
	if p.Name, err = s.readTypedString(); err != nil {
		return p, err
	}
	return p, nil
}
