package traci

// EdgeIDs lists all edge identifiers in the network.
func (c *Client) EdgeIDs() ([]string, error) {
	return c.getStringList(cmdGetEdgeVar, varIDList, "")
}

// EdgeVehicleCount returns the number of vehicles on the edge during the
// last simulation step.
func (c *Client) EdgeVehicleCount(id string) (int, error) {
	return c.getInt(cmdGetEdgeVar, varLastStepVehicleNumber, id)
}

// EdgeMeanSpeed returns the mean speed of vehicles on the edge during the
// last simulation step in m/s.
func (c *Client) EdgeMeanSpeed(id string) (float64, error) {
	return c.getDouble(cmdGetEdgeVar, varLastStepMeanSpeed, id)
}

// EdgeLaneCount returns the number of lanes of an edge. Lane identifiers
// follow the "<edge>_<index>" convention.
func (c *Client) EdgeLaneCount(id string) (int, error) {
	return c.getInt(cmdGetEdgeVar, varLaneIndex, id)
}
