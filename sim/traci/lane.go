package traci

// LaneIDs lists all lane identifiers in the network.
func (c *Client) LaneIDs() ([]string, error) {
	return c.getStringList(cmdGetLaneVar, varIDList, "")
}

// LaneEdgeID returns the identifier of the edge a lane belongs to.
func (c *Client) LaneEdgeID(id string) (string, error) {
	return c.getString(cmdGetLaneVar, varLaneEdgeID, id)
}

// LaneLength returns a lane's length in meters.
func (c *Client) LaneLength(id string) (float64, error) {
	return c.getDouble(cmdGetLaneVar, varLength, id)
}

// LaneVehicleIDs lists the vehicles that were on the lane during the last
// simulation step.
func (c *Client) LaneVehicleIDs(id string) ([]string, error) {
	return c.getStringList(cmdGetLaneVar, varLastStepVehicleIDs, id)
}
