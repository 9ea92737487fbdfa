package traci

// VehicleIDs lists the identifiers of all vehicles currently in the network.
func (c *Client) VehicleIDs() ([]string, error) {
	return c.getStringList(cmdGetVehicleVar, varIDList, "")
}

// VehicleSpeed returns a vehicle's current speed in m/s.
func (c *Client) VehicleSpeed(id string) (float64, error) {
	return c.getDouble(cmdGetVehicleVar, varSpeed, id)
}

// VehicleTypeID returns the identifier of a vehicle's type definition.
func (c *Client) VehicleTypeID(id string) (string, error) {
	return c.getString(cmdGetVehicleVar, varTypeID, id)
}

// VehicleLanePosition returns the vehicle's distance from the start of its
// current lane in meters.
func (c *Client) VehicleLanePosition(id string) (float64, error) {
	return c.getDouble(cmdGetVehicleVar, varLanePosition, id)
}

// VehicleRoadID returns the identifier of the edge the vehicle is on.
func (c *Client) VehicleRoadID(id string) (string, error) {
	return c.getString(cmdGetVehicleVar, varRoadID, id)
}

// SetVehicleTypeID switches a vehicle to another defined vehicle type.
func (c *Client) SetVehicleTypeID(id, typeID string) error {
	var p packer
	p.writeUByte(varTypeID)
	p.writeString(id)
	p.writeUByte(typeString)
	p.writeString(typeID)
	_, err := c.roundTrip(cmdSetVehicleVar, p.buf)
	return err
}
