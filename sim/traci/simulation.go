package traci

import "fmt"

// SimulationStep advances the simulation by one step. The response carries
// the results of any value subscriptions; this client never subscribes, so
// only the count is consumed.
func (c *Client) SimulationStep() error {
	var p packer
	p.writeDouble(0) // 0 = advance exactly one step
	resp, err := c.roundTrip(cmdSimStep, p.buf)
	if err != nil {
		return err
	}
	n, err := resp.readInt()
	if err != nil {
		return fmt.Errorf("reading subscription count: %w", err)
	}
	if n != 0 {
		return fmt.Errorf("unexpected subscription results (%d) in step response", n)
	}
	return nil
}
