// Package traci is a synchronous TCP client for SUMO's TraCI remote-control
// protocol. It implements the small command subset the coordination loop
// uses: advancing the simulation clock and querying or commanding vehicles,
// lanes, edges and traffic lights.
//
// The protocol is strict request/response over one socket; the client keeps
// exactly one request in flight and is not safe for concurrent use.
package traci

import (
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "traci")

// CommandError is a failure reported by the simulator itself, as opposed to
// a transport-level failure.
type CommandError struct {
	Command     byte
	Description string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("traci: command 0x%02x rejected: %s", e.Command, e.Description)
}

// Client holds one TraCI connection. If the client launched the simulator
// process itself, Close also waits for that process to exit.
type Client struct {
	conn net.Conn
	proc *exec.Cmd

	// APIVersion and SimVersion are filled by the getVersion handshake.
	APIVersion int
	SimVersion string
}

// StartOptions controls how Start launches the simulator.
type StartOptions struct {
	Binary string   // "sumo" or "sumo-gui"
	Config string   // path to the .sumocfg scenario file
	Port   int      // TCP port for --remote-port; 0 picks a free one
	Extra  []string // additional simulator arguments
}

// Start launches a SUMO process with --remote-port and connects to it. The
// simulator blocks waiting for a client, so the dial is retried briefly
// while the process boots.
func Start(opts StartOptions) (*Client, error) {
	port := opts.Port
	if port == 0 {
		p, err := freePort()
		if err != nil {
			return nil, err
		}
		port = p
	}
	args := []string{"-c", opts.Config, "--remote-port", fmt.Sprint(port), "--start"}
	args = append(args, opts.Extra...)
	proc := exec.Command(opts.Binary, args...)
	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", opts.Binary, err)
	}
	log.Infof("launched %s (pid %d) on port %d", opts.Binary, proc.Process.Pid, port)

	c, err := dialRetry(fmt.Sprintf("localhost:%d", port), 30*time.Second)
	if err != nil {
		_ = proc.Process.Kill()
		_ = proc.Wait()
		return nil, fmt.Errorf("connecting to simulator: %w", err)
	}
	c.proc = proc
	if err := c.handshake(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Dial connects to an already-running simulator.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn}
	if err := c.handshake(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func dialRetry(addr string, timeout time.Duration) (*Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return &Client{conn: conn}, nil
		}
		lastErr = err
		time.Sleep(250 * time.Millisecond)
	}
	return nil, lastErr
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func (c *Client) handshake() error {
	resp, err := c.roundTrip(cmdGetVersion, nil)
	if err != nil {
		return fmt.Errorf("version handshake: %w", err)
	}
	cmd, _, err := resp.readCommandHeader()
	if err != nil || cmd != cmdGetVersion {
		return fmt.Errorf("version handshake: unexpected response")
	}
	api, err := resp.readInt()
	if err != nil {
		return err
	}
	ver, err := resp.readString()
	if err != nil {
		return err
	}
	c.APIVersion = int(api)
	c.SimVersion = ver
	log.Infof("connected: %s (API %d)", ver, api)
	return nil
}

// roundTrip sends one command and returns the response storage positioned
// just past the status result for that command.
func (c *Client) roundTrip(cmd byte, content []byte) (*storage, error) {
	var m message
	m.appendCommand(cmd, content)
	if _, err := c.conn.Write(m.Bytes()); err != nil {
		return nil, fmt.Errorf("writing command 0x%02x: %w", cmd, err)
	}
	resp, err := readMessage(c.conn)
	if err != nil {
		return nil, fmt.Errorf("reading response to command 0x%02x: %w", cmd, err)
	}
	if err := checkStatus(resp, cmd); err != nil {
		return nil, err
	}
	return resp, nil
}

// checkStatus consumes the status result that acknowledges every command.
func checkStatus(s *storage, sent byte) error {
	cmd, _, err := s.readCommandHeader()
	if err != nil {
		return err
	}
	if cmd != sent {
		return fmt.Errorf("status for command 0x%02x, expected 0x%02x", cmd, sent)
	}
	result, err := s.readUByte()
	if err != nil {
		return err
	}
	desc, err := s.readString()
	if err != nil {
		return err
	}
	if result != statusOK {
		return &CommandError{Command: sent, Description: desc}
	}
	return nil
}

// getVariable performs one variable retrieval and positions the returned
// storage at the value's type byte.
func (c *Client) getVariable(cmd, variable byte, objectID string) (*storage, error) {
	resp, err := c.roundTrip(cmd, getVarContent(variable, objectID))
	if err != nil {
		return nil, err
	}
	respID, _, err := resp.readCommandHeader()
	if err != nil {
		return nil, err
	}
	if respID != responseFor(cmd) {
		return nil, fmt.Errorf("unexpected response command 0x%02x", respID)
	}
	gotVar, err := resp.readUByte()
	if err != nil {
		return nil, err
	}
	if gotVar != variable {
		return nil, fmt.Errorf("response for variable 0x%02x, expected 0x%02x", gotVar, variable)
	}
	if _, err := resp.readString(); err != nil { // echoed object id
		return nil, err
	}
	return resp, nil
}

func (c *Client) getInt(cmd, variable byte, objectID string) (int, error) {
	resp, err := c.getVariable(cmd, variable, objectID)
	if err != nil {
		return 0, err
	}
	v, err := resp.readTypedInt()
	return int(v), err
}

func (c *Client) getDouble(cmd, variable byte, objectID string) (float64, error) {
	resp, err := c.getVariable(cmd, variable, objectID)
	if err != nil {
		return 0, err
	}
	return resp.readTypedDouble()
}

func (c *Client) getString(cmd, variable byte, objectID string) (string, error) {
	resp, err := c.getVariable(cmd, variable, objectID)
	if err != nil {
		return "", err
	}
	return resp.readTypedString()
}

func (c *Client) getStringList(cmd, variable byte, objectID string) ([]string, error) {
	resp, err := c.getVariable(cmd, variable, objectID)
	if err != nil {
		return nil, err
	}
	return resp.readTypedStringList()
}

// Close tells the simulator to shut down, closes the socket, and reaps the
// child process if this client launched one. Safe to call after an error.
func (c *Client) Close() error {
	var closeErr error
	if c.conn != nil {
		if _, err := c.roundTrip(cmdClose, nil); err != nil {
			closeErr = err
		}
		if err := c.conn.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		c.conn = nil
	}
	if c.proc != nil {
		if err := c.proc.Wait(); err != nil && closeErr == nil {
			closeErr = err
		}
		c.proc = nil
	}
	return closeErr
}
