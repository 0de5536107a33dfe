package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 5 * time.Second
)

// Send delivers one command to the daemon and waits for its response.
func Send(socketPath string, cmd Command) (Response, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("error connecting to daemon socket (%s): %w", socketPath, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(ioTimeout))

	if err := json.NewEncoder(conn).Encode(cmd); err != nil {
		return Response{}, fmt.Errorf("error sending command: %w", err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("error receiving response: %w", err)
	}
	return resp, nil
}

// Call sends name with args and decodes the data payload into out (when non-nil).
// A response with status error is returned as an error.
func Call(socketPath, name string, args, out any) (Response, error) {
	cmd, err := NewCommand(name, args)
	if err != nil {
		return Response{}, err
	}
	resp, err := Send(socketPath, cmd)
	if err != nil {
		return resp, err
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}
	if out != nil && len(resp.Data) > 0 {
		if err := resp.Decode(out); err != nil {
			return resp, fmt.Errorf("error decoding %s response: %w", name, err)
		}
	}
	return resp, nil
}
