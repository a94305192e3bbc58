package client

import (
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"

	"txindex/pkg/common"
	"txindex/pkg/dataset"
	"txindex/pkg/protocol"
)

var ErrNotFound = errors.New("not found")

// ServerError carries the message of a RespErr reply.
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string { return "server: " + e.Msg }

type Client struct {
	conn    net.Conn
	addr    string
	timeout time.Duration
}

func Dial(addr string) (*Client, error) {
	c := &Client{addr: addr, timeout: 5 * time.Second}
	conn, err := net.DialTimeout("tcp", addr, c.timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	c.conn = conn
	return c, nil
}

func (c *Client) Insert(r common.Record) error {
	resp, err := c.roundTrip(protocol.OpInsert, nil, []byte(r.CSV()))
	if err != nil {
		return err
	}
	return expect(resp, protocol.RespOK)
}

func (c *Client) Get(id string) (common.Record, error) {
	resp, err := c.roundTrip(protocol.OpGet, []byte(id), nil)
	if err != nil {
		return common.Record{}, err
	}
	if resp.Op == protocol.RespErr && string(resp.Value) == "not found" {
		return common.Record{}, ErrNotFound
	}
	if err := expect(resp, protocol.RespVal); err != nil {
		return common.Record{}, err
	}
	rec, ok := dataset.ParseLine(string(resp.Value))
	if !ok {
		return common.Record{}, errors.Errorf("malformed record %q", resp.Value)
	}
	return rec, nil
}

func (c *Client) Search(origin, start, end string) ([]common.Record, error) {
	resp, err := c.roundTrip(protocol.OpSearch, []byte(origin), protocol.SearchRange(start, end))
	if err != nil {
		return nil, err
	}
	if err := expect(resp, protocol.RespVal); err != nil {
		return nil, err
	}
	return decodeRecords(resp.Value)
}

// Query runs a SELECT statement on the server.
func (c *Client) Query(q string) ([]common.Record, error) {
	resp, err := c.roundTrip(protocol.OpSQL, nil, []byte(q))
	if err != nil {
		return nil, err
	}
	if err := expect(resp, protocol.RespVal); err != nil {
		return nil, err
	}
	return decodeRecords(resp.Value)
}

// Stats returns the server's table summary as text.
func (c *Client) Stats() (string, error) {
	resp, err := c.roundTrip(protocol.OpStats, nil, nil)
	if err != nil {
		return "", err
	}
	if err := expect(resp, protocol.RespVal); err != nil {
		return "", err
	}
	return string(resp.Value), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// roundTrip sends one request and reads its reply, redialling once if the
// connection turned out to be broken.
func (c *Client) roundTrip(op byte, key, val []byte) (*protocol.Packet, error) {
	resp, err := c.exchange(op, key, val)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, protocol.ErrKeyTooLong) {
		return nil, err
	}
	if rerr := c.reconnect(); rerr != nil {
		return nil, errors.Wrap(rerr, "reconnect")
	}
	return c.exchange(op, key, val)
}

func (c *Client) exchange(op byte, key, val []byte) (*protocol.Packet, error) {
	c.conn.SetDeadline(time.Now().Add(c.timeout))
	if err := protocol.Encode(c.conn, op, key, val); err != nil {
		return nil, err
	}
	return protocol.Decode(c.conn)
}

func (c *Client) reconnect() error {
	c.conn.Close()
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func expect(resp *protocol.Packet, op byte) error {
	if resp.Op == protocol.RespErr {
		return &ServerError{Msg: string(resp.Value)}
	}
	if resp.Op != op {
		return errors.Errorf("unexpected response op 0x%02x", resp.Op)
	}
	return nil
}

func decodeRecords(data []byte) ([]common.Record, error) {
	records := []common.Record{}
	if len(data) == 0 {
		return records, nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		rec, ok := dataset.ParseLine(line)
		if !ok {
			return nil, errors.Errorf("malformed record %q", line)
		}
		records = append(records, rec)
	}
	return records, nil
}
