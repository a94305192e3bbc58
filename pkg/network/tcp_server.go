package network

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"txindex/pkg/common"
	"txindex/pkg/core"
	"txindex/pkg/dataset"
	"txindex/pkg/logger"
	"txindex/pkg/monitor"
	"txindex/pkg/protocol"
	"txindex/pkg/sql"
)

type TCPServer struct {
	index *core.SyncIndex
	stats *monitor.WorkloadStats
	log   logger.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
}

func NewTCPServer(index *core.SyncIndex, stats *monitor.WorkloadStats, log logger.Logger) *TCPServer {
	if stats == nil {
		stats = monitor.NewWorkloadStats()
	}
	if log == nil {
		log = logger.Nop
	}
	return &TCPServer{index: index, stats: stats, log: log, conns: map[net.Conn]struct{}{}}
}

func (s *TCPServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections until Close is called.
func (s *TCPServer) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.log.Info("listening (binary protocol)", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn("accept error", "err", err)
			continue
		}
		s.track(conn, true)
		go s.handleConn(conn)
	}
}

func (s *TCPServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *TCPServer) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *TCPServer) track(c net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer func() {
		s.track(conn, false)
		conn.Close()
	}()

	for {
		req, err := protocol.Decode(conn)
		if err != nil {
			if err != io.EOF && !s.isClosed() {
				s.log.Debug("decode error", "remote", conn.RemoteAddr().String(), "err", err)
			}
			return
		}

		op, val := s.dispatch(req)
		if err := protocol.Encode(conn, op, nil, val); err != nil {
			s.log.Debug("write error", "remote", conn.RemoteAddr().String(), "err", err)
			return
		}
	}
}

func (s *TCPServer) dispatch(req *protocol.Packet) (byte, []byte) {
	switch req.Op {
	case protocol.OpInsert:
		s.stats.RecordWrite()
		rec, ok := dataset.ParseLine(string(req.Value))
		if !ok {
			return protocol.RespErr, []byte("malformed record line")
		}
		if err := s.index.Insert(rec); err != nil {
			return protocol.RespErr, []byte(err.Error())
		}
		return protocol.RespOK, nil

	case protocol.OpGet:
		s.stats.RecordRead()
		rec, found := s.index.Get(string(req.Key))
		if !found {
			return protocol.RespErr, []byte("not found")
		}
		s.stats.RecordHit()
		return protocol.RespVal, []byte(rec.CSV())

	case protocol.OpSearch:
		s.stats.RecordRead()
		start, end, ok := protocol.ParseSearchRange(req.Value)
		if !ok {
			end = sql.MaxTimestamp
		}
		return protocol.RespVal, encodeRecords(s.index.Search(string(req.Key), start, end))

	case protocol.OpSQL:
		s.stats.RecordRead()
		stmt, err := sql.Parse(string(req.Value))
		if err != nil {
			return protocol.RespErr, []byte(err.Error())
		}
		return protocol.RespVal, encodeRecords(stmt.Execute(s.index))

	case protocol.OpStats:
		return protocol.RespVal, []byte(s.index.Summary().String())
	}
	return protocol.RespErr, []byte("unknown op")
}

// encodeRecords renders one CSV line per record.
func encodeRecords(records []common.Record) []byte {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.CSV())
	}
	return []byte(b.String())
}
