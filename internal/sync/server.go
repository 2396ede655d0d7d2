package sync

import (
	"bufio"
	"errors"
	"net"

	"go.uber.org/zap"
)

// Server accepts raw TCP clients that receive the hub's JSON lines. Legacy
// desktop clients use this transport; browsers use the WebSocket handler.
type Server struct {
	Addr   string
	Hub    *Hub
	Logger *zap.Logger

	ln net.Listener
}

func NewServer(addr string, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Hub: hub, Logger: logger.Named("tcp-sync")}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.Logger.Info("listening", zap.String("addr", s.Addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		s.Hub.Add(conn)
		s.Hub.Welcome(conn)
		s.Logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Logger.Info("client disconnected", zap.String("remote", c.RemoteAddr().String()))
			}()

			// Keep the connection alive; if client sends anything, just consume.
			sc := bufio.NewScanner(c)
			for sc.Scan() {
				// ignore incoming lines
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
