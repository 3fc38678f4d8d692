package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// Server holds the state for a server.
//
// Clients don't share anything. The server only tracks their connections so
// it can close them when shutting down.
type Server struct {
	Config *Config

	// TCP listener.
	Listener net.Listener

	log zerolog.Logger

	// When we close this channel, this indicates that we're shutting down.
	ShutdownChan chan struct{}

	// Client id to its TCP connection.
	conns map[uint64]net.Conn
	mutex sync.Mutex

	// WaitGroup to ensure all goroutines clean up before we end.
	WG sync.WaitGroup
}

func main() {
	logger := defaultLogger()

	cmd := newRootCommand(func(args Args) error {
		cfg, err := checkAndParseConfig(args.ConfigFile)
		if err != nil {
			return fmt.Errorf("configuration problem: %s", err)
		}

		s := newServer(cfg, newLogger(os.Stderr, cfg.LogLevel))

		if err := s.listen(); err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			s.log.Info().Str("signal", sig.String()).Msg("Received signal")
			s.shutdown()
		}()

		s.serve()

		s.log.Info().Msg("Server shutdown cleanly.")
		return nil
	})

	if err := cmd.Execute(); err != nil {
		logger.Fatal().Err(err).Msg("Exiting")
	}
}

func newServer(cfg *Config, logger zerolog.Logger) *Server {
	return &Server{
		Config: cfg,
		log:    logger,

		// shutdown() closes this channel.
		ShutdownChan: make(chan struct{}),

		conns: make(map[uint64]net.Conn),
	}
}

// listen opens the TCP port.
func (s *Server) listen() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.Config.ListenHost,
		s.Config.ListenPort))
	if err != nil {
		return fmt.Errorf("unable to listen: %s", err)
	}
	s.Listener = ln

	s.log.Info().Str("address", ln.Addr().String()).Msg("Listening")
	return nil
}

// serve accepts connections until shutdown, then waits for every client
// goroutine to end.
func (s *Server) serve() {
	s.WG.Add(1)
	go s.acceptConnections()

	s.WG.Wait()
}

// shutdown starts server shutdown. It is safe to call more than once.
func (s *Server) shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isShuttingDown() {
		return
	}

	s.log.Info().Msg("Server shutdown initiated.")

	// Closing ShutdownChan indicates to other goroutines that we're shutting
	// down.
	close(s.ShutdownChan)

	if s.Listener != nil {
		if err := s.Listener.Close(); err != nil {
			s.log.Error().Err(err).Msg("Problem closing TCP listener")
		}
	}

	// Closing their connections makes their reads return.
	for id, conn := range s.conns {
		if err := conn.Close(); err != nil {
			s.log.Debug().Err(err).Uint64("id", id).Msg("Problem closing connection")
		}
	}
}

// Return true if the server is shutting down.
func (s *Server) isShuttingDown() bool {
	// No messages get sent to this channel, so if we receive a message on it,
	// then we know the channel was closed.
	select {
	case <-s.ShutdownChan:
		return true
	default:
		return false
	}
}

// acceptConnections accepts TCP connections and starts a goroutine for each.
func (s *Server) acceptConnections() {
	defer s.WG.Done()

	id := uint64(0)

	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if s.isShuttingDown() {
				break
			}
			s.log.Error().Err(err).Msg("Failed to accept connection")
			continue
		}

		if !s.addConn(id, conn) {
			_ = conn.Close()
			break
		}

		s.WG.Add(1)
		go s.handleConnection(id, conn)

		// Handle rollover of uint64. Unlikely to happen (outside abuse) but.
		if id+1 == 0 {
			s.log.Fatal().Msg("Unique ids rolled over!")
		}
		id++
	}

	s.log.Info().Msg("Connection accepter shutting down.")
}

// addConn records a client's connection. It fails if we're shutting down.
func (s *Server) addConn(id uint64, conn net.Conn) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isShuttingDown() {
		return false
	}

	s.conns[id] = conn
	return true
}

func (s *Server) removeConn(id uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.conns, id)
}

// handleConnection runs a client's connection until it ends.
func (s *Server) handleConnection(id uint64, netConn net.Conn) {
	defer s.WG.Done()
	defer s.removeConn(id)

	conn := NewConn(netConn, s.Config.WriteTimeout)

	logger := s.log.With().
		Str("client", fmt.Sprintf("%d %s", id, conn.RemoteAddr())).Logger()
	logger.Info().Msg("New client connection")

	c := NewConnection(conn, conn.PeerAddress(), s.Config.ServerName, logger)

	if err := c.run(); err != nil {
		if s.isShuttingDown() {
			logger.Debug().Err(err).Msg("Connection ended during shutdown")
		} else {
			logger.Info().Err(err).Msg("Connection failed")
		}
	}

	if err := conn.Close(); err != nil && !s.isShuttingDown() {
		logger.Debug().Err(err).Msg("Problem closing connection")
	}

	logger.Info().Msg("Client disconnected")
}
