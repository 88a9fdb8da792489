package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// Sink is the pluggable stats-forwarding collaborator. The in-process
// Registry always keeps its own aggregates; a Sink additionally mirrors
// liveness of an external collector. It is scoped to what this gateway
// genuinely needs: knowing whether the external collector is
// reachable, not a bespoke RPC surface this repo would have to invent.
type Sink interface {
	// Healthy reports whether the external collector last answered a
	// health check successfully.
	Healthy() bool
	Close() error
}

// GRPCSinkConfig configures the optional external-collector connection.
type GRPCSinkConfig struct {
	Address           string
	ConnectTimeout    time.Duration
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
	CheckInterval     time.Duration
}

// DefaultGRPCSinkConfig returns the stock sink settings for address.
func DefaultGRPCSinkConfig(address string) GRPCSinkConfig {
	return GRPCSinkConfig{
		Address:           address,
		ConnectTimeout:    10 * time.Second,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
		CheckInterval:     15 * time.Second,
	}
}

// GRPCSink maintains a connection to an external stats collector and
// tracks its liveness via the standard gRPC health-checking protocol.
type GRPCSink struct {
	conn   *grpc.ClientConn
	client grpc_health_v1.HealthClient

	mu      sync.RWMutex
	healthy bool

	stopCh chan struct{}
}

// NewGRPCSink dials address and starts a background health-check loop.
func NewGRPCSink(cfg GRPCSinkConfig) (*GRPCSink, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("stats: connect to collector at %s: %w", cfg.Address, err)
	}

	s := &GRPCSink{
		conn:   conn,
		client: grpc_health_v1.NewHealthClient(conn),
		stopCh: make(chan struct{}),
	}
	slog.Info("[stats] connected to external collector", "address", cfg.Address)

	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go s.checkLoop(interval)
	return s, nil
}

func (s *GRPCSink) checkLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.check()
	for {
		select {
		case <-ticker.C:
			s.check()
		case <-s.stopCh:
			return
		}
	}
}

func (s *GRPCSink) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := s.client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	healthy := err == nil && resp.Status == grpc_health_v1.HealthCheckResponse_SERVING

	s.mu.Lock()
	s.healthy = healthy
	s.mu.Unlock()
}

// Healthy implements Sink.
func (s *GRPCSink) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

// Close implements Sink.
func (s *GRPCSink) Close() error {
	close(s.stopCh)
	return s.conn.Close()
}
