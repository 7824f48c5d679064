package admin

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

// ServiceName is the health-checked service reported alongside the
// server-wide ("") status.
const ServiceName = "gopool.Server"

// HealthServer serves the standard gRPC health protocol. It reports SERVING
// from construction until MarkNotServing is called.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     logging.Logger
}

func NewHealthServer(enableReflection bool, logger logging.Logger) *HealthServer {
	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if enableReflection {
		reflection.Register(grpcServer)
	}

	return &HealthServer{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

func (s *HealthServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("Health server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// MarkNotServing flips every service to NOT_SERVING so load balancers stop
// sending traffic while the pool drains.
func (s *HealthServer) MarkNotServing() {
	s.health.Shutdown()
}

func (s *HealthServer) Stop() {
	s.grpcServer.GracefulStop()
}
