package server

import (
	"context"
	"net"

	"github.com/pagelens/pagelens-observer/handler"
	logger "github.com/zerok-ai/zk-utils-go/logs"
	pb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/grpc"
)

var grpcServerLogTag = "grpcServer"

// GrpcServer exposes the standard OTLP collector export endpoint so the
// server runtime can ship spans over gRPC instead of HTTP.
type GrpcServer struct {
	pb.UnimplementedTraceServiceServer
	TraceHandler *handler.TraceHandler
}

func (s *GrpcServer) Export(ctx context.Context, req *pb.ExportTraceServiceRequest) (*pb.ExportTraceServiceResponse, error) {
	logger.Debug(grpcServerLogTag, "Export method invoked.")
	s.TraceHandler.ProcessTraceData(req.ResourceSpans)
	return &pb.ExportTraceServiceResponse{}, nil
}

// Run blocks serving the gRPC endpoint on the given port.
func (s *GrpcServer) Run(port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		logger.Error(grpcServerLogTag, "Error while listening on grpc port ", err)
		return err
	}
	grpcServer := grpc.NewServer()
	pb.RegisterTraceServiceServer(grpcServer, s)
	logger.Info(grpcServerLogTag, "Grpc server listening on port ", port)
	return grpcServer.Serve(listener)
}
