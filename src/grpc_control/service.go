package grpc_control

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"stock-screener/src/helpers"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	"github.com/gin-gonic/gin/binding"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements the ScreenerControlServer interface
type ControlService struct {
	Service interfaces.IScreenerService
	Logger  *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(svc interfaces.IScreenerService, log *logger.Logger) *ControlService {
	return &ControlService{
		Service: svc,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// NewGRPCServer builds a server with the screener and the standard health
// service registered.
func NewGRPCServer(svc interfaces.IScreenerService, log *logger.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(RecoveryInterceptor(log)))
	RegisterScreenerControlServer(grpcServer, NewControlService(svc, log))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer
}

// -----------------------------------------------------------------------------

// RecoveryInterceptor turns a handler panic into codes.Internal so one bad
// request cannot take the server down.
func RecoveryInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("gRPC: panic in %s: %v\n%s", info.FullMethod, r, debug.Stack())
				resp, err = nil, status.Errorf(codes.Internal, "internal error in %s", info.FullMethod)
			}
		}()
		return handler(ctx, req)
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) Filter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req models.MScreenRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := req.CheckThresholds(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	stocks, err := s.Service.FilterStocks(ctx, req)
	if err != nil {
		return nil, s.toStatus("Filter", err)
	}

	out, err := encodeStruct(models.NewScreenResponse(stocks))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.Logger.Info("gRPC: Filter matched %d securities", len(stocks))
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ChartData(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()

	secCode := fields["sec_code"].GetStringValue()
	if secCode == "" {
		return nil, status.Error(codes.InvalidArgument, "sec_code is required")
	}

	periodType := fields["period_type"].GetStringValue()
	if periodType == "" {
		periodType = models.PeriodSeason
	}

	limit := 0
	if v, ok := fields["limit"]; ok {
		n := v.GetNumberValue()
		if n < 1 || n != float64(int(n)) {
			return nil, status.Error(codes.InvalidArgument, "limit must be a positive integer")
		}
		limit = int(n)
	}

	data, err := s.Service.ChartData(ctx, secCode, periodType, limit)
	if err != nil {
		return nil, s.toStatus("ChartData", err)
	}

	out, err := encodeStruct(data)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) toStatus(method string, err error) error {
	if helpers.IsValidation(err) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.Logger.Error("gRPC: %s failed: %v", method, err)
	return status.Error(codes.Internal, err.Error())
}

// -----------------------------------------------------------------------------
// Struct <-> model conversion goes through JSON so field names match the HTTP API.
// -----------------------------------------------------------------------------

func decodeStruct(in *structpb.Struct, out interface{}) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func encodeStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
