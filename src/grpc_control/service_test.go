package grpc_control

import (
	"context"
	"errors"
	"net"
	"testing"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubService struct {
	panicMsg  string
	results   []models.MScreenResult
	chart     models.MChartData
	err       error
	lastReq   models.MScreenRequest
	lastCode  string
	lastType  string
	lastLimit int
}

func (s *stubService) FilterStocks(_ context.Context, req models.MScreenRequest) ([]models.MScreenResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.lastReq = req
	return s.results, s.err
}

func (s *stubService) ChartData(_ context.Context, code, periodType string, limit int) (models.MChartData, error) {
	s.lastCode, s.lastType, s.lastLimit = code, periodType, limit
	return s.chart, s.err
}

// -----------------------------------------------------------------------------

func dial(t *testing.T, svc *stubService) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(svc, logger.Discard())
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func rate(v float64) *float64 { return &v }

func validRequest() models.MScreenRequest {
	return models.MScreenRequest{
		StartDate:             "2020-01-01",
		IndustryNames:         []string{"Tech"},
		MinConsecutivePeriods: 3,
		RevenueGrowthRate:     rate(0.2),
		ProfitGrowthRate:      rate(0.2),
		Condition:             models.ConditionAnd,
		PeriodType:            models.PeriodYear,
	}
}

// -----------------------------------------------------------------------------

func TestFilter(t *testing.T) {
	svc := &stubService{results: []models.MScreenResult{
		{SecurityCode: "000001", SecurityName: "Alpha", Industry: "Tech"},
	}}
	client := NewClient(dial(t, svc))

	resp, err := client.Filter(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if resp.Count != 1 || resp.Stocks[0].SecurityName != "Alpha" {
		t.Errorf("resp = %+v", resp)
	}
	if svc.lastReq.MinConsecutivePeriods != 3 || *svc.lastReq.RevenueGrowthRate != 0.2 || svc.lastReq.IndustryNames[0] != "Tech" {
		t.Errorf("request not forwarded: %+v", svc.lastReq)
	}
}

func TestFilterStatusCodes(t *testing.T) {
	badCondition := validRequest()
	badCondition.Condition = "XOR"
	missingRate := validRequest()
	missingRate.ProfitGrowthRate = nil

	tests := []struct {
		name string
		req  models.MScreenRequest
		err  error
		want codes.Code
	}{
		{"invalid argument", badCondition, nil, codes.InvalidArgument},
		{"missing growth rate", missingRate, nil, codes.InvalidArgument},
		{"service validation", validRequest(), helpers.NewValidationError("bad date"), codes.InvalidArgument},
		{"internal", validRequest(), errors.New("db down"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(dial(t, &stubService{err: tt.err}))
			_, err := client.Filter(context.Background(), tt.req)
			if got := status.Code(err); got != tt.want {
				t.Errorf("code = %v, want %v (%v)", got, tt.want, err)
			}
		})
	}
}

func TestChartData(t *testing.T) {
	rev := 12.5
	svc := &stubService{chart: models.MChartData{
		Dates:   []string{"2024-03-31"},
		Revenue: []*float64{&rev},
		Profit:  []*float64{nil},
	}}
	client := NewClient(dial(t, svc))

	data, err := client.ChartData(context.Background(), "000001", "", 4)
	if err != nil {
		t.Fatalf("ChartData: %v", err)
	}
	if svc.lastCode != "000001" || svc.lastType != models.PeriodSeason || svc.lastLimit != 4 {
		t.Errorf("forwarded %q %q %d", svc.lastCode, svc.lastType, svc.lastLimit)
	}
	if len(data.Dates) != 1 || *data.Revenue[0] != 12.5 || data.Profit[0] != nil {
		t.Errorf("data = %+v", data)
	}
}

func TestChartDataRejectsBadArguments(t *testing.T) {
	conn := dial(t, &stubService{})

	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{"missing code", map[string]interface{}{"period_type": "year"}},
		{"zero limit", map[string]interface{}{"sec_code": "000001", "limit": 0}},
		{"fractional limit", map[string]interface{}{"sec_code": "000001", "limit": 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := structpb.NewStruct(tt.fields)
			if err != nil {
				t.Fatal(err)
			}
			err = conn.Invoke(context.Background(), chartDataMethod, in, new(structpb.Struct))
			if status.Code(err) != codes.InvalidArgument {
				t.Errorf("err = %v, want InvalidArgument", err)
			}
		})
	}
}

func TestHealthService(t *testing.T) {
	resp, err := healthpb.NewHealthClient(dial(t, &stubService{})).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v", resp.GetStatus())
	}
}

func TestFilterRecoversFromPanic(t *testing.T) {
	svc := &stubService{panicMsg: "Cannot create a Decimal from NaN"}
	client := NewClient(dial(t, svc))

	_, err := client.Filter(context.Background(), validRequest())
	if got := status.Code(err); got != codes.Internal {
		t.Fatalf("code = %v, want Internal (%v)", got, err)
	}

	svc.panicMsg = ""
	svc.results = []models.MScreenResult{{SecurityCode: "000001"}}
	resp, err := client.Filter(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("server did not survive the panic: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("resp = %+v", resp)
	}
}
