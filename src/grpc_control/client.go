package grpc_control

import (
	"context"

	"stock-screener/src/models"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote screener.v1.Screener and decodes replies into models.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// -----------------------------------------------------------------------------

func (c *Client) Filter(ctx context.Context, req models.MScreenRequest) (models.MScreenResponse, error) {
	var resp models.MScreenResponse

	in, err := encodeStruct(req)
	if err != nil {
		return resp, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, filterMethod, in, out); err != nil {
		return resp, err
	}

	err = decodeStruct(out, &resp)
	return resp, err
}

// -----------------------------------------------------------------------------

func (c *Client) ChartData(ctx context.Context, secCode, periodType string, limit int) (models.MChartData, error) {
	var data models.MChartData

	fields := map[string]interface{}{
		"sec_code":    secCode,
		"period_type": periodType,
	}
	if limit > 0 {
		fields["limit"] = limit
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return data, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, chartDataMethod, in, out); err != nil {
		return data, err
	}

	err = decodeStruct(out, &data)
	return data, err
}
