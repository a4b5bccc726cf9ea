package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"stock-screener/src/grpc_control"
	"stock-screener/src/models"

	"github.com/charmbracelet/glamour"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type screenCmd struct {
	start      string
	industries string
	periods    int
	revenue    float64
	profit     float64
	condition  string
	periodType string
	remote     string
	raw        bool
}

func (*screenCmd) Name() string     { return "screen" }
func (*screenCmd) Synopsis() string { return "screen securities for consecutive revenue and profit growth" }
func (*screenCmd) Usage() string {
	return `screener [-config <file>] screen -s <start_date> [-n <periods>] [-r <rate>] [-p <rate>]
    [-c AND|OR] [-t year|season] [-industry <a,b>] [-remote <host:port>] [-raw]

  Runs one screen and prints the qualifying securities as a table. Rates are
  decimals (0.2 means 20%). With -remote the screen runs on a gRPC server,
  otherwise against the configured storage.
`
}

func (c *screenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "earliest report date to consider (YYYY-MM-DD)")
	f.StringVar(&c.industries, "industry", "", "comma separated industry names; empty means all")
	f.IntVar(&c.periods, "n", 3, "number of consecutive periods required")
	f.Float64Var(&c.revenue, "r", 0.2, "minimum revenue growth rate")
	f.Float64Var(&c.profit, "p", 0.2, "minimum profit growth rate")
	f.StringVar(&c.condition, "c", models.ConditionAnd, "AND requires both metrics per period, OR requires either")
	f.StringVar(&c.periodType, "t", models.PeriodYear, "period type: year or season")
	f.StringVar(&c.remote, "remote", "", "gRPC address of a running screener")
	f.BoolVar(&c.raw, "raw", false, "print markdown instead of rendering it")
}

// -----------------------------------------------------------------------------

func (c *screenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req := c.request()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if err := req.CheckThresholds(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var (
		resp models.MScreenResponse
		err  error
	)
	if c.remote != "" {
		resp, err = c.screenRemote(ctx, req)
	} else {
		resp, err = c.screenLocal(ctx, req)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	out := resultsMarkdown(req, resp)
	if !c.raw {
		if out, err = renderMarkdown(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

// -----------------------------------------------------------------------------

func (c *screenCmd) request() models.MScreenRequest {
	revenue, profit := c.revenue, c.profit
	var industries []string
	if c.industries != "" {
		industries = strings.Split(c.industries, ",")
	}
	return models.MScreenRequest{
		StartDate:             c.start,
		IndustryNames:         industries,
		MinConsecutivePeriods: c.periods,
		RevenueGrowthRate:     &revenue,
		ProfitGrowthRate:      &profit,
		Condition:             strings.ToUpper(c.condition),
		PeriodType:            strings.ToLower(c.periodType),
	}.Normalized()
}

func (c *screenCmd) screenLocal(ctx context.Context, req models.MScreenRequest) (models.MScreenResponse, error) {
	a, err := openApp(ctx)
	if err != nil {
		return models.MScreenResponse{}, err
	}
	defer a.close()

	stocks, err := a.service.FilterStocks(ctx, req)
	if err != nil {
		return models.MScreenResponse{}, err
	}
	return models.NewScreenResponse(stocks), nil
}

func (c *screenCmd) screenRemote(ctx context.Context, req models.MScreenRequest) (models.MScreenResponse, error) {
	conn, err := grpc.NewClient(c.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return models.MScreenResponse{}, fmt.Errorf("connecting to %s: %w", c.remote, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return grpc_control.NewClient(conn).Filter(ctx, req)
}

// -----------------------------------------------------------------------------

// resultsMarkdown formats a screen response as a markdown section with a table.
func resultsMarkdown(req models.MScreenRequest, resp models.MScreenResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Screen since %s\n\n", req.StartDate)
	fmt.Fprintf(&b, "%d consecutive %s periods, revenue >= %s%% %s profit >= %s%%",
		req.MinConsecutivePeriods, req.PeriodType, percent(req.RevenueGrowthRate), req.Condition, percent(req.ProfitGrowthRate))
	if len(req.IndustryNames) > 0 {
		fmt.Fprintf(&b, ", industries: %s", strings.Join(req.IndustryNames, ", "))
	}
	b.WriteString("\n\n")

	if resp.Count == 0 {
		b.WriteString("No security qualifies.\n")
		return b.String()
	}

	b.WriteString("| Code | Name | Industry |\n")
	b.WriteString("|------|------|----------|\n")
	for _, s := range resp.Stocks {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(s.SecurityCode), cell(s.SecurityName), cell(s.Industry))
	}
	fmt.Fprintf(&b, "\n%d securities\n", resp.Count)
	return b.String()
}

func percent(rate *float64) string {
	if rate == nil || math.IsNaN(*rate) || math.IsInf(*rate, 0) {
		return "?"
	}
	return decimal.NewFromFloat(*rate).Shift(2).String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
