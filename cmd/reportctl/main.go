package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pitchside/matchday/internal/client"
	"github.com/pitchside/matchday/internal/domains/dtos"
	"github.com/pitchside/matchday/pkg/logging"
	"go.uber.org/zap"
)

var (
	baseUrl = flag.String("url", "http://localhost:7202", "server base url")
	token   = flag.String("token", os.Getenv("MATCHDAY_TOKEN"), "session token")
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: reportctl [flags] <command> [args]

commands:
  fetch <matchId>                      print the report snapshot
  submit <matchId> <home> <away>       submit a scoreline (see -verify-home/-verify-away)
  standing <teamId>                    print a team's standing
  tail <matchId>                       join the live room and print broadcasts`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	verifyHome := flag.Bool("verify-home", false, "verify the home side on submit")
	verifyAway := flag.Bool("verify-away", false, "verify the away side on submit")
	notes := flag.String("notes", "", "report notes on submit")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
	}
	ctx := context.Background()

	switch args[0] {
	case "fetch":
		reportClient := newReportClient()
		report, err := reportClient.FetchReport(ctx, args[1])
		if err != nil {
			logging.Fatal("fetch failed", zap.Error(err))
		}
		printJson(report)

	case "submit":
		if len(args) != 4 {
			usage()
		}
		reportClient := newReportClient()
		snapshot, err := reportClient.FetchReport(ctx, args[1])
		if err != nil {
			logging.Fatal("fetch failed", zap.Error(err))
		}
		homeScore, err1 := strconv.Atoi(args[2])
		awayScore, err2 := strconv.Atoi(args[3])
		if err1 != nil || err2 != nil {
			usage()
		}
		result, err := reportClient.SubmitReport(ctx, args[1], snapshot.CanVerify, dtos.SubmitReportRequest{
			HomeScore:  homeScore,
			AwayScore:  awayScore,
			Notes:      *notes,
			VerifyHome: *verifyHome,
			VerifyAway: *verifyAway,
			Version:    snapshot.Version,
		})
		if err != nil {
			if conflict, ok := client.AsVersionConflict(err); ok {
				logging.Fatal("report changed since fetch",
					zap.Int64("current_version", conflict.CurrentVersion),
				)
			}
			logging.Fatal("submit failed", zap.Error(err))
		}
		printJson(result)

	case "standing":
		reportClient := newReportClient()
		standing, err := reportClient.FetchStanding(ctx, args[1])
		if err != nil {
			logging.Fatal("fetch failed", zap.Error(err))
		}
		printJson(standing)

	case "tail":
		liveClient, err := client.Dial(ctx, *baseUrl, args[1], *token, client.DefaultLiveConfig())
		if err != nil {
			logging.Fatal("dial failed", zap.Error(err))
		}
		defer liveClient.Close()
		snapshot, err := liveClient.JoinMatch(ctx, "")
		if err != nil {
			logging.Fatal("join failed", zap.Error(err))
		}
		printJson(snapshot.State)
		ticker := time.NewTicker(20 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case frame := <-liveClient.Updates():
				fmt.Println(string(frame.Raw))
			case <-ticker.C:
				if err := liveClient.Ping(ctx); err != nil {
					logging.Fatal("room unreachable", zap.Error(err))
				}
			case <-liveClient.Done():
				logging.Fatal("connection lost", zap.Error(liveClient.Err()))
			}
		}

	default:
		usage()
	}
}

func newReportClient() *client.ReportClient {
	reportClient, err := client.NewReportClient(*baseUrl, *token)
	if err != nil {
		logging.Fatal("invalid url", zap.Error(err))
	}
	return reportClient
}

func printJson(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logging.Fatal("encode failed", zap.Error(err))
	}
	fmt.Println(string(out))
}
