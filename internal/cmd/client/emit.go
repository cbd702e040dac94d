package client

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	cfgpkg "github.com/lazy-eggplant/vs.logger/internal/config"
	"github.com/lazy-eggplant/vs.logger/pkg/id"
	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

// NewEmitCommand constructs the `emit` command: a synthetic event producer
// for exercising a running server and its live viewer.
func NewEmitCommand() *cobra.Command {
	emitCmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit synthetic events to a log file and/or the publish socket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logFile, _ := cmd.Flags().GetString("log-file")
			socket, _ := cmd.Flags().GetString("socket")
			count, _ := cmd.Flags().GetInt("count")
			intervalMs, _ := cmd.Flags().GetInt("interval-ms")
			activity, _ := cmd.Flags().GetUint64("activity")

			if logFile == "" && socket == "" {
				return fmt.Errorf("at least one of --log-file or --socket is required")
			}

			var opts []vslog.Option
			if logFile != "" {
				opts = append(opts, vslog.WithLogFile(logFile))
			}
			if socket != "" {
				opts = append(opts, vslog.WithSocketPath(socket))
			}
			rec := vslog.New(opts...)
			defer rec.Close()

			if activity == 0 {
				activity = id.NewGenerator().Next()
			}
			fmt.Printf("emitting %d events, activity %d\n", count, activity)

			kinds := []vslog.Kind{vslog.KindOK, vslog.KindInfo, vslog.KindWarning, vslog.KindError, vslog.KindPanic}
			severities := []vslog.Severity{vslog.SeverityNone, vslog.SeverityLow, vslog.SeverityMid, vslog.SeverityHigh}
			for i := 0; i < count; i++ {
				rec.RecordActivity(
					kinds[rand.Intn(len(kinds))],
					severities[rand.Intn(len(severities))],
					activity, 0,
					fmt.Sprintf("Test log message number %d", i+1),
				)
				if intervalMs > 0 && i < count-1 {
					select {
					case <-cmd.Context().Done():
						return nil
					case <-time.After(time.Duration(intervalMs) * time.Millisecond):
					}
				}
			}
			return nil
		},
	}
	emitCmd.Flags().String("log-file", "", "Append events to this file")
	emitCmd.Flags().String("socket", cfgpkg.DefaultSocketPath(), "Publish events to this unixgram socket (empty to disable)")
	emitCmd.Flags().Int("count", 100, "Number of events to emit")
	emitCmd.Flags().Int("interval-ms", 1000, "Delay between events in ms")
	emitCmd.Flags().Uint64("activity", 0, "Activity id to stamp on events (0 generates one)")
	return emitCmd
}
