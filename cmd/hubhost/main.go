// Command hubhost runs the kernel as a hosted process: it assembles a
// static application registry out of the two demo tasks, brings the
// kernel up, and serves it until a shutdown signal arrives.
//
// Grounded on the teacher's cmd/ublk-mem/main.go: the SIGUSR1
// goroutine-stack-dump handler and the SIGINT/SIGTERM
// graceful-shutdown-with-timeout pattern are kept in spirit, but flag
// parsing moves from stdlib flag to cobra/pflag, matching the rest of
// the example pack's CLI entry points.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	seos "github.com/nexus5x-dev/device-google-contexthub"
	"github.com/nexus5x-dev/device-google-contexthub/apps/blinky"
	"github.com/nexus5x-dev/device-google-contexthub/apps/echo"
	"github.com/nexus5x-dev/device-google-contexthub/internal/apphdr"
	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
	"github.com/nexus5x-dev/device-google-contexthub/internal/logging"
	"github.com/nexus5x-dev/device-google-contexthub/internal/manifest"
	"github.com/nexus5x-dev/device-google-contexthub/internal/promexport"
	"github.com/nexus5x-dev/device-google-contexthub/internal/syscallgate"
)

const (
	appIDEcho   uint64 = 1
	appIDBlinky uint64 = 2

	echoRequestEvt = constants.FirstUserEvent + 1
	echoReplyEvt   = constants.FirstUserEvent + 2
	blinkInterval  = 500 * time.Millisecond
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		manifestPath string
		metricsAddr  string
		cpuAffinity  []int
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "hubhost",
		Short: "Run the sensor-hub event kernel as a hosted process",
		Long: `hubhost brings up the kernel's core (queues, slab allocator,
task table, syscall gate), registers the built-in demo applications,
and runs the single-threaded dispatch loop until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(manifestPath, metricsAddr, cpuAffinity, logLevel)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to a bring-up manifest YAML file (optional)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on, e.g. 127.0.0.1:9090 (disabled if empty)")
	cmd.Flags().IntSliceVar(&cpuAffinity, "cpu-affinity", nil, "CPU indices to pin the dispatch loop to (single-element list recommended)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

func run(manifestPath, metricsAddrFlag string, cpuAffinity []int, logLevelFlag string) error {
	m := manifest.Defaults()
	if manifestPath != "" {
		loaded, err := manifest.Load(manifestPath)
		if err != nil {
			return fmt.Errorf("hubhost: %w", err)
		}
		m = loaded
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = parseLogLevel(logLevelFlag, m.LogLevel)
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	metricsAddr := metricsAddrFlag
	if metricsAddr == "" {
		metricsAddr = m.MetricsAddr
	}

	metrics := seos.NewMetrics()
	observer := seos.NewMetricsObserver(metrics)

	var k *seos.Kernel
	loader := &demoLoader{gate: func() *syscallgate.Gate { return k.Gate() }}
	registry := apphdr.NewStaticRegistry([]apphdr.Header{
		internalHeader(appIDEcho),
		internalHeader(appIDBlinky),
	})

	k = seos.New(seos.Config{
		Registry:    registry,
		Loader:      loader,
		Logger:      logger,
		Observer:    observer,
		CPUAffinity: cpuAffinity,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := k.Bootstrap(ctx); err != nil {
		logger.Errorf("bootstrap failed: %v", err)
		os.Exit(1)
	}
	logger.Infof("kernel bootstrapped, %d task(s) running", k.Table().Len())

	if metricsAddr != "" {
		exporter := promexport.New(metrics)
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Errorf("metrics server error: %v", err)
			}
		}()
		logger.Infof("metrics endpoint: http://%s/metrics", metricsAddr)
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := k.Run(ctx); err != nil {
			logger.Errorf("dispatch loop error: %v", err)
		}
	}()

	go drainExternalQueue(ctx, k, logger)

	installStackDumpHandler(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	cancel()
	k.Shutdown()

	select {
	case <-runDone:
	case <-time.After(1 * time.Second):
		logger.Info("dispatch loop shutdown timeout, forcing exit")
	}

	logger.Info("shutdown complete")
	return nil
}

// drainExternalQueue stands in for the original's hostIntfRequest
// driver: it is the one sanctioned consumer of the external queue,
// polling it non-blocking and handing each event to a host-interface
// transport (here, just a log line) rather than leaving it to pile up
// unread.
func drainExternalQueue(ctx context.Context, k *seos.Kernel, logger *logging.Logger) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				ev, ok := k.DequeueExternal(false)
				if !ok {
					break
				}
				logger.Debugf("delivered external event type=%d to host interface", ev.Type)
				if ev.Free != nil {
					ev.Free(ev.Data)
				}
			}
		}
	}
}

// installStackDumpHandler wires SIGUSR1 to a goroutine stack dump,
// written to stderr and to a timestamped file, for diagnosing a
// wedged dispatch loop in the field.
func installStackDumpHandler(logger *logging.Logger) {
	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1024*1024)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "\n=== GOROUTINE STACK DUMP ===\n%s\n=== END STACK DUMP ===\n\n", buf[:n])

			filename := fmt.Sprintf("hubhost-stacks-%d.txt", time.Now().Unix())
			if f, err := os.Create(filename); err == nil {
				fmt.Fprintf(f, "Goroutine stack dump at %s\n\n", time.Now().Format(time.RFC3339))
				f.Write(buf[:n])
				fmt.Fprintf(f, "\n\n=== GOROUTINE PROFILE ===\n")
				pprof.Lookup("goroutine").WriteTo(f, 2)
				f.Close()
				logger.Infof("stack trace written to file: %s", filename)
			}
		}
	}()
}

func internalHeader(appID uint64) apphdr.Header {
	return apphdr.Header{
		Magic:   constants.HeaderMagic,
		Version: constants.HeaderVersion,
		Marker:  constants.MarkerInternal,
		AppID:   appID,
	}
}

func parseLogLevel(flagValue, manifestValue string) logging.LogLevel {
	v := flagValue
	if v == "" || v == "info" {
		v = manifestValue
	}
	switch v {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// demoLoader turns the two compiled-in demo app headers into running
// tasks. gate is resolved lazily because the kernel's syscall gate
// does not exist until Bootstrap creates it, after this loader is
// already wired into the kernel's Config.
type demoLoader struct {
	gate func() *syscallgate.Gate
}

func (d *demoLoader) LoadInternal(hdr apphdr.Header) (interfaces.Task, error) {
	switch hdr.AppID {
	case appIDEcho:
		return echo.New(d.gate(), echoRequestEvt, echoReplyEvt), nil
	case appIDBlinky:
		return blinky.New(d.gate(), blinkInterval), nil
	default:
		return nil, fmt.Errorf("hubhost: unknown internal app id %d", hdr.AppID)
	}
}

func (d *demoLoader) LoadExternal(hdr apphdr.Header) (interfaces.Task, error) {
	return nil, fmt.Errorf("hubhost: external app loading is not supported by this host")
}
