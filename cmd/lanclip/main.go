// Command lanclip shares clipboard contents between machines on the same
// LAN. Peers find each other over UDP broadcast and pull clipboards from
// one another over short-lived TCP connections; the terminal menu lists the
// discovered peers.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lanclip/lanclip/internal/breaker"
	"github.com/lanclip/lanclip/internal/clipboard"
	"github.com/lanclip/lanclip/internal/health"
	"github.com/lanclip/lanclip/internal/logging"
	"github.com/lanclip/lanclip/internal/menu"
	"github.com/lanclip/lanclip/internal/netwatch"
	"github.com/lanclip/lanclip/internal/session"
	"github.com/lanclip/lanclip/internal/transport"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "lanclip",
		Short:         "Share clipboards between machines on the same LAN",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// netBinder adapts the transport constructors to the engine's Binder
// capability so an epoch can be rebuilt wholesale.
type netBinder struct {
	cfg *Config
	log *zap.Logger
}

func (b netBinder) Bind() (net.IP, session.PacketConn, session.StreamListener, error) {
	ip, err := transport.LocalIP()
	if err != nil {
		return nil, nil, nil, err
	}
	packet, err := transport.BindPacket(b.cfg.Port, b.cfg.ReadTimeout, b.log)
	if err != nil {
		return nil, nil, nil, err
	}
	stream, err := transport.BindStream(b.cfg.Port, b.cfg.ReadTimeout, b.cfg.DialTimeout, b.log)
	if err != nil {
		_ = packet.Close()
		return nil, nil, nil, err
	}
	return ip, packet, stream, nil
}

func run() error {
	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.NewLogger(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	clip, err := clipboard.NewSystem(cfg.ReceiveDir, log)
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}

	checks := health.NewManager(version, log)
	checks.Register(health.NetworkChecker{})
	checks.Register(health.CheckerFunc("clipboard", func() (health.Status, string) {
		if _, err := clip.Read(); err != nil {
			return health.StatusDegraded, err.Error()
		}
		return health.StatusHealthy, ""
	}))

	go func() {
		log.Info("metrics server starting", zap.String("addr", cfg.MetricsAddr))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/healthz", checks.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	// A peer that stops accepting posts costs a dial timeout per copy;
	// the breaker fails those fast until it recovers.
	postBreaker := breaker.New(breaker.Settings{
		Name:    "post",
		Timeout: 6 * cfg.DialTimeout,
		OnStateChange: func(name string, from, to breaker.State) {
			log.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	console := menu.NewConsole("Quit")
	queue := session.NewQueue(16, log)
	engine := session.New(session.Config{
		PeerName:           cfg.PeerName,
		Port:               cfg.Port,
		Tick:               cfg.TickInterval,
		DebounceWindow:     cfg.DebounceWindow,
		RediscoverInterval: cfg.RediscoverInterval,
	}, session.Deps{
		Log:       log,
		Clipboard: clip,
		Menu:      console,
		Binder:    netBinder{cfg: cfg, log: log},
		Dial: func(target *net.TCPAddr, data []byte) error {
			return postBreaker.Do(func() error {
				return transport.ConnectAndSend(target, data, cfg.DialTimeout, log)
			})
		},
		Broadcasts: transport.BroadcastAddrs,
		Queue:      queue,
	})

	// The notifier callback runs on the watcher goroutine; it only enqueues.
	watcher := netwatch.NewPoller(cfg.NetPollInterval, func() {
		queue.Enqueue(session.Command{Kind: session.CmdNetworkChange})
	}, log)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("network watcher: %w", err)
	}
	defer watcher.Stop()

	engineDone := make(chan struct{})
	go func() {
		engine.Run()
		close(engineDone)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		console.Stop()
		queue.Enqueue(session.Command{Kind: session.CmdStop})
	}()

	log.Info("lanclip started",
		zap.String("peer", cfg.PeerName),
		zap.Int("port", cfg.Port),
		zap.String("version", version))

	// Blocking UI loop; returns when the user quits.
	console.Run()

	queue.Enqueue(session.Command{Kind: session.CmdStop})
	<-engineDone
	return nil
}
