package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/logger"
	"github.com/Mohsinsiddi/w3mask/internal/provider"
	"github.com/Mohsinsiddi/w3mask/internal/server"
	"github.com/Mohsinsiddi/w3mask/internal/ui"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"github.com/toqueteos/webbrowser"
	"go.uber.org/zap"
)

var (
	serveListen  string
	serveNoOpen  bool
	serveNoQR    bool
	serveLogFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wallet bridge daemon",
	Long: `Run the daemon that every other command talks to.

The daemon serves a small page. Open it in a browser with a wallet
extension and keep the tab open: the page relays requests to the wallet
and reports account and chain changes back. Opening the page in another
tab replaces the first one.

Examples:
  w3mask serve
  w3mask serve --listen 127.0.0.1:9545 --no-open
  w3mask serve --log-level debug --log-file /tmp/w3mask.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, _, err := logger.New(cfg.LogLevel, verbose, serveLogFile)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		addr := cfg.ListenAddr
		if serveListen != "" {
			addr = serveListen
		}
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		pageURL := "http://" + l.Addr().String() + "/"

		sw := provider.NewSwitch()
		b := bridge.New(sw, bridge.WithLogger(log.Named("bridge")))
		defer b.Close()
		srv := server.New(b, sw, server.WithLogger(log.Named("server")))

		out(cmd, ui.Banner(Version))
		out(cmd, ui.Info("Open this page in the browser that has your wallet:"))
		out(cmd, "  "+ui.Addr(pageURL))
		if !serveNoQR {
			if qr, err := qrcode.New(pageURL, qrcode.Medium); err == nil {
				out(cmd, qr.ToSmallString(false))
			} else {
				log.Debug("qr code", zap.Error(err))
			}
		}
		if cfg.OpenBrowser && !serveNoOpen {
			if err := webbrowser.Open(pageURL); err != nil {
				out(cmd, ui.Warn("could not open a browser: "+err.Error()))
			}
		}
		out(cmd, ui.Hint("Ctrl+C to stop"))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Serve(ctx, l)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: listen_addr from config)")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "do not open the page in a browser")
	serveCmd.Flags().BoolVar(&serveNoQR, "no-qr", false, "do not print a QR code of the page URL")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "write daemon logs to a file instead of stderr")
}
