//go:build linux || darwin || freebsd

package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/sagernet/sockets"
	"github.com/sagernet/sockets/common/control"
	E "github.com/sagernet/sockets/common/exceptions"
	"github.com/sagernet/sockets/common/log"
	"github.com/sagernet/sockets/common/socket"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type flags struct {
	Address     string        `json:"address"`
	Port        string        `json:"port"`
	Backlog     int           `json:"backlog"`
	IdleTimeout time.Duration `json:"idle_timeout"`
	Interface   string        `json:"interface"`
	RoutingMark int           `json:"routing_mark"`
	ReusePort   bool          `json:"reuse_port"`
	KeepAlive   time.Duration `json:"keep_alive"`
	NoDelay     bool          `json:"no_delay"`
	Metrics     string        `json:"metrics"`
	Verbose     bool          `json:"verbose"`
	Message     string        `json:"message"`
	ConfigFile  string        `json:"-"`
}

func main() {
	f := new(flags)

	command := &cobra.Command{
		Use:     "sockecho",
		Short:   "echo server and client over registry-managed sockets",
		Version: sockets.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, f); err != nil {
				return err
			}
			log.SetVerbose(f.Verbose)
			return nil
		},
		SilenceUsage: true,
	}
	command.PersistentFlags().StringVarP(&f.Port, "port", "p", "7007", "Set the port number or service name.")
	command.PersistentFlags().DurationVarP(&f.IdleTimeout, "idle", "t", time.Second, "Set the idle timeout of one transfer.")
	command.PersistentFlags().StringVarP(&f.Interface, "interface", "i", "", "Bind sockets to the network interface.")
	command.PersistentFlags().IntVar(&f.RoutingMark, "routing-mark", 0, "Set the routing mark of every socket.")
	command.PersistentFlags().DurationVar(&f.KeepAlive, "keep-alive", 0, "Enable TCP keep-alive with the idle period.")
	command.PersistentFlags().BoolVar(&f.NoDelay, "no-delay", false, "Disable Nagle's algorithm.")
	command.PersistentFlags().StringVar(&f.Metrics, "metrics", "", "Serve prometheus metrics on the address.")
	command.PersistentFlags().StringVarP(&f.ConfigFile, "config", "c", "", "Use a configuration file.")
	command.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose mode.")

	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "Run the echo server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), f)
		},
	}
	serveCommand.Flags().IntVarP(&f.Backlog, "backlog", "b", 64, "Set the listen backlog.")
	serveCommand.Flags().BoolVar(&f.ReusePort, "reuse-port", false, "Share the port with other listeners.")

	sendCommand := &cobra.Command{
		Use:   "send",
		Short: "Send a message and print the echo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd.Context(), f)
		},
	}
	sendCommand.Flags().StringVarP(&f.Address, "address", "a", "127.0.0.1", "Set the server address.")
	sendCommand.Flags().StringVarP(&f.Message, "message", "m", "hello", "Set the message.")

	command.AddCommand(serveCommand, sendCommand)

	if err := command.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// loadConfig fills every flag the user did not set from the configuration file.
func loadConfig(cmd *cobra.Command, f *flags) error {
	if f.ConfigFile == "" {
		return nil
	}
	content, err := os.ReadFile(f.ConfigFile)
	if err != nil {
		return E.Cause(err, "read config file")
	}
	var fileFlags struct {
		flags
		IdleTimeout string `json:"idle_timeout"`
		KeepAlive   string `json:"keep_alive"`
	}
	if err = json.Unmarshal(content, &fileFlags); err != nil {
		return E.Cause(err, "decode config file")
	}
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}
	if fileFlags.Address != "" && !changed("address") {
		f.Address = fileFlags.Address
	}
	if fileFlags.Port != "" && !changed("port") {
		f.Port = fileFlags.Port
	}
	if fileFlags.Backlog != 0 && !changed("backlog") {
		f.Backlog = fileFlags.Backlog
	}
	if fileFlags.IdleTimeout != "" && !changed("idle") {
		f.IdleTimeout, err = time.ParseDuration(fileFlags.IdleTimeout)
		if err != nil {
			return E.Cause(err, "parse idle_timeout")
		}
	}
	if fileFlags.Interface != "" && !changed("interface") {
		f.Interface = fileFlags.Interface
	}
	if fileFlags.RoutingMark != 0 && !changed("routing-mark") {
		f.RoutingMark = fileFlags.RoutingMark
	}
	if fileFlags.ReusePort && !changed("reuse-port") {
		f.ReusePort = true
	}
	if fileFlags.KeepAlive != "" && !changed("keep-alive") {
		f.KeepAlive, err = time.ParseDuration(fileFlags.KeepAlive)
		if err != nil {
			return E.Cause(err, "parse keep_alive")
		}
	}
	if fileFlags.NoDelay && !changed("no-delay") {
		f.NoDelay = true
	}
	if fileFlags.Metrics != "" && !changed("metrics") {
		f.Metrics = fileFlags.Metrics
	}
	if fileFlags.Verbose && !changed("verbose") {
		f.Verbose = true
	}
	if fileFlags.Message != "" && !changed("message") {
		f.Message = fileFlags.Message
	}
	return nil
}

// controls builds the socket option funcs applied before bind and connect.
func controls(f *flags) (listenerControl control.Func, connectControl control.Func) {
	listenerControl = control.ReuseAddr()
	if f.ReusePort {
		listenerControl = control.Append(listenerControl, control.ReusePort())
	}
	if f.Interface != "" {
		listenerControl = control.Append(listenerControl, control.BindToInterface(f.Interface))
		connectControl = control.Append(connectControl, control.BindToInterface(f.Interface))
	}
	if f.RoutingMark != 0 {
		listenerControl = control.Append(listenerControl, control.RoutingMark(f.RoutingMark))
		connectControl = control.Append(connectControl, control.RoutingMark(f.RoutingMark))
	}
	if f.KeepAlive > 0 {
		// accepted sockets inherit keep-alive from the listener
		listenerControl = control.Append(listenerControl, control.SetKeepAlivePeriod(f.KeepAlive, f.KeepAlive))
		connectControl = control.Append(connectControl, control.SetKeepAlivePeriod(f.KeepAlive, f.KeepAlive))
	}
	if f.NoDelay {
		connectControl = control.Append(connectControl, control.NoDelay())
	}
	return
}

func newManager(f *flags) *socket.Manager {
	options := socket.Options{
		Logger: log.NewLogger("socket"),
	}
	options.ListenerControl, options.ConnectControl = controls(f)
	if f.Metrics != "" {
		registry := prometheus.NewRegistry()
		options.Metrics = socket.NewMetrics(registry)
		logger := log.NewLogger("metrics")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			logger.Info("serving metrics at ", f.Metrics)
			if err := http.ListenAndServe(f.Metrics, mux); err != nil {
				logger.Error(err)
			}
		}()
	}
	return socket.NewManager(options)
}
