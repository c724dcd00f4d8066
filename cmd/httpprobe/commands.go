package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-httpclient/internal/app"
	"github.com/samvad-hq/samvad-httpclient/internal/config"
	"github.com/samvad-hq/samvad-httpclient/internal/logger"
	"github.com/samvad-hq/samvad-httpclient/pkg/httpclient"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

// cliState is filled by the root command before any subcommand runs.
type cliState struct {
	timeout       time.Duration
	trustedDomain string
	headers       []string
	logLevel      string

	cfg    *config.Config
	log    logger.Logger
	client *httpclient.Client
}

func newRootCommand() *cobra.Command {
	st := &cliState{}

	cmd := &cobra.Command{
		Use:   "httpprobe",
		Short: "HTTP reachability watcher and JSON request tool",
		Long: `httpprobe watches a list of HTTP targets and publishes an event whenever
one of them becomes reachable or unreachable. It can also issue single
GET, form POST and JSON POST requests and print the decoded response.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.DurationVar(&st.timeout, "timeout", 0, "Request and resource timeout (default from http_timeout_seconds)")
	flags.StringVar(&st.trustedDomain, "trusted-domain", "", "Accept the TLS certificate of this host without validation")
	flags.StringArrayVarP(&st.headers, "header", "H", nil, `Extra request header as "Name: value" (repeatable)`)
	flags.StringVar(&st.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newWatchCmd(st),
		newCheckCmd(st),
		newGetCmd(st),
		newPostCmd(st),
		newPostJSONCmd(st),
	)
	return cmd
}

func (st *cliState) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if st.timeout <= 0 {
			return fmt.Errorf("--timeout must be positive")
		}
		cfg.HTTPTimeout = st.timeout
		cfg.HTTPResourceTimeout = st.timeout
	}
	if flags.Changed("trusted-domain") {
		cfg.TrustedSSLDomain = strings.TrimSpace(st.trustedDomain)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = st.logLevel
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	st.cfg = cfg
	st.log = log
	st.client = app.NewClient(cfg, log)
	return nil
}

func (st *cliState) requestHeaders() (map[string]string, error) {
	return parsePairs(st.headers, ":", "header")
}

func newWatchCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Probe configured targets until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st.log.InfoObj("httpprobe watch starting", "config", st.cfg)

			p, err := app.NewProber(cmd.Context(), st.cfg, st.log)
			if err != nil {
				return fmt.Errorf("init prober: %w", err)
			}
			return p.Run(cmd.Context())
		},
	}
}

func newCheckCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Report whether a GET to url returns a 2xx status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !st.client.Check(cmd.Context(), args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), "down")
				return fmt.Errorf("%s is unreachable", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "up")
			return nil
		},
	}
}

func newGetCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "get <url>",
		Short: "GET url and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := st.requestHeaders()
			if err != nil {
				return err
			}
			out, err := httpclient.Get[any](cmd.Context(), st.client, args[0], headers)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newPostCmd(st *cliState) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "post <url>",
		Short: "POST form fields to url and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := st.requestHeaders()
			if err != nil {
				return err
			}
			form, err := buildForm(fields)
			if err != nil {
				return err
			}
			out, err := httpclient.Post[any](cmd.Context(), st.client, args[0], form, headers)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "data", "d", nil, "Form field as key=value (repeatable)")
	return cmd
}

func newPostJSONCmd(st *cliState) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "post-json <url>",
		Short: "POST a JSON document to url and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := st.requestHeaders()
			if err != nil {
				return err
			}
			if !json.Valid([]byte(data)) {
				return fmt.Errorf("--data is not valid JSON")
			}
			out, err := httpclient.PostJSON[any](cmd.Context(), st.client, args[0], json.RawMessage(data), headers)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&data, "data", "{}", "JSON request body")
	return cmd
}

// buildForm turns key=value pairs into a form, keeping flag order.
func buildForm(fields []string) (*httpclient.Form, error) {
	form := httpclient.NewForm()
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid form field %q (want key=value)", f)
		}
		form.Set(key, httpclient.String(value))
	}
	return form, nil
}

func parsePairs(items []string, sep, what string) (map[string]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, sep)
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid %s %q", what, item)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err := w.Write(pretty.Pretty(buf.Bytes()))
	return err
}
