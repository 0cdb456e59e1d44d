// Command icgwctl is a thin demonstration client for the Public Request
// API (spec.md §4.8). It is not the outer accept-loop/TLS server described in
// spec.md §1 as out of scope; it exists to exercise request.Builder and
// agent/httpagent end to end against a running backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icgateway/gateway"
	"github.com/icgateway/gateway/agent/httpagent"
	"github.com/icgateway/gateway/gatewayconfig"
	"github.com/icgateway/gateway/request"
)

// stubVerifier always reports the request as verified at the minimum
// protocol version with no certified header/status subset. Real
// certificate/signature verification is an external concern per spec.md §1;
// wire a production gateway.Verifier here to get actual certification.
type stubVerifier struct{}

func (stubVerifier) VerifyRequestResponsePair(
	_ context.Context,
	_ gateway.HttpRequest,
	_ gateway.HttpResponse,
	_ string,
	_ int64,
	_ int64,
	_ []byte,
	minVersion uint16,
) (gateway.VerificationInfo, error) {
	return gateway.VerificationInfo{VerificationVersion: minVersion}, nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	gateway.SetLogger(logger)

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		backend        string
		service        string
		method         string
		path           string
		allowSkipVerif bool
		timeout        time.Duration
		configPath     string
	)

	root := &cobra.Command{
		Use:   "icgwctl",
		Short: "Drive the gateway's Public Request API against a backend",
		Long: `icgwctl builds one gateway.GatewayResponse by sending an HTTP
request through request.Builder, using agent/httpagent as the Agent Facade.

It is a development and diagnostic tool, not a production reverse proxy:
it opens no listener and terminates after printing one response.`,
	}

	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Issue a single request through the gateway pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := gatewayconfig.Default()
			if configPath != "" {
				loaded, err := gatewayconfig.Load(configPath)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				cfg = loaded
			}

			a := httpagent.New(backend)
			b := request.New(a, stubVerifier{}, service, method).
				WithConfig(cfg).
				UnsafeAllowSkipVerification(allowSkipVerif)

			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
			if err != nil {
				return fmt.Errorf("building request: %w", err)
			}
			b = b.WithRequest(httpReq, nil)

			resp, err := b.Send(ctx)
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}

			fmt.Printf("status: %d\n", resp.Status)
			for _, h := range resp.Headers {
				fmt.Printf("%s: %s\n", h.Name, h.Value)
			}
			fmt.Println()

			switch resp.Body.Kind {
			case gateway.BodyFull:
				os.Stdout.Write(resp.Body.Full)
			case gateway.BodyStream:
				for {
					frame, err := resp.Body.Stream.Next()
					if err != nil {
						break
					}
					os.Stdout.Write(frame.Data)
				}
			}
			return nil
		},
	}
	fetch.Flags().StringVar(&backend, "backend", "http://127.0.0.1:8000", "base URL of the backend RPC endpoint")
	fetch.Flags().StringVar(&service, "service", "", "backend service identifier")
	fetch.Flags().StringVar(&method, "method", "http_request", "backend query method name")
	fetch.Flags().StringVar(&path, "path", "/", "request path and query to forward")
	fetch.Flags().BoolVar(&allowSkipVerif, "allow-skip-verification", false, "permit skipping verification when the reply carries no certificate header")
	fetch.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall request timeout")
	fetch.Flags().StringVar(&configPath, "config", "", "path to a gatewayconfig TOML file overriding the protocol ceilings (defaults built in if unset)")
	_ = fetch.MarkFlagRequired("service")

	root.AddCommand(fetch)
	return root
}
