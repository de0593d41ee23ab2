package cmd

import (
	"log"
	"net/http"

	"github.com/BatikanHyt/postbench/pkg/echo"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var serveArgs struct {
	Addr       string
	Status     int
	FailOdd    bool
	FailStatus int
	Echo       bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local target server to try benchmarks against",
	Args:  cobra.NoArgs,
	RunE:  runServeCmd,
}

func init() {
	serveCmd.Flags().StringVarP(&serveArgs.Addr, "addr", "a", "127.0.0.1:8989", "Listen address")
	serveCmd.Flags().IntVarP(&serveArgs.Status, "status", "s", http.StatusOK, "Status code of every response")
	serveCmd.Flags().BoolVar(&serveArgs.FailOdd, "fail-odd", false, "Answer every second request with --fail-status")
	serveCmd.Flags().IntVar(&serveArgs.FailStatus, "fail-status", http.StatusInternalServerError, "Status code used by --fail-odd")
	serveCmd.Flags().BoolVarP(&serveArgs.Echo, "echo", "e", false, "Write the request body back")
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	h := &echo.Handler{
		Status:     serveArgs.Status,
		FailOdd:    serveArgs.FailOdd,
		FailStatus: serveArgs.FailStatus,
		Echo:       serveArgs.Echo,
	}
	// h2c serves cleartext HTTP/2 to "post --http2" against http:// targets
	handler := h2c.NewHandler(h, &http2.Server{})
	log.Printf("Listening on %s", serveArgs.Addr)
	return http.ListenAndServe(serveArgs.Addr, handler)
}
