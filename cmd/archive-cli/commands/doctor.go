package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"minerva-archive/lib/browser"
	"minerva-archive/lib/serviceutil"
	"minerva-archive/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var doctorChrome *string

func init() {
	doctorChrome = doctorCmd.Flags().String("chrome", browser.DEFAULT_ADDR, "The devtools address of the running browser.")
	rootCmd.AddCommand(doctorCmd)
}

type browserVersion struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	WebSocketDebuggerUrl string `json:"webSocketDebuggerUrl"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks that a debuggable browser is reachable.",
	Run: func(cmd *cobra.Command, args []string) {
		client := resty.New()
		client.SetTimeout(time.Second * 5)
		telemetry.InstrumentResty(client, "archive-cli")

		res, err := client.R().
			SetContext(cmd.Context()).
			Get(fmt.Sprintf("http://%s/json/version", *doctorChrome))
		if err != nil {
			fmt.Println("Could not reach the browser. Start one with, for example:")
			fmt.Println("  google-chrome --remote-debugging-port=9222 --user-data-dir=/tmp/minerva-profile")
			serviceutil.Fatal("failed to query devtools endpoint", err)
		}

		info := browserVersion{}
		if err := json.Unmarshal(res.Body(), &info); err != nil {
			serviceutil.Fatal("failed to decode devtools response", err)
		}

		fmt.Printf("browser:   %s\n", info.Browser)
		fmt.Printf("protocol:  %s\n", info.ProtocolVersion)
		fmt.Printf("websocket: %s\n", info.WebSocketDebuggerUrl)
	},
}
