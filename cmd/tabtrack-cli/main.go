package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tabtrack/internal/event"
	"tabtrack/internal/ipc"
)

var socketPath string

var rootCmd = &cobra.Command{
	Use:           "tabtrack-cli",
	Short:         "CLI tool to interact with the tabtrack daemon",
	Long:          `A command-line interface to control tracking and query time, switching and category data from the running tabtrack daemon via its Unix socket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// call sends one command and exits on any failure, local or server-side.
func call(name string, args, out any) ipc.Response {
	resp, err := ipc.Call(socketPath, name, args, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		if resp.Status == "" {
			fmt.Fprintln(os.Stderr, "Is the tabtrack daemon running?")
		}
		os.Exit(1)
	}
	return resp
}

func printMessage(resp ipc.Response) {
	if resp.Message != "" {
		fmt.Println(okStyle.Render(resp.Message))
	}
}

// --- Command Definitions ---

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check if the tabtrack daemon is running",
	Run: func(cmd *cobra.Command, args []string) {
		printMessage(call(ipc.CmdPing, nil, nil))
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a tracking session",
	Run: func(cmd *cobra.Command, args []string) {
		printMessage(call(ipc.CmdStartTracking, nil, nil))
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the current tracking session",
	Run: func(cmd *cobra.Command, args []string) {
		printMessage(call(ipc.CmdStopTracking, nil, nil))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracking state and accumulated times",
	Run: func(cmd *cobra.Command, args []string) {
		var s ipc.StatusData
		call(ipc.CmdGetTrackingStatus, nil, &s)
		fmt.Println(renderStatus(s))
	},
}

var timesCmd = &cobra.Command{
	Use:   "times",
	Short: "Show session, today and week totals with time per domain",
	Run: func(cmd *cobra.Command, args []string) {
		var t ipc.TimesData
		call(ipc.CmdGetTrackingTimes, nil, &t)
		fmt.Println(renderTimes(t))
	},
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List every tracked domain with visits and category",
	Run: func(cmd *cobra.Command, args []string) {
		var d ipc.AllDomainTimesData
		call(ipc.CmdGetAllDomainTimes, nil, &d)
		fmt.Println(renderDomains(d))
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the tab/window switching report (daily, weekly, monthly)",
	Run: func(cmd *cobra.Command, args []string) {
		period, _ := cmd.Flags().GetString("period")
		var r ipc.ReportData
		call(ipc.CmdGetSwitchingReport, ipc.SwitchingReportArgs{Period: period}, &r)
		fmt.Println(renderReport(r))
	},
}

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Show the current focus score (0-100)",
	Run: func(cmd *cobra.Command, args []string) {
		var f ipc.FocusScoreData
		call(ipc.CmdGetFocusScore, nil, &f)
		fmt.Println(renderFocus(f))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show tracked time and switches per day",
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")
		var h ipc.HistoryData
		call(ipc.CmdGetHistory, ipc.HistoryArgs{Days: days}, &h)
		fmt.Println(renderHistory(h))
	},
}

var switchesCmd = &cobra.Command{
	Use:   "switches",
	Short: "Show the most recent tab and window switches",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		var s ipc.RecentSwitchesData
		call(ipc.CmdGetRecentSwitches, ipc.RecentSwitchesArgs{Limit: limit}, &s)
		fmt.Println(renderSwitches(s))
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage domain categories",
}

var categorySetCmd = &cobra.Command{
	Use:   "set <domain-or-url> <category>",
	Short: "Assign a category to a domain (applies to future time only)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		printMessage(call(ipc.CmdUpdateDomainCategory, ipc.CategoryArgs{Domain: args[0], Category: args[1]}, nil))
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name> [pattern...]",
	Short: "Add a category or extend an existing one with domain patterns",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printMessage(call(ipc.CmdAddCategory, ipc.AddCategoryArgs{Category: args[0], Patterns: args[1:]}, nil))
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories, their patterns and per-domain overrides",
	Run: func(cmd *cobra.Command, args []string) {
		var c ipc.CategoriesData
		call(ipc.CmdGetCategories, nil, &c)
		fmt.Println(renderCategories(c))
	},
}

var categoryTimesCmd = &cobra.Command{
	Use:   "times",
	Short: "Show time accumulated per category",
	Run: func(cmd *cobra.Command, args []string) {
		var c ipc.CategoryTimesData
		call(ipc.CmdGetCategoryTimes, nil, &c)
		fmt.Println(renderCategoryTimes(c))
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Erase all tracked data and stop tracking (categories are kept)",
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Erase all tracked data? [y/N] ") {
			fmt.Fprintln(os.Stderr, "Aborted. Pass --yes to confirm non-interactively.")
			os.Exit(1)
		}
		printMessage(call(ipc.CmdRestartAll, nil, nil))
	},
}

// Signal commands let scripts and the extension bridge feed the daemon by hand.

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Send a browser or activity signal to the daemon",
}

var signalActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Report user activity",
	Run: func(cmd *cobra.Command, args []string) {
		call(ipc.CmdActivityDetected, nil, nil)
	},
}

var signalTabCmd = &cobra.Command{
	Use:   "tab <tab-id> <window-id> <url>",
	Short: "Report that a tab became active",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		tabID, windowID := parseIDs(args[0], args[1])
		call(ipc.CmdTabActivated, event.TabActivated{TabID: tabID, WindowID: windowID, URL: args[2]}, nil)
	},
}

var signalWindowCmd = &cobra.Command{
	Use:   "window <window-id> [tab-id url]",
	Short: "Report a window focus change (window id -1 means the browser lost focus)",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return fmt.Errorf("expected <window-id> or <window-id> <tab-id> <url>, got %d args", len(args))
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		s := event.WindowFocusChanged{}
		if len(args) == 3 {
			s.WindowID, s.TabID = parseIDs(args[0], args[1])
			s.URL = args[2]
		} else {
			s.WindowID, _ = parseIDs(args[0], "0")
		}
		call(ipc.CmdWindowFocusChanged, s, nil)
	},
}

var signalIdleCmd = &cobra.Command{
	Use:       "idle <active|idle|locked>",
	Short:     "Report an idle state change",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(event.IdleActive), string(event.IdleIdle), string(event.IdleLocked)},
	Run: func(cmd *cobra.Command, args []string) {
		call(ipc.CmdIdleStateChanged, event.IdleStateChanged{State: event.IdleState(args[0])}, nil)
	},
}

// confirm asks on the terminal; without one the answer is no.
func confirm(prompt string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false
	}
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func parseIDs(a, b string) (int, int) {
	x, err := strconv.Atoi(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", a)
		os.Exit(2)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", b)
		os.Exit(2)
	}
	return x, y
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", ipc.DefaultSocketPath, "Path to the daemon's Unix socket")

	reportCmd.Flags().StringP("period", "p", "daily", "Report period (daily, weekly, monthly)")
	historyCmd.Flags().IntP("days", "d", 7, "Number of past days to include")
	switchesCmd.Flags().IntP("limit", "n", 10, "Number of switches to show")
	restartCmd.Flags().Bool("yes", false, "Confirm erasing all tracked data")

	categoryCmd.AddCommand(categorySetCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryTimesCmd)

	signalCmd.AddCommand(signalActivityCmd)
	signalCmd.AddCommand(signalTabCmd)
	signalCmd.AddCommand(signalWindowCmd)
	signalCmd.AddCommand(signalIdleCmd)

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(timesCmd)
	rootCmd.AddCommand(domainsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(switchesCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(signalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
