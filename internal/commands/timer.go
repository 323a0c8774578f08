package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekagra-app/ekagra/internal/countdown"
	"github.com/ekagra-app/ekagra/internal/tui"
	"github.com/ekagra-app/ekagra/pkg/models"
)

var (
	startDuration int
	startTask     string

	rangeStart string
	rangeEnd   string
	histKind   string
)

var startCmd = &cobra.Command{
	Use:   "start [pomodoro|shortBreak|longBreak]",
	Short: "Start a focus timer",
	Long: `Start a timer session and open the interactive countdown.

Examples:
  ekagra start                       # 25 minute pomodoro
  ekagra start pomodoro --task <id>  # pomodoro linked to a task
  ekagra start shortBreak -d 5       # 5 minute break`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.KindPomodoro
		if len(args) == 1 {
			kind = models.TimerKind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown timer type %q", args[0])
			}
		}

		duration := startDuration
		if duration == 0 {
			prefs := models.DefaultPreferences()
			switch kind {
			case models.KindShortBreak:
				duration = prefs.ShortBreakMinutes
			case models.KindLongBreak:
				duration = prefs.LongBreakMinutes
			default:
				duration = prefs.PomodoroMinutes
			}
		}

		var taskID *string
		if startTask != "" {
			taskID = &startTask
		}

		svc, _, err := sessionBackend()
		if err != nil {
			return err
		}

		return tui.RunTimerTUI(countdown.New(svc), kind, duration, taskID)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past timer sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := sessionBackend()
		if err != nil {
			return err
		}

		filter := models.HistoryFilter{}
		if histKind != "" {
			k := models.TimerKind(histKind)
			if !k.Valid() {
				return fmt.Errorf("unknown timer type %q", histKind)
			}
			filter.Kind = &k
		}
		if filter.Start, err = parseRangeFlag(rangeStart); err != nil {
			return err
		}
		if filter.End, err = parseRangeFlag(rangeEnd); err != nil {
			return err
		}

		timers, err := svc.History(context.Background(), filter)
		if err != nil {
			return err
		}

		if len(timers) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}
		for _, t := range timers {
			state := "in progress"
			if t.Completed {
				state = "completed"
			}
			line := fmt.Sprintf("%s  %-10s  %2d min  %s",
				t.StartedAt.Format("2006-01-02 15:04"), t.Kind, t.DurationMinutes, state)
			if t.TaskView != nil {
				line += "  · " + t.TaskView.Title
			}
			fmt.Println(line)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completed-session totals by timer type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := sessionBackend()
		if err != nil {
			return err
		}

		start, err := parseRangeFlag(rangeStart)
		if err != nil {
			return err
		}
		end, err := parseRangeFlag(rangeEnd)
		if err != nil {
			return err
		}

		stats, err := svc.Stats(context.Background(), start, end)
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No completed sessions yet.")
			return nil
		}
		for _, s := range stats {
			fmt.Printf("%-10s  %3d sessions  %4d min total  %.1f min avg\n",
				s.Kind, s.TotalSessions, s.TotalMinutes, s.AverageDuration)
		}
		return nil
	},
}

func parseRangeFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", raw)
	}
	return &t, nil
}

func init() {
	startCmd.Flags().IntVarP(&startDuration, "duration", "d", 0, "duration in minutes (default per timer type)")
	startCmd.Flags().StringVar(&startTask, "task", "", "task ID to link the session to")

	historyCmd.Flags().StringVar(&histKind, "type", "", "filter by timer type")
	historyCmd.Flags().StringVar(&rangeStart, "from", "", "start of range (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&rangeEnd, "to", "", "end of range (YYYY-MM-DD)")

	statsCmd.Flags().StringVar(&rangeStart, "from", "", "start of range (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&rangeEnd, "to", "", "end of range (YYYY-MM-DD)")
}
