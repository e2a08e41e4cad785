package main

import (
	"fmt"
	"io"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/spf13/cobra"
)

func newDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect outbox events that exhausted their publish attempts",
	}

	var (
		eventType string
		limit     int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List dead-lettered events, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := dlqEventFilter(eventType)
			if err != nil {
				return err
			}
			e, err := connect(cmd.Context(), true, false)
			if err != nil {
				return err
			}
			defer e.Close()

			rows, err := outbox.NewDLQRepository(e.db.DB()).List(cmd.Context(), filter, limit)
			if err != nil {
				return err
			}
			printDLQ(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	list.Flags().StringVar(&eventType, "type", "", "only this event type")
	list.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	cmd.AddCommand(list)
	return cmd
}

func dlqEventFilter(raw string) (enums.OutboxEventType, error) {
	if raw == "" {
		return "", nil
	}
	return enums.ParseOutboxEventType(raw)
}

func printDLQ(out io.Writer, rows []models.OutboxDLQ) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "dead letter queue is empty")
		return
	}
	for _, row := range rows {
		msg := ""
		if row.ErrorMessage != nil {
			msg = *row.ErrorMessage
		}
		fmt.Fprintf(out, "%s  %-28s  %-16s  attempts=%d  %s  %s\n",
			row.EventID, row.EventType, row.ErrorReason, row.AttemptCount, row.FailedAt.UTC().Format("2006-01-02T15:04:05Z"), msg)
	}
}
