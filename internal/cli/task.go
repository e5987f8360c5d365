package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/conveyor/internal/domain"
	"github.com/shaiso/conveyor/internal/publisher"
)

// NewTaskCmd создаёт группу команд для работы с task'ами.
func NewTaskCmd(clientFn func() *publisher.Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Publish and inspect tasks",
	}

	cmd.AddCommand(
		newTaskPublishCmd(clientFn, outputFn),
		newTaskGetCmd(clientFn, outputFn),
		newTaskWaitCmd(clientFn, outputFn),
	)

	return cmd
}

func newTaskPublishCmd(clientFn func() *publisher.Client, outputFn func() *Output) *cobra.Command {
	var inputJSON string
	var wait bool

	cmd := &cobra.Command{
		Use:   "publish <kind>",
		Short: "Publish a task of the given kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var input domain.TaskInput
			if inputJSON != "" {
				if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
					return fmt.Errorf("parse --input: %w", err)
				}
			}

			task, err := client.Publish(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			if wait {
				task, err = client.Wait(cmd.Context(), task.ID)
				if err != nil {
					return err
				}
			}

			out.Task(task)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputJSON, "input", "", "Task input as a JSON document")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the task to finish")

	return cmd
}

func newTaskGetCmd(clientFn func() *publisher.Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse task id: %w", err)
			}

			task, err := client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out.Task(task)
			return nil
		},
	}
}

func newTaskWaitCmd(clientFn func() *publisher.Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <task-id>",
		Short: "Wait for a task to finish and show it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse task id: %w", err)
			}

			task, err := client.Wait(cmd.Context(), id)
			if err != nil {
				return err
			}

			out.Task(task)
			return nil
		},
	}
}
