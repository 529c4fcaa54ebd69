package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/tgupload/pkg/app"
)

const serviceName = "tgupload"

// program adapts app.Run to the service manager callbacks. Start must not
// block, so the application runs in its own goroutine.
type program struct {
	params app.RunParams
	cancel context.CancelFunc
	done   chan error
	logger service.Logger
}

func (p *program) Start(service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		err := app.Run(ctx, p.params)
		p.done <- err
		if err != nil && ctx.Err() == nil {
			if p.logger != nil {
				_ = p.logger.Error(err)
			}
			os.Exit(1)
		}
	}()
	return nil
}

func (p *program) Stop(service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Install and control tgupload as an OS service",
	}
	cmd.PersistentFlags().String("log-level", "info", "Minimum log level of the service")
	cmd.PersistentFlags().String("data-dir", "", "Persistent data directory of the service")

	for _, action := range service.ControlAction {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the tgupload service", action),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, _, err := newService(cmd)
				if err != nil {
					return err
				}
				if err := service.Control(s, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the tgupload service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := newService(cmd)
			if err != nil {
				return err
			}
			status, err := s.Status()
			if errors.Is(err, service.ErrNotInstalled) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not installed")
				return nil
			}
			if err != nil {
				return fmt.Errorf("service status: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), statusText(status))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, prg, err := newService(cmd)
			if err != nil {
				return err
			}
			if prg.logger, err = s.Logger(nil); err != nil {
				return fmt.Errorf("service logger: %w", err)
			}
			return s.Run()
		},
	})
	return cmd
}

// newService builds the service definition. The installed command line
// replays the flags given here, with paths made absolute.
func newService(cmd *cobra.Command) (service.Service, *program, error) {
	params, err := runParams(cmd)
	if err != nil {
		return nil, nil, err
	}

	args := []string{"service", "run"}
	if params.ConfigPath != "" {
		abs, err := filepath.Abs(params.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		params.ConfigPath = abs
		args = append(args, "--config", abs)
	}
	if params.EnvFile != "" {
		abs, err := filepath.Abs(params.EnvFile)
		if err != nil {
			return nil, nil, err
		}
		params.EnvFile = abs
		args = append(args, "--env-file", abs)
	}
	if params.DataDir != "" {
		abs, err := filepath.Abs(params.DataDir)
		if err != nil {
			return nil, nil, err
		}
		params.DataDir = abs
		args = append(args, "--data-dir", abs)
	}
	args = append(args, "--log-level", params.LogLevel.String())

	prg := &program{params: params}
	s, err := service.New(prg, &service.Config{
		Name:        serviceName,
		DisplayName: "tgupload",
		Description: "Telegram bot uploading local files and folders to chats.",
		Arguments:   args,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	return s, prg, nil
}

func statusText(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
