package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts runApp to the kardianos/service lifecycle.
type program struct {
	cfgPath string
	errs    chan error
}

// Start implements service.Interface. Must not block.
func (p *program) Start(_ service.Service) error {
	go func() {
		p.errs <- runApp(p.cfgPath)
	}()
	return nil
}

// Stop implements service.Interface. The app installs its own signal
// handler, so the service manager's stop signal unwinds runApp.
func (p *program) Stop(_ service.Service) error {
	return nil
}

func newService(cfgPath string) (service.Service, *program, error) {
	prg := &program{cfgPath: cfgPath, errs: make(chan error, 1)}

	svcConfig := &service.Config{
		Name:        "faqbot",
		DisplayName: "faqbot",
		Description: "Self-hosted FAQ bot for chat platforms",
		Arguments:   []string{"service", "run"},
	}
	if cfgPath != "" {
		svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgPath)
	}

	svc, err := service.New(prg, svcConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("creating service: %w", err)
	}
	return svc, prg, nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage faqbot as a system service",
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")

	action := func(name string, fn func(service.Service) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: name + " the system service",
			RunE: func(c *cobra.Command, _ []string) error {
				cfgPath, _ := c.Flags().GetString("config")
				svc, _, err := newService(cfgPath)
				if err != nil {
					return err
				}
				if err := fn(svc); err != nil {
					return fmt.Errorf("service %s: %w", name, err)
				}
				fmt.Printf("Service %s: done\n", name)
				return nil
			},
		}
	}

	cmd.AddCommand(
		action("install", func(s service.Service) error { return s.Install() }),
		action("uninstall", func(s service.Service) error { return s.Uninstall() }),
		action("start", func(s service.Service) error { return s.Start() }),
		action("stop", func(s service.Service) error { return s.Stop() }),
		runServiceCmd(),
	)
	return cmd
}

// runServiceCmd is what the service manager itself invokes.
func runServiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "run",
		Hidden: true,
		RunE: func(c *cobra.Command, _ []string) error {
			cfgPath, _ := c.Flags().GetString("config")
			svc, prg, err := newService(cfgPath)
			if err != nil {
				return err
			}
			if err := svc.Run(); err != nil {
				return err
			}
			select {
			case err := <-prg.errs:
				return err
			default:
				return nil
			}
		},
	}
}
