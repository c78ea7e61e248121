package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hotspot-monitor/internal/models"
	"hotspot-monitor/internal/report"
	"hotspot-monitor/internal/scheduler"
	"hotspot-monitor/internal/web"
)

func runMonitor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mon := a.newMonitor()
	generator := report.NewGenerator(a.book, a.cfg.Logbook.Path, a.log)

	sched := scheduler.NewCronScheduler(a.book, generator, a.cfg.Reports, a.log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	var srv *web.Server
	if a.cfg.Status.Enabled {
		srv = web.New(mon, a.book, sched, a.cfg.Status.Listen, a.log)
		go func() {
			if err := srv.Start(); err != nil {
				a.log.WithError(err).Error("Status API stopped")
			}
		}()
	}

	if err := mon.Start(); err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"config":   a.cfg.Path,
		"logbook":  a.cfg.Logbook.Path,
		"headless": a.cfg.Monitor.Headless,
		"status":   a.cfg.Status.Listen,
	}).Info("Hotspot monitor running, press Ctrl+C to stop")

	<-ctx.Done()
	a.log.Info("Shutting down...")

	mon.Stop()
	mon.Wait()

	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.WithError(err).Warn("Status API forced to shutdown")
		}
	}
	return nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := a.newMonitor().RunOnce(ctx)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"connectivity": res.Connectivity,
		"latency_ms":   res.Probe.Latency.Milliseconds(),
		"attempts":     res.Attempts,
	}
	if res.Probe.Reason != "" {
		fields["reason"] = res.Probe.Reason
	}
	a.log.WithFields(fields).Info("Check cycle finished")

	if res.Connectivity != models.ConnectivityUp {
		return errNotConnected
	}
	return nil
}
