package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/metrics"
	"hotspot-monitor/internal/models"
)

// maxParallel bounds concurrent checks in one round
const maxParallel = 4

// Prober checks several independent endpoints and reports reachable as
// soon as one of them answers.
type Prober struct {
	targets []string
	timeout time.Duration
	checker Checker
	logger  *logrus.Logger
	now     func() time.Time
}

// New creates a Prober using the default http/tcp checker
func New(targets []string, timeout time.Duration, logger *logrus.Logger) *Prober {
	return NewWithChecker(targets, timeout, DefaultChecker(), logger)
}

// NewWithChecker creates a Prober with a custom checker
func NewWithChecker(targets []string, timeout time.Duration, checker Checker, logger *logrus.Logger) *Prober {
	return &Prober{
		targets: append([]string(nil), targets...),
		timeout: timeout,
		checker: checker,
		logger:  logger,
		now:     time.Now,
	}
}

// Probe runs one round. It never returns an error; every failure mode,
// including a panicking checker, becomes an unreachable verdict.
func (p *Prober) Probe(ctx context.Context) models.ProbeResult {
	result := models.ProbeResult{
		Timestamp: p.now(),
		Targets:   make([]models.TargetResult, len(p.targets)),
	}
	if len(p.targets) == 0 {
		result.Reason = "no probe targets configured"
		return result
	}

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	swg := sizedwaitgroup.New(maxParallel)
	for i, target := range p.targets {
		if err := swg.AddWithContext(roundCtx); err != nil {
			result.Targets[i] = models.TargetResult{Target: target, Error: "skipped: " + err.Error()}
			continue
		}
		go func(i int, target string) {
			defer swg.Done()
			tr := p.check(roundCtx, target)
			result.Targets[i] = tr
			if tr.OK {
				cancel()
			}
		}(i, target)
	}
	swg.Wait()

	var reasons []string
	for _, tr := range result.Targets {
		if tr.OK {
			if !result.Reachable || tr.Latency < result.Latency {
				result.Latency = tr.Latency
			}
			result.Reachable = true
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", tr.Target, tr.Error))
	}
	if !result.Reachable {
		result.Reason = strings.Join(reasons, "; ")
		if ctx.Err() != nil {
			result.Reason = "probe cancelled: " + result.Reason
		}
	}

	p.logger.WithFields(logrus.Fields{
		"reachable": result.Reachable,
		"latency":   result.Latency,
	}).Debug("Probe round finished")

	return result
}

func (p *Prober) check(ctx context.Context, target string) (tr models.TargetResult) {
	tr.Target = target
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			tr.OK = false
			tr.Error = fmt.Sprintf("checker panic: %v", r)
			p.logger.WithFields(logrus.Fields{
				"target": target,
				"panic":  r,
			}).Error("Reachability checker panicked")
		}
	}()

	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.checker.Check(checkCtx, target)
	tr.Latency = time.Since(start)
	if err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s", p.timeout)
		}
		tr.Error = err.Error()
		p.logger.WithField("target", target).WithError(err).Debug("Reachability check failed")
	} else {
		tr.OK = true
	}
	metrics.RecordTarget(target, tr.OK, tr.Latency)
	return tr
}
