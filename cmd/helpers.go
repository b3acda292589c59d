package cmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikogura/suture-assessor/pkg/config"
	"github.com/nikogura/suture-assessor/pkg/scorer"
	"github.com/pkg/errors"
)

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				// Clear the line and ensure cursor is at start of new line
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	if s == nil {
		return
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// resolveTarget picks the grading curve: the flag value wins over config.
func resolveTarget(flagValue string, cfg *config.Config) (target scorer.Distribution, err error) {
	if flagValue != "" {
		target, err = scorer.ParseDistribution(flagValue)
		return target, err
	}
	if cfg != nil {
		target, err = cfg.TargetDistribution()
		return target, err
	}
	target = scorer.DefaultDistribution()
	return target, err
}

// resolvePolicy picks the tie policy: the flag value wins over config.
func resolvePolicy(flagValue string, cfg *config.Config) (policy scorer.TiePolicy, err error) {
	if flagValue != "" || cfg == nil {
		policy, err = scorer.ParseTiePolicy(flagValue)
		return policy, err
	}
	policy, err = cfg.Policy()
	return policy, err
}

// describeError marks scorer configuration and integration failures so they
// are not mistaken for transient model errors.
func describeError(err error) (described error) {
	if err == nil {
		return described
	}
	if scorer.IsIntegrationError(err) {
		described = errors.Wrap(err, "configuration/integration error (not retryable)")
		return described
	}
	described = err
	return described
}
