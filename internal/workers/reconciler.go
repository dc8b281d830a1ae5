package workers

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"fitQuestAPI/services"
)

const defaultSweepInterval = 24 * time.Hour

// ChallengeReconciler periodically finalizes challenges whose end date
// has passed, so rewards land even when no participant uploads again
// after expiry.
type ChallengeReconciler struct {
	mu sync.Mutex

	challenges *services.ChallengeService
	interval   time.Duration

	running bool
	done    chan struct{}
}

func NewChallengeReconciler(challenges *services.ChallengeService) *ChallengeReconciler {
	return &ChallengeReconciler{
		challenges: challenges,
		interval:   sweepIntervalFromEnv(),
	}
}

func sweepIntervalFromEnv() time.Duration {
	raw := os.Getenv("RECONCILE_INTERVAL")
	if raw == "" {
		return defaultSweepInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("reconciler: invalid RECONCILE_INTERVAL %q, using %v", raw, defaultSweepInterval)
		return defaultSweepInterval
	}
	return d
}

// Start runs an immediate sweep and then sweeps on every tick until
// Stop is called or the context ends.
func (r *ChallengeReconciler) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	log.Printf("reconciler: starting (interval: %v)", r.interval)

	go func() {
		r.sweep(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

func (r *ChallengeReconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	close(r.done)
	log.Println("reconciler: stopped")
}

func (r *ChallengeReconciler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	finalized, err := r.challenges.FinalizeExpired(sweepCtx)
	if err != nil {
		log.Printf("reconciler: sweep failed: %v", err)
		return
	}
	if finalized > 0 {
		log.Printf("reconciler: finalized %d expired challenges", finalized)
	}
}
