package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-segpool/control"
	"github.com/momentics/hioload-segpool/log"
	"github.com/momentics/hioload-segpool/pool"
	"github.com/momentics/hioload-segpool/reclaim"
)

var (
	workers      int
	duration     time.Duration
	holdMax      int
	keepBytes    int64
	keepRatio    float64
	interval     time.Duration
	stepDuration time.Duration
	reclaimCPU   int
	heapAlloc    bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVarP(&workers, "workers", "w", 8, "Number of concurrent workers")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "How long to run the workload")
	cmd.Flags().IntVar(&holdMax, "hold", 64, "Maximum segments a worker holds at once")
	cmd.Flags().Int64Var(&keepBytes, "keep-bytes", 0, "Minimum free bytes kept per segment type")
	cmd.Flags().Float64Var(&keepRatio, "keep-ratio", 0.1, "Fraction of in-use bytes kept free per type")
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "Time between reclamation cycles")
	cmd.Flags().DurationVar(&stepDuration, "step", time.Millisecond, "Deadline of one reclamation slice")
	cmd.Flags().IntVar(&reclaimCPU, "cpu", -1, "Pin the reclaimer to this CPU (-1 disables)")
	cmd.Flags().BoolVar(&heapAlloc, "heap", false, "Back segments with Go heap memory instead of mmap")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the acquire/release workload with background reclamation",
		Long: `The run command starts the configured number of workers, each
acquiring and releasing random card set segment types, while a reclaimer
returns excess free segments on a timer.

Example:
  segpool-stress run --workers 16 --duration 10s
  segpool-stress run --keep-bytes 65536 --log-level trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
}

// usage tracks bytes held by workers per type.
type usage struct {
	bytes []atomic.Int64
}

func (u *usage) snapshot() []int64 {
	out := make([]int64, len(u.bytes))
	for i := range u.bytes {
		out[i] = u.bytes[i].Load()
	}
	return out
}

func runStress(parent context.Context) error {
	if workers <= 0 {
		return errors.Newf("workers must be positive, got %d", workers)
	}
	if parent == nil {
		parent = context.Background()
	}

	cfg := pool.DefaultCardSetConfiguration()
	opts := []pool.Option{}
	if heapAlloc {
		opts = append(opts, pool.WithAllocator(&pool.HeapAllocator{}))
	}
	fp, err := pool.NewFreePool(cfg, opts...)
	if err != nil {
		return err
	}

	store := control.NewConfigStore(reclaim.DefaultSettings(), map[string]any{
		reclaim.KeyKeepBytes:    keepBytes,
		reclaim.KeyKeepRatio:    keepRatio,
		reclaim.KeyInterval:     interval,
		reclaim.KeyStepDuration: stepDuration,
		reclaim.KeyCPU:          reclaimCPU,
	})
	used := &usage{bytes: make([]atomic.Int64, cfg.NumTypes())}
	metrics := control.NewMetricsRegistry()
	r, err := reclaim.New(fp, store, reclaim.WithUsedFunc(used.snapshot), reclaim.WithMetrics(metrics))
	if err != nil {
		return err
	}

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	fp.RegisterProbes(probes)

	reg := prometheus.NewRegistry()
	if err := reg.Register(pool.NewCollector(fp, "segpool")); err != nil {
		return errors.Wrap(err, "register collector")
	}

	ctx, cancel := context.WithTimeout(parent, duration)
	defer cancel()

	reclaimDone := make(chan struct{})
	go func() {
		defer close(reclaimDone)
		if err := r.Run(ctx); err != nil {
			log.Errorf("reclaimer: %v", err)
		}
	}()

	log.Infof("segpool-stress: %d workers for %v", workers, duration)
	var ops atomic.Int64
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			if err := work(ctx, fp, used, newRand(seed), &ops); err != nil {
				errCh <- err
			}
		}(int64(w) + time.Now().UnixNano())
	}
	wg.Wait()
	<-reclaimDone
	close(errCh)
	if err := <-errCh; err != nil {
		return err
	}

	// Final cycle with nothing in use: everything above the floor goes back.
	r.RunCycle(context.Background())

	fmt.Fprintf(os.Stdout, "operations: %d\n", ops.Load())
	fp.PrintTo(os.Stdout)
	printMetrics(metrics.GetSnapshot())
	printProbes(probes.DumpState())
	if err := printGathered(reg); err != nil {
		return err
	}

	segs, bytes := fp.Close()
	fmt.Fprintf(os.Stdout, "closed: destroyed %d segments size %d\n", segs, bytes)
	return nil
}

// work acquires and releases random segment types until ctx ends. Every
// held segment is released before returning.
func work(ctx context.Context, fp *pool.FreePool, used *usage, rnd *rand.Rand, ops *atomic.Int64) error {
	held := make([]*pool.Segment, 0, holdMax)
	release := func(seg *pool.Segment) {
		used.bytes[seg.Type()].Add(-seg.MemSize())
		fp.Release(seg)
	}
	defer func() {
		for _, seg := range held {
			release(seg)
		}
	}()

	for ctx.Err() == nil {
		if len(held) < holdMax && (len(held) == 0 || rnd.Intn(2) == 0) {
			typ := rnd.Intn(fp.NumTypes())
			seg, err := fp.Acquire(typ)
			if err != nil {
				return errors.Wrapf(err, "acquire type %d", typ)
			}
			used.bytes[typ].Add(seg.MemSize())
			seg.Bytes()[0] = byte(typ)
			held = append(held, seg)
		} else {
			i := rnd.Intn(len(held))
			seg := held[i]
			held[i] = held[len(held)-1]
			held = held[:len(held)-1]
			release(seg)
		}
		ops.Add(1)
	}
	return nil
}

func printMetrics(snap map[string]any) {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(os.Stdout, "reclaim:")
	for _, k := range keys {
		fmt.Fprintf(os.Stdout, "  %s: %v\n", k, snap[k])
	}
}

func printProbes(state map[string]any) {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(os.Stdout, "probes:")
	for _, k := range keys {
		fmt.Fprintf(os.Stdout, "  %s: %v\n", k, state[k])
	}
}

func printGathered(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	fmt.Fprintln(os.Stdout, "prometheus:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%q", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(os.Stdout, "  %s{%s } %v\n", mf.GetName(), labels, m.GetGauge().GetValue())
		}
	}
	return nil
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
