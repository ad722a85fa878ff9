package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/concurrentcube"
	"github.com/SeamusWaldron/concurrentcube/internal/config"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Rotate a cube from many workers and verify the result",
	Long: `Start a number of workers that each issue random rotations (and periodic
snapshots) against one shared cube. The order in which rotations actually ran
is recorded and replayed on a fresh cube; the two results must match.`,
	RunE: runSimulate,
}

func init() {
	addCubeFlags(simulateCmd)
	simulateCmd.Flags().Int("rotations", 0, "Rotations per worker")
	simulateCmd.Flags().Int("show-every", 0, "Snapshot after every n rotations (0 disables)")
	simulateCmd.Flags().Int64("seed", 0, "Random seed")
	simulateCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(simulateCmd)
}

// addCubeFlags registers the flags shared by simulate and watch.
func addCubeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("size", 0, "Cube size")
	cmd.Flags().Int("workers", 0, "Number of concurrent workers")
	cmd.Flags().Duration("hook-delay", 0, "Delay inside the before-rotation hook")
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("size") {
		cfg.Size, err = flags.GetInt("size")
	}
	if err == nil && flags.Changed("workers") {
		cfg.Workers, err = flags.GetInt("workers")
	}
	if err == nil && flags.Changed("rotations") {
		cfg.Rotations, err = flags.GetInt("rotations")
	}
	if err == nil && flags.Changed("show-every") {
		cfg.ShowEvery, err = flags.GetInt("show-every")
	}
	if err == nil && flags.Changed("seed") {
		cfg.Seed, err = flags.GetInt64("seed")
	}
	if err == nil && flags.Changed("hook-delay") {
		var d time.Duration
		d, err = flags.GetDuration("hook-delay")
		cfg.HookDelay = d.String()
	}
	if err == nil && flags.Changed("metrics-addr") {
		cfg.MetricsAddr, err = flags.GetString("metrics-addr")
	}
	if err == nil && flags.Changed("refresh") {
		var d time.Duration
		d, err = flags.GetDuration("refresh")
		cfg.RefreshInterval = d.String()
	}
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	return cfg.Validate()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	var reg prometheus.Registerer
	if cfg.MetricsAddr != "" {
		r := prometheus.NewRegistry()
		reg = r
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(r, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	result, err := Simulate(cmd.Context(), cfg, logger, reg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Simulation "+result.RunID))
	fmt.Fprintf(out, "Size: %d  Workers: %d\n", result.Size, cfg.Workers)
	fmt.Fprintf(out, "Rotations: %d applied, %d cancelled\n", result.Rotations, result.Cancelled)
	fmt.Fprintf(out, "Snapshots: %d\n", result.Shows)
	fmt.Fprintf(out, "Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(out)
	fmt.Fprintln(out, RenderNet(result.Final, false))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Colors conserved:      %s\n", verdict(result.Conserved))
	fmt.Fprintf(out, "Matches sequential run: %s\n", verdict(result.Sequential))

	if result.Interrupted {
		fmt.Fprintln(out, statusStyle.Render("(interrupted)"))
	}
	if !result.Conserved || !result.Sequential {
		return errors.New("simulation result is inconsistent")
	}
	return nil
}

// SimulationResult summarizes one simulation run.
type SimulationResult struct {
	RunID       string
	Size        int
	Rotations   int64
	Cancelled   int64
	Shows       int64
	Elapsed     time.Duration
	Final       concurrentcube.Snapshot
	Replayed    concurrentcube.Snapshot
	Conserved   bool
	Sequential  bool
	Interrupted bool
}

// recordedMove is one rotation as seen by the before-rotation hook.
type recordedMove struct {
	face  concurrentcube.Face
	layer int
	// skipped is set by the worker when Rotate failed after the hook saw it.
	skipped bool
}

type moveKey struct{}

// moveLog collects rotations in the order their hooks ran.
type moveLog struct {
	mu    sync.Mutex
	moves []*recordedMove
}

func (l *moveLog) add(m *recordedMove) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.moves = append(l.moves, m)
}

// Simulate runs cfg.Workers workers against one cube until every worker has
// issued cfg.Rotations rotations or ctx is done.
func Simulate(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*SimulationResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run", runID))
	delay := cfg.GetHookDelay()

	log := &moveLog{}
	opts := []concurrentcube.Option{
		concurrentcube.WithLogger(logger),
		concurrentcube.WithBeforeRotation(func(ctx context.Context, face concurrentcube.Face, layer int) error {
			if m, ok := ctx.Value(moveKey{}).(*recordedMove); ok {
				log.add(m)
			}
			if delay <= 0 {
				return nil
			}
			select {
			case <-time.After(delay):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	}
	if reg != nil {
		opts = append(opts, concurrentcube.WithMetrics(reg))
	}

	cube, err := concurrentcube.New(cfg.Size, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cube: %w", err)
	}
	logger.Info("simulation started",
		zap.String("cube", cube.ID()),
		zap.Int("size", cfg.Size),
		zap.Int("workers", cfg.Workers),
		zap.Int("rotations", cfg.Rotations))

	var applied, cancelled, shows atomic.Int64
	start := time.Now()

	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
		eg.Go(func() error {
			for i := 0; i < cfg.Rotations; i++ {
				m := &recordedMove{
					face:  concurrentcube.Faces[rng.Intn(len(concurrentcube.Faces))],
					layer: rng.Intn(cfg.Size),
				}
				if err := cube.Rotate(context.WithValue(egCtx, moveKey{}, m), m.face, m.layer); err != nil {
					m.skipped = true
					if !errors.Is(err, concurrentcube.ErrOperationCancelled) {
						return err
					}
					cancelled.Add(1)
					if egCtx.Err() != nil {
						return nil
					}
					continue
				}
				applied.Add(1)

				if cfg.ShowEvery > 0 && (i+1)%cfg.ShowEvery == 0 {
					snap, err := cube.Show(egCtx)
					if errors.Is(err, concurrentcube.ErrOperationCancelled) {
						return nil
					}
					if err != nil {
						return err
					}
					shows.Add(1)
					if !snap.Conserved() {
						return fmt.Errorf("snapshot lost colors: %v", snap.ColorCounts())
					}
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	final, err := cube.Show(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}

	replayed, err := replay(cfg.Size, log.moves)
	if err != nil {
		return nil, err
	}

	result := &SimulationResult{
		RunID:       runID,
		Size:        cfg.Size,
		Rotations:   applied.Load(),
		Cancelled:   cancelled.Load(),
		Shows:       shows.Load(),
		Elapsed:     time.Since(start),
		Final:       final,
		Replayed:    replayed,
		Conserved:   final.Conserved(),
		Sequential:  final.Equal(replayed),
		Interrupted: ctx.Err() != nil,
	}
	logger.Info("simulation finished",
		zap.Int64("applied", result.Rotations),
		zap.Int64("cancelled", result.Cancelled),
		zap.Duration("elapsed", result.Elapsed),
		zap.Bool("sequential", result.Sequential))
	return result, nil
}

// replay applies the recorded rotations one at a time on a fresh cube.
func replay(size int, moves []*recordedMove) (concurrentcube.Snapshot, error) {
	cube, err := concurrentcube.New(size)
	if err != nil {
		return concurrentcube.Snapshot{}, err
	}
	ctx := context.Background()
	for _, m := range moves {
		if m.skipped {
			continue
		}
		if err := cube.Rotate(ctx, m.face, m.layer); err != nil {
			return concurrentcube.Snapshot{}, fmt.Errorf("failed to replay rotation: %w", err)
		}
	}
	return cube.Show(ctx)
}

func verdict(ok bool) string {
	if ok {
		return okStyle.Render("yes")
	}
	return errorStyle.Render("NO")
}
