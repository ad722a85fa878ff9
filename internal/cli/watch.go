package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/concurrentcube"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a cube being rotated by concurrent workers",
	Long: `Start workers that rotate one shared cube until you quit, and redraw the cube
from a snapshot at every refresh.

Keyboard shortcuts:
  space   - Pause or resume the workers
  q/Esc   - Quit`,
	RunE: runWatch,
}

func init() {
	addCubeFlags(watchCmd)
	watchCmd.Flags().Duration("refresh", 0, "Redraw interval")
	rootCmd.AddCommand(watchCmd)
}

// Messages
type tickMsg time.Time
type snapshotMsg struct {
	snap concurrentcube.Snapshot
	err  error
}

// workerPool rotates a cube from several goroutines until stopped.
type workerPool struct {
	cube    *concurrentcube.Cube
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	paused  atomic.Bool
	applied atomic.Int64
}

func startWorkers(ctx context.Context, cube *concurrentcube.Cube, workers int, seed int64, logger *zap.Logger) *workerPool {
	ctx, cancel := context.WithCancel(ctx)
	p := &workerPool{cube: cube, cancel: cancel}
	for w := 0; w < workers; w++ {
		rng := rand.New(rand.NewSource(seed + int64(w)))
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for ctx.Err() == nil {
				if p.paused.Load() {
					select {
					case <-ctx.Done():
					case <-time.After(10 * time.Millisecond):
					}
					continue
				}
				face := concurrentcube.Faces[rng.Intn(len(concurrentcube.Faces))]
				err := cube.Rotate(ctx, face, rng.Intn(cube.Size()))
				if err == nil {
					p.applied.Add(1)
				} else if !errors.Is(err, concurrentcube.ErrOperationCancelled) {
					logger.Warn("rotation failed", zap.Error(err))
					return
				}
			}
		}()
	}
	return p
}

// stop cancels the workers and waits for them to return.
func (p *workerPool) stop() {
	p.cancel()
	p.wg.Wait()
}

// Model
type watchModel struct {
	pool     *workerPool
	refresh  time.Duration
	workers  int
	started  time.Time
	snap     concurrentcube.Snapshot
	haveSnap bool
	err      error
	quitting bool
}

func newWatchModel(pool *workerPool, workers int, refresh time.Duration) *watchModel {
	return &watchModel{
		pool:    pool,
		refresh: refresh,
		workers: workers,
		started: time.Now(),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.takeSnapshot(), m.tickCmd())
}

func (m *watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *watchModel) takeSnapshot() tea.Cmd {
	cube := m.pool.cube
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		snap, err := cube.Show(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.pool.paused.Store(!m.pool.paused.Load())
		}

	case tickMsg:
		return m, tea.Batch(m.takeSnapshot(), m.tickCmd())

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.snap = msg.snap
			m.haveSnap = true
			m.err = nil
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Cube %s", m.pool.cube.ID()[:8])))
	b.WriteString("\n\n")

	state := "RUNNING"
	if m.pool.paused.Load() {
		state = "PAUSED"
	}
	b.WriteString(phaseStyle.Render(state))
	b.WriteString("\n")

	applied := m.pool.applied.Load()
	elapsed := time.Since(m.started)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(applied) / elapsed.Seconds()
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"Size: %d  Workers: %d  Rotations: %d (%.0f/s)",
		m.pool.cube.Size(), m.workers, applied, rate)))
	b.WriteString("\n\n")

	if m.haveSnap {
		b.WriteString(RenderNet(m.snap, false))
		b.WriteString("\n\n")
		if m.snap.Conserved() {
			b.WriteString(okStyle.Render("colors conserved"))
		} else {
			b.WriteString(errorStyle.Render(fmt.Sprintf("colors lost: %v", m.snap.ColorCounts())))
		}
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: pause/resume  q: quit"))
	b.WriteString("\n")
	return b.String()
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	delay := cfg.GetHookDelay()
	opts := []concurrentcube.Option{concurrentcube.WithLogger(logger)}
	if delay > 0 {
		opts = append(opts, concurrentcube.WithBeforeRotation(func(ctx context.Context, _ concurrentcube.Face, _ int) error {
			select {
			case <-time.After(delay):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))
	}
	cube, err := concurrentcube.New(cfg.Size, opts...)
	if err != nil {
		return fmt.Errorf("failed to create cube: %w", err)
	}

	pool := startWorkers(cmd.Context(), cube, cfg.Workers, cfg.Seed, logger)
	defer pool.stop()

	model := newWatchModel(pool, cfg.Workers, cfg.GetRefreshInterval())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
