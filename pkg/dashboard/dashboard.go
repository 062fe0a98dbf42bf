// Package dashboard renders monitor events as a live terminal dashboard.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/monitor"
	"github.com/pterm/pterm"
)

const (
	DefaultRefresh = 500 * time.Millisecond

	defaultMaxBlocks  = 8
	defaultMaxBlobs   = 10
	defaultMaxRollups = 10
	defaultMaxErrors  = 3
)

// ErrorRecorder persists error events. *errorlog.Writer implements it.
type ErrorRecorder interface {
	Record(context string, err error)
	Path() string
}

type Option func(*Dashboard)

// WithErrorRecorder forwards every error event to r and shows its path in
// the Errors section.
func WithErrorRecorder(r ErrorRecorder) Option {
	return func(d *Dashboard) { d.recorder = r }
}

// WithLimits sets how many blocks, blobs, rollups and errors stay on screen.
func WithLimits(blocks, blobs, rollups, errors int) Option {
	return func(d *Dashboard) {
		if blocks > 0 {
			d.maxBlocks = blocks
		}
		if blobs > 0 {
			d.maxBlobs = blobs
		}
		if rollups > 0 {
			d.maxRollups = rollups
		}
		if errors > 0 {
			d.maxErrors = errors
		}
	}
}

type errorEntry struct {
	at      time.Time
	context string
	message string
}

// Dashboard is a monitor.Sink that keeps the latest events in bounded
// buffers and renders them on demand. Event methods only touch memory; the
// terminal is written by Run.
type Dashboard struct {
	network string

	maxBlocks, maxBlobs, maxRollups, maxErrors int
	recorder                                   ErrorRecorder

	mu       sync.Mutex
	blocks   []monitor.BlockSummary // newest last
	blobs    []celenium.Blob        // current cycle only
	rollups  []celenium.Rollup
	errors   []errorEntry // newest last
	stats    monitor.StatsSnapshot
	hasStats bool
	updated  time.Time
}

var _ monitor.Sink = (*Dashboard)(nil)

func New(network string, opts ...Option) *Dashboard {
	d := &Dashboard{
		network:    network,
		maxBlocks:  defaultMaxBlocks,
		maxBlobs:   defaultMaxBlobs,
		maxRollups: defaultMaxRollups,
		maxErrors:  defaultMaxErrors,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dashboard) OnBlockSummary(b monitor.BlockSummary) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blocks = appendBounded(d.blocks, b, d.maxBlocks)
	d.updated = time.Now()
}

func (d *Dashboard) OnBlobSummary(b celenium.Blob) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blobs = appendBounded(d.blobs, b, d.maxBlobs)
	d.updated = time.Now()
}

func (d *Dashboard) OnStatsSnapshot(s monitor.StatsSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = s
	d.hasStats = true
	d.updated = time.Now()
}

func (d *Dashboard) OnRollupList(rollups []celenium.Rollup) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollups = append(d.rollups[:0], rollups...)
	d.updated = time.Now()
}

func (d *Dashboard) OnError(context string, cause error) {
	if d.recorder != nil {
		d.recorder.Record(context, cause)
	}

	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = appendBounded(d.errors, errorEntry{at: time.Now(), context: context, message: msg}, d.maxErrors)
	d.updated = time.Now()
}

func (d *Dashboard) ClearBlobDisplay() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blobs = d.blobs[:0]
}

// Render returns the full dashboard as a string.
func (d *Dashboard) Render() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(pterm.DefaultHeader.WithFullWidth().Sprint("Blobr - Celestia Rollup Activity Monitor"))
	sb.WriteString("\n")
	updated := "waiting for data"
	if !d.updated.IsZero() {
		updated = "updated " + d.updated.Format(timeLayout)
	}
	sb.WriteString(pterm.Gray(fmt.Sprintf("network: %s | %s", d.network, updated)))
	sb.WriteString("\n")

	sb.WriteString(pterm.DefaultSection.Sprint("Recent Blocks"))
	if len(d.blocks) == 0 {
		sb.WriteString(pterm.Gray("  no blocks yet") + "\n")
	}
	for i := len(d.blocks) - 1; i >= 0; i-- {
		for _, line := range blockLines(d.blocks[i]) {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString(pterm.DefaultSection.Sprint("Recent Blobs"))
	if len(d.blobs) == 0 {
		sb.WriteString(pterm.Gray("  no blobs in the latest blocks") + "\n")
	}
	for _, b := range d.blobs {
		for _, line := range blobLines(b) {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString(pterm.DefaultSection.Sprint("Statistics"))
	if d.hasStats {
		for _, line := range statsLines(d.stats) {
			sb.WriteString(line + "\n")
		}
	} else {
		sb.WriteString(pterm.Gray("  Loading...") + "\n")
	}

	sb.WriteString(pterm.DefaultSection.Sprint("Active Rollups"))
	shown := d.rollups
	if len(shown) > d.maxRollups {
		shown = shown[:d.maxRollups]
	}
	for _, r := range shown {
		sb.WriteString(fmt.Sprintf("  %s - %s\n", pterm.Bold.Sprint(r.Name), pterm.Cyan(StackLabel(r))))
	}
	if rest := len(d.rollups) - len(shown); rest > 0 {
		sb.WriteString(pterm.Gray(fmt.Sprintf("  ... and %d more", rest)) + "\n")
	}

	sb.WriteString(pterm.DefaultSection.Sprint("Errors"))
	if len(d.errors) == 0 {
		sb.WriteString(pterm.Gray("  none") + "\n")
	}
	for i := len(d.errors) - 1; i >= 0; i-- {
		e := d.errors[i]
		sb.WriteString(fmt.Sprintf("  %s %s\n", pterm.Gray(e.at.Format(timeLayout)), pterm.Red(e.context)))
		sb.WriteString("    " + pterm.Yellow("Error: "+e.message) + "\n")
	}
	if d.recorder != nil && len(d.errors) > 0 {
		sb.WriteString(pterm.Gray("  Full error log: "+d.recorder.Path()) + "\n")
	}

	return sb.String()
}

// Run redraws the dashboard in a fullscreen live area every refresh interval
// until ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context, refresh time.Duration) error {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}

	area, err := pterm.DefaultArea.WithFullscreen().Start()
	if err != nil {
		return fmt.Errorf("failed to start live area: %w", err)
	}
	defer func() { _ = area.Stop() }()

	area.Update(d.Render())

	t := time.NewTicker(refresh)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			area.Update(d.Render())
			return nil
		case <-t.C:
			area.Update(d.Render())
		}
	}
}

func blockLines(b monitor.BlockSummary) []string {
	return []string{
		fmt.Sprintf("%s - %s",
			pterm.Bold.Sprintf("Block #%d", b.Height),
			pterm.Green(b.Time.Local().Format(timeLayout)),
		),
		fmt.Sprintf("  %s | %s | %s",
			pterm.Cyan("Blobs: "+strconv.FormatInt(b.Stats.BlobsCount, 10)),
			pterm.Yellow("Size: "+KB(b.Stats.BlobsSize)),
			pterm.Magenta("Fill: "+FillPercent(b)),
		),
		fmt.Sprintf("  %s | %s | %s | %s",
			pterm.Blue("Block Size: "+KB(b.Stats.BytesInBlock)),
			pterm.Red("Gas: "+GasPercent(b)),
			pterm.White("Events: "+strconv.FormatInt(b.Stats.EventsCount, 10)),
			pterm.Green("TXs: "+strconv.FormatInt(b.Stats.TxCount, 10)),
		),
	}
}

func blobLines(b celenium.Blob) []string {
	return []string{
		fmt.Sprintf("%s - %s", pterm.Bold.Sprint("Blob"), pterm.Yellow("NS: "+NamespaceLabel(b))),
		fmt.Sprintf("  %s | %s | %s",
			pterm.Cyan("Rollup: "+RollupLabel(b)),
			pterm.Green("Size: "+KB(b.Size)),
			pterm.Magenta("Type: "+ContentTypeLabel(b)),
		),
		"  " + pterm.Gray("From: "+SignerLabel(b)),
	}
}

func statsLines(s monitor.StatsSnapshot) []string {
	return []string{
		fmt.Sprintf("  %s %s", pterm.Bold.Sprint("Total Blocks:"), pterm.Green(s.TotalBlocks)),
		fmt.Sprintf("  %s %s", pterm.Bold.Sprint("Total Blobs:"), pterm.Yellow(s.TotalBlobs)),
		fmt.Sprintf("  %s %s", pterm.Bold.Sprint("Active Rollups:"), pterm.Magenta(s.ActiveRollups)),
		fmt.Sprintf("  %s %s", pterm.Bold.Sprint("Average Blobs/Block:"), pterm.Cyan(Average(s))),
	}
}

// appendBounded appends v and drops the oldest entries beyond limit.
func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if over := len(s) - limit; over > 0 {
		s = append(s[:0], s[over:]...)
	}
	return s
}
