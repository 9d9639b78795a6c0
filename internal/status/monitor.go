// Package status implements the spec section 4.4 status monitor: a single
// auxiliary task consuming (part-label, state, info) triples from a queue
// and rendering a table on the terminal, colorized only when attached to a
// TTY. Uses github.com/fatih/color and github.com/mattn/go-isatty, both
// adopted from kopia's stack since the teacher's own status output is tied
// to its job-summary model rather than a standalone reusable table.
package status

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/foldermover/foldermover/internal/common"
)

// Update is one (label, state, info) triple. A nil-labeled, zero-valued
// Update is the sentinel that ends the monitor (spec section 4.4).
type Update struct {
	Label string
	State common.WorkState
	Info  string
}

// Monitor renders the latest state of every label as a table, refreshed
// every time an Update arrives.
type Monitor struct {
	updates chan Update
	done    chan struct{}
	colored bool

	mu    sync.Mutex
	rows  map[string]Update
	order []string
}

// New starts the monitor's background render loop and returns it; callers
// send updates via Send and call Stop when finished.
func New() *Monitor {
	m := &Monitor{
		updates: make(chan Update, 256),
		done:    make(chan struct{}),
		colored: isatty.IsTerminal(os.Stdout.Fd()),
		rows:    make(map[string]Update),
	}
	go m.loop()
	return m
}

func (m *Monitor) Send(u Update) {
	m.updates <- u
}

// Stop sends the sentinel and waits for the render loop to exit.
func (m *Monitor) Stop() {
	m.updates <- Update{} // sentinel: Label == ""
	<-m.done
}

func (m *Monitor) loop() {
	defer close(m.done)
	for u := range m.updates {
		if u.Label == "" && u.State == 0 && u.Info == "" {
			return
		}
		m.apply(u)
		m.render()
	}
}

func (m *Monitor) apply(u Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rows[u.Label]; !exists {
		m.order = append(m.order, u.Label)
	}
	m.rows[u.Label] = u
}

func (m *Monitor) render() {
	m.mu.Lock()
	labels := make([]string, len(m.order))
	copy(labels, m.order)
	rows := make(map[string]Update, len(m.rows))
	for k, v := range m.rows {
		rows[k] = v
	}
	m.mu.Unlock()

	sort.Strings(labels)
	var b strings.Builder
	for _, label := range labels {
		u := rows[label]
		line := fmt.Sprintf("%-24s %-12s %s", label, u.State.String(), u.Info)
		if m.colored {
			line = m.colorize(u.State, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprint(os.Stdout, "\033[2J\033[H", b.String())
}

func (m *Monitor) colorize(state common.WorkState, line string) string {
	switch state {
	case common.EWorkState.Error():
		return color.RedString(line)
	case common.EWorkState.Completed(), common.EWorkState.Skipped():
		return color.GreenString(line)
	case common.EWorkState.Resumed():
		return color.CyanString(line)
	case common.EWorkState.Backpressure():
		return color.YellowString(line)
	default:
		return line
	}
}
