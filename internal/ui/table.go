package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/chain"
	"github.com/charmbracelet/lipgloss"
)

// Column is a fixed-width table column.
type Column struct {
	Title string
	Width int
}

// Row holds one cell per column. Missing cells render blank.
type Row []string

// Table lays rows out under fixed-width columns. Cells longer than their
// column are cut, never wrapped.
type Table struct {
	cols []Column
	rows []Row
}

// NewTable creates an empty table.
func NewTable(cols []Column) *Table {
	return &Table{cols: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.rows = append(t.rows, r)
}

// Len reports the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns header, divider and rows, one line each.
func (t *Table) Render() string {
	var sb strings.Builder

	titles := make(Row, len(t.cols))
	dashes := make(Row, len(t.cols))
	for i, c := range t.cols {
		titles[i] = c.Title
		dashes[i] = strings.Repeat("-", c.Width)
	}
	t.line(&sb, titles, lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true))
	t.line(&sb, dashes, StyleDim)
	cell := lipgloss.NewStyle().Foreground(ColorValue)
	for _, r := range t.rows {
		t.line(&sb, r, cell)
	}
	return sb.String()
}

func (t *Table) line(sb *strings.Builder, r Row, style lipgloss.Style) {
	for i, c := range t.cols {
		if i > 0 {
			sb.WriteByte(' ')
		}
		var v string
		if i < len(r) {
			v = r[i]
		}
		sb.WriteString(style.Render(pad(v, c.Width)))
	}
	sb.WriteByte('\n')
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}

// --- tables the CLI prints ---

// NoFaucet fills the faucet column for chains funded by bridging.
const NoFaucet = "(bridge from parent chain)"

// ChainTable lists chains with both chain ids and the testnet name.
func ChainTable(chains []chain.Chain) string {
	t := NewTable([]Column{
		{Title: "Chain", Width: 12},
		{Title: "Name", Width: 18},
		{Title: "Currency", Width: 8},
		{Title: "Mainnet", Width: 10},
		{Title: "Testnet", Width: 26},
	})
	for i := range chains {
		c := &chains[i]
		t.AddRow(Row{
			c.Name,
			c.DisplayName,
			c.Currency.Symbol,
			c.HexID(chain.Mainnet),
			c.HexID(chain.Testnet) + " " + c.Testnet.Name,
		})
	}
	return t.Render()
}

// FaucetTable lists the public testnet faucet of each chain.
func FaucetTable(chains []chain.Chain) string {
	t := NewTable([]Column{
		{Title: "Chain", Width: 12},
		{Title: "Testnet", Width: 18},
		{Title: "Currency", Width: 8},
		{Title: "Faucet URL", Width: 52},
	})
	for _, c := range chains {
		url := c.FaucetURL
		if url == "" {
			url = NoFaucet
		}
		t.AddRow(Row{c.Name, c.Testnet.Name, c.Currency.Symbol, url})
	}
	return t.Render()
}

// PermissionsTable lists wallet permissions with their grant time (UTC)
// and caveats.
func PermissionsTable(perms []bridge.Permission) string {
	if len(perms) == 0 {
		return Meta("No permissions granted") + "\n"
	}
	t := NewTable([]Column{
		{Title: "Permission", Width: 22},
		{Title: "Granted", Width: 20},
		{Title: "Caveats", Width: 40},
	})
	for _, p := range perms {
		granted := "-"
		if p.Date > 0 {
			granted = time.UnixMilli(p.Date).UTC().Format("2006-01-02 15:04 UTC")
		}
		caveats := make([]string, 0, len(p.Caveats))
		for _, c := range p.Caveats {
			caveats = append(caveats, fmt.Sprintf("%s=%v", c.Type, c.Value))
		}
		t.AddRow(Row{p.ParentCapability, granted, strings.Join(caveats, "; ")})
	}
	return t.Render()
}

// pad left-aligns s within exactly width runes, cutting it if needed.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}
