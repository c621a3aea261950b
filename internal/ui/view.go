package ui

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/watchlist"
)

const (
	bannerMaxWidth = 60
	pathLimit      = 48
)

// renderMain lays out header, banner, timer, recent alerts and footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	body := lipgloss.JoinVertical(lipgloss.Center,
		m.renderBanner(),
		"",
		m.renderTimer(),
		"",
		m.renderRecent(),
	)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders the status bar: watchlist status then log source.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	snap := m.snapshot

	parts := []string{bg.Render("battlewatch", styles.Logo)}

	switch {
	case !snap.Loaded:
		parts = append(parts, bg.Render("Loading watchlist...", styles.MutedText))
	case snap.LoadErr != nil && errors.Is(snap.LoadErr, fs.ErrNotExist):
		parts = append(parts, bg.Render("FILE NOT FOUND", styles.DangerText))
	case snap.LoadErr != nil:
		parts = append(parts, bg.Render("LOAD ERROR", styles.DangerText))
	default:
		parts = append(parts, bg.Render(fmt.Sprintf("Moves Loaded: %d", snap.MovesLoaded), styles.Text))
		if snap.Skipped > 0 {
			parts = append(parts, bg.Render(fmt.Sprintf("(%d skipped)", snap.Skipped), styles.WarningText))
		}
	}

	switch {
	case snap.Waiting:
		parts = append(parts, bg.Render("WAITING FOR LOGS...", styles.WarningText))
	case snap.SourceErr != nil:
		parts = append(parts, bg.Render("READ ERROR", styles.DangerText),
			bg.Render(truncateMiddle(snap.LogPath, pathLimit), styles.MutedText))
	case snap.LogPath != "":
		parts = append(parts, bg.Render("MONITORING", styles.SuccessText),
			bg.Render(truncateMiddle(snap.LogPath, pathLimit), styles.MutedText))
	}

	if m.muted() {
		parts = append(parts, bg.Render("MUTED", styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, 2))
}

// renderBanner renders the big label: alert text or the resting state.
func (m Model) renderBanner() string {
	width := m.width - 4
	if width > bannerMaxWidth {
		width = bannerMaxWidth
	}
	if width < 10 {
		width = 10
	}
	payload := m.snapshot.Alert
	return m.theme.BannerStyle(payload.Kind, width).Render(payload.Text())
}

// renderTimer renders the battle clock while engaged and the last battle
// length afterwards.
func (m Model) renderTimer() string {
	styles := m.theme.Styles()
	if m.snapshot.Combat == combat.Engaged {
		return styles.Text.Bold(true).Render("BATTLE TIME " + combat.FormatDuration(m.stopwatch.Elapsed()))
	}
	if m.snapshot.LastBattle > 0 {
		return styles.MutedText.Render("LAST BATTLE " + combat.FormatDuration(m.snapshot.LastBattle))
	}
	return styles.FaintText.Render("BATTLE TIME --:--")
}

// renderRecent lists the latest alerts, newest first.
func (m Model) renderRecent() string {
	if len(m.snapshot.Recent) == 0 {
		return ""
	}
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Recent"))
	for _, ev := range m.snapshot.Recent {
		level := styles.WarningText.Render("WATCH   ")
		if ev.Severity == watchlist.Critical {
			level = styles.DangerText.Render("CRITICAL")
		}
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(ev.At.Local().Format("15:04:05")))
		b.WriteString("  ")
		b.WriteString(level)
		b.WriteString("  ")
		b.WriteString(styles.Text.Render(ev.Payload.Move))
	}
	return styles.Panel.Render(b.String())
}

// renderFooter renders the key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}
