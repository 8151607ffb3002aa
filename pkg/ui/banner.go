package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BannerArea is where a status message is shown. With split banners,
// create and delete results appear above the tree and update results above
// the form; otherwise everything shares one banner.
type BannerArea int

const (
	AreaShared BannerArea = iota
	AreaTree
	AreaDetail
)

// Banner is one transient status message.
type Banner struct {
	Message string
	Success bool
	seq     uint64
}

type bannerExpiredMsg struct {
	area BannerArea
	seq  uint64
}

// Banners holds the active message of each area. Showing a message replaces
// the previous one; each message dismisses itself after the configured
// duration unless it has been replaced in the meantime.
type Banners struct {
	split    bool
	duration time.Duration
	active   map[BannerArea]Banner
	seq      uint64
}

// NewBanners creates an empty banner set.
func NewBanners(split bool, duration time.Duration) Banners {
	return Banners{split: split, duration: duration, active: make(map[BannerArea]Banner)}
}

// SetDuration changes how long future messages stay up.
func (b *Banners) SetDuration(d time.Duration) { b.duration = d }

func (b *Banners) resolve(area BannerArea) BannerArea {
	if !b.split {
		return AreaShared
	}
	if area == AreaShared {
		return AreaTree
	}
	return area
}

// Show displays a message and returns the command that dismisses it.
func (b *Banners) Show(area BannerArea, message string, success bool) tea.Cmd {
	area = b.resolve(area)
	b.seq++
	seq := b.seq
	b.active[area] = Banner{Message: message, Success: success, seq: seq}
	if b.duration <= 0 {
		return nil
	}
	return tea.Tick(b.duration, func(time.Time) tea.Msg {
		return bannerExpiredMsg{area: area, seq: seq}
	})
}

// Error shows err as a failure message.
func (b *Banners) Error(area BannerArea, err error) tea.Cmd {
	return b.Show(area, err.Error(), false)
}

// expire dismisses a message if it is still the one the timer was set for.
func (b *Banners) expire(msg bannerExpiredMsg) {
	if cur, ok := b.active[msg.area]; ok && cur.seq == msg.seq {
		delete(b.active, msg.area)
	}
}

// Get returns the active message of an area.
func (b *Banners) Get(area BannerArea) (Banner, bool) {
	cur, ok := b.active[b.resolve(area)]
	return cur, ok
}

// View renders the message of one area, or "".
func (b *Banners) View(theme Theme, area BannerArea, width int) string {
	cur, ok := b.active[area]
	if !ok {
		return ""
	}
	color := theme.Danger
	if cur.Success {
		color = theme.Success
	}
	style := theme.Renderer.NewStyle().
		Foreground(color).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(color).
		PaddingLeft(1)
	if width > 2 {
		style = style.MaxWidth(width)
	}
	return style.Render(cur.Message)
}
