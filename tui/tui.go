package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"compliment-deck/app"
	"compliment-deck/model"
)

type uiMode int

const (
	modeDeck uiMode = iota
	modeEnd
	modeFavorites
	modeFinalThree
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Model struct {
	svc *app.Service
	log *zap.Logger

	keys  keyMap
	help  help.Model
	meter progress.Model

	mode     uiMode
	showHelp bool

	favCursor  int
	finalKey   model.OpenWhen
	finalThree []model.Card

	status    string
	statusErr bool

	width  int
	height int
}

func NewModel(svc *app.Service, logger *zap.Logger, startupStatus string) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	status := strings.TrimSpace(startupStatus)
	if status == "" {
		status = "Ready"
	}
	m := &Model{
		svc:    svc,
		log:    logger,
		keys:   newKeyMap(),
		help:   help.New(),
		meter:  progress.New(progress.WithoutPercentage()),
		status: status,
	}
	m.applyTheme()
	if svc.Deck().Exhausted() {
		m.mode = modeEnd
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.viewportWidth()
		m.meter.Width = clamp(m.viewportWidth()-24, 10, 48)
	case tickMsg:
		// Only the countdown changes; re-rendering is enough.
		return m, tick()
	case tea.KeyMsg:
		if quit := m.handleKey(msg); quit {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) bool {
	if key.Matches(msg, m.keys.Quit) {
		return true
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.showHelp = false
		}
		return false
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		return false
	}

	switch m.mode {
	case modeFavorites:
		m.updateFavorites(msg)
		return false
	case modeFinalThree:
		m.updateFinalThree(msg)
		return false
	case modeEnd:
		if key.Matches(msg, m.keys.Reset) {
			m.svc.Deck().ResetDeck()
			m.mode = modeDeck
			m.setStatus("Fresh deck. Every card is new again", false)
			return false
		}
		if key.Matches(msg, m.keys.Draw) {
			m.mode = modeDeck
			m.draw()
			return false
		}
	}

	switch {
	case key.Matches(msg, m.keys.Draw):
		m.draw()
	case key.Matches(msg, m.keys.Favorite):
		m.toggleCurrentFavorite()
	case key.Matches(msg, m.keys.Share):
		m.shareCurrent()
	case key.Matches(msg, m.keys.Shuffle):
		m.svc.Deck().ShuffleDeck()
		m.setStatus("Deck shuffled; seen cards stay seen", false)
	case key.Matches(msg, m.keys.Mood):
		m.cycleMood()
	case key.Matches(msg, m.keys.OpenWhen):
		m.cycleOpenWhen()
	case key.Matches(msg, m.keys.Reason):
		m.logReason()
	case key.Matches(msg, m.keys.Daily):
		if m.svc.Deck().ToggleDailyMode() {
			m.setStatus(fmt.Sprintf("Daily mode on: %d draws per day", m.svc.Deck().DailyLimit()), false)
		} else {
			m.setStatus("Daily mode off", false)
		}
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Sound):
		if m.svc.ToggleSound() {
			m.setStatus("Sound muted", false)
		} else {
			m.setStatus("Sound on", false)
		}
	case key.Matches(msg, m.keys.Favorites):
		m.mode = modeFavorites
		m.favCursor = 0
	case key.Matches(msg, m.keys.FinalThree):
		m.startFinalThree()
	}
	return false
}

func (m *Model) draw() {
	res := m.svc.Draw()
	switch res.Reason {
	case app.DrawDailyLimit:
		wait := m.svc.Deck().TimeUntilNextDraw()
		m.setStatus("Daily limit reached • next draw in "+formatCountdown(wait), true)
		return
	case app.DrawEmptyPool:
		m.setStatus("No cards match "+filterLabel(m.svc.Deck().Filter())+" • press m or o to change", true)
		return
	}

	switch {
	case res.JustExhausted:
		m.mode = modeEnd
		m.setStatus("That was the whole deck", false)
	case res.SecretUnlocked:
		m.setStatus("Secret deck unlocked!", false)
	case res.Reshuffled:
		m.setStatus("Reshuffled • a new cycle begins", false)
	default:
		m.setStatus("", false)
	}
}

func (m *Model) toggleCurrentFavorite() {
	card, ok := m.svc.Deck().Current()
	if !ok {
		m.setStatus("Draw a card first", true)
		return
	}
	on, err := m.svc.ToggleFavorite(card.ID)
	if err != nil {
		m.setStatus("Favorite failed: "+err.Error(), true)
		return
	}
	if on {
		m.setStatus("Saved to favorites ♥", false)
	} else {
		m.setStatus("Removed from favorites", false)
	}
}

func (m *Model) shareCurrent() {
	card, ok := m.svc.Deck().Current()
	if !ok {
		m.setStatus("Draw a card first", true)
		return
	}
	if err := copyToClipboard(card.ShareText()); err != nil {
		m.log.Debug("clipboard unavailable", zap.Error(err))
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("Copied to clipboard", false)
}

func (m *Model) cycleMood() {
	current := m.svc.Deck().Filter().CurrentMood()
	next := model.Moods[0]
	for i, mood := range model.Moods {
		if mood == current {
			next = model.Moods[(i+1)%len(model.Moods)]
			break
		}
	}
	m.svc.Deck().SetMood(next)
	m.setStatus("Mood: "+string(next), false)
}

func (m *Model) cycleOpenWhen() {
	keys := append([]model.OpenWhen{""}, model.OpenWhens...)
	current := m.svc.Deck().Filter().CurrentOpenWhen()
	next := keys[0]
	for i, k := range keys {
		if k == current {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	m.svc.Deck().FilterByOpenWhen(next)
	m.setStatus("Filter: "+filterLabel(m.svc.Deck().Filter()), false)
}

func (m *Model) logReason() {
	res, err := m.svc.LogReason()
	switch {
	case errors.Is(err, app.ErrNoCurrentCard):
		m.setStatus("Draw a card first", true)
		return
	case errors.Is(err, app.ErrReasonAlreadyLogged):
		m.setStatus("Already logged a reason for this card", true)
		return
	case err != nil:
		m.setStatus("Log reason failed: "+err.Error(), true)
		return
	}

	text := fmt.Sprintf("Reason #%d logged", res.Reasons)
	if res.NewTheme != model.ThemeNone {
		text += " • theme unlocked: " + string(res.NewTheme)
	}
	if res.LoveCompleted {
		text += " • love meter full!"
	}
	m.setStatus(text, false)
}

func (m *Model) cycleTheme() {
	themes := m.svc.AvailableThemes()
	if len(themes) < 2 {
		m.setStatus("Log more reasons to unlock themes", true)
		return
	}
	next := themes[0]
	for i, t := range themes {
		if t == m.svc.Theme() {
			next = themes[(i+1)%len(themes)]
			break
		}
	}
	m.svc.SetTheme(next)
	m.applyTheme()
	m.setStatus("Theme: "+string(next), false)
}

func (m *Model) updateFavorites(msg tea.KeyMsg) {
	favs := m.svc.Favorites()
	switch {
	case key.Matches(msg, m.keys.Back, m.keys.Favorites):
		m.mode = modeDeck
	case key.Matches(msg, m.keys.Up):
		m.favCursor = clamp(m.favCursor-1, 0, max(0, len(favs)-1))
	case key.Matches(msg, m.keys.Down):
		m.favCursor = clamp(m.favCursor+1, 0, max(0, len(favs)-1))
	case key.Matches(msg, m.keys.Favorite):
		if len(favs) == 0 {
			return
		}
		card := favs[clamp(m.favCursor, 0, len(favs)-1)]
		if _, err := m.svc.ToggleFavorite(card.ID); err != nil {
			m.setStatus("Favorite failed: "+err.Error(), true)
			return
		}
		m.favCursor = clamp(m.favCursor, 0, max(0, len(favs)-2))
		m.setStatus("Removed from favorites", false)
	case key.Matches(msg, m.keys.Share):
		if len(favs) == 0 {
			return
		}
		if err := copyToClipboard(favs[clamp(m.favCursor, 0, len(favs)-1)].ShareText()); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.setStatus("Copied to clipboard", false)
	}
}

func (m *Model) startFinalThree() {
	m.finalKey = m.svc.Deck().Filter().CurrentOpenWhen()
	if m.finalKey == "" {
		m.finalKey = model.OpenWhens[0]
	}
	m.finalThree = m.svc.Deck().DrawFinalThree(m.finalKey)
	m.mode = modeFinalThree
}

func (m *Model) updateFinalThree(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Back, m.keys.FinalThree):
		m.mode = modeDeck
	case key.Matches(msg, m.keys.OpenWhen):
		for i, k := range model.OpenWhens {
			if k == m.finalKey {
				m.finalKey = model.OpenWhens[(i+1)%len(model.OpenWhens)]
				break
			}
		}
		m.finalThree = m.svc.Deck().DrawFinalThree(m.finalKey)
	case key.Matches(msg, m.keys.Draw):
		m.finalThree = m.svc.Deck().DrawFinalThree(m.finalKey)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) applyTheme() {
	p := paletteFor(m.svc.Theme())
	m.meter.FullColor = string(p.accent)
	m.meter.EmptyColor = string(p.muted)
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	p := paletteFor(m.svc.Theme())
	st := m.svc.Status()
	viewW := m.viewportWidth()

	title := lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render("compliment deck")
	summary := fmt.Sprintf("filter: %s • seen %d/%d", filterLabel(st.Filter), st.Seen, st.PoolSize)
	if st.DailyMode {
		summary += fmt.Sprintf(" • today %d/%d", st.DailyLimit-st.DailyRemaining, st.DailyLimit)
	}
	if st.SoundMuted {
		summary += " • muted"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+summary),
	)

	panelW := clamp(viewW-2, 20, 72)
	panelH := clamp(m.height-8, 6, 16)
	var body string
	switch m.mode {
	case modeEnd:
		body = m.renderEndScreen(panelW, p)
	case modeFavorites:
		body = m.renderFavoritesPanel(panelW, panelH, p)
	case modeFinalThree:
		body = m.renderFinalThree(panelW, p)
	default:
		body = m.renderCardPanel(panelW, panelH, p)
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1).
		Width(panelW).
		Render(body)

	if m.showHelp {
		panel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("244")).
			Padding(1, 2).
			Width(panelW).
			Render(m.help.FullHelpView(m.keys.FullHelp()))
	}

	statusText := m.status
	if statusText == "" {
		statusText = "Ready"
	}
	statusStyle := lipgloss.NewStyle().Foreground(p.accent)
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	rightHint := "? keys"
	if m.showHelp {
		rightHint = "Esc/? close"
	}

	parts := []string{header, m.renderProgressLines(st, p), panel, m.renderFooter(statusText, statusStyle, rightHint)}
	if !m.showHelp {
		parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderProgressLines(st app.Status, p palette) string {
	muted := lipgloss.NewStyle().Foreground(p.muted)
	ratio := 0.0
	if st.LoveMax > 0 {
		ratio = float64(st.LovePoints) / float64(st.LoveMax)
	}
	love := "love " + m.meter.ViewAs(ratio) + muted.Render(fmt.Sprintf(" %d/%d", st.LovePoints, st.LoveMax))
	if st.LoveComplete {
		love += lipgloss.NewStyle().Foreground(p.accent).Render(" ♥ full")
	}

	extra := fmt.Sprintf("reasons %d", st.Reasons)
	if st.SecretUnlocked {
		extra += " • secret deck open"
	} else {
		extra += fmt.Sprintf(" • secret in %d draws", max(0, st.SecretUnlockDraws-st.SecretProgress))
	}
	if st.NextDrawIn > 0 {
		extra += " • next draw in " + formatCountdown(st.NextDrawIn)
	}
	return love + "\n" + muted.Render(extra)
}

func (m *Model) renderCardPanel(width, height int, p palette) string {
	card, ok := m.svc.Deck().Current()
	if !ok {
		hint := "Press space to draw a card"
		if m.svc.Deck().PoolSize() == 0 {
			hint = "No cards for " + filterLabel(m.svc.Deck().Filter())
		}
		return lipgloss.NewStyle().Foreground(p.muted).Width(width).Height(height).Render(hint)
	}

	lines := []string{panelTitleStyled(cardTitle(card), p, m.svc.IsFavorite(card.ID))}
	lines = append(lines, "")
	lines = append(lines, cardLines(card, width)...)
	lines = append(lines, "", lipgloss.NewStyle().Foreground(p.muted).Render(string(card.Category)+" • "+string(card.Rarity)))
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderEndScreen(width int, p palette) string {
	st := m.svc.Status()
	lines := []string{
		panelTitleStyled("You reached the end of the deck", p, false),
		"",
		fmt.Sprintf("%d cards drawn this cycle.", st.DrawCount),
		"",
		lipgloss.NewStyle().Foreground(p.muted).Render("r start over • space keep drawing"),
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFavoritesPanel(width, height int, p palette) string {
	favs := m.svc.Favorites()
	lines := []string{panelTitleStyled(fmt.Sprintf("Favorites (%d)", len(favs)), p, false)}
	if len(favs) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(p.muted).Render("Nothing saved yet. Press f on a card."))
	}
	for i, card := range favs {
		cursor := " "
		style := lipgloss.NewStyle()
		if i == m.favCursor {
			cursor = "▸"
			style = style.Bold(true).Foreground(p.accent)
		}
		lines = append(lines, style.Render(cursor+" "+truncateRunes(card.Headline(), width-4)))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(p.muted).Render("j/k move • f remove • y copy • esc back"))
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFinalThree(width int, p palette) string {
	lines := []string{panelTitleStyled("Final three • open when "+string(m.finalKey), p, false), ""}
	if len(m.finalThree) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(p.muted).Render("No cards for this moment."))
	}
	for i, card := range m.finalThree {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, truncateRunes(card.Headline(), width-4)))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(p.muted).Render("space redraw • o next moment • esc back"))
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func cardTitle(c model.Card) string {
	switch c.Kind {
	case model.KindVoucher:
		return "Voucher"
	case model.KindPlaylist:
		return "Playlist"
	}
	if c.Text != nil && c.Text.Emoji != "" {
		return c.Text.Emoji + " Compliment"
	}
	return "Compliment"
}

func cardLines(c model.Card, width int) []string {
	wrap := lipgloss.NewStyle().Width(max(10, width-2))
	switch c.Kind {
	case model.KindVoucher:
		out := []string{wrap.Render(c.Voucher.Title)}
		for _, opt := range c.Voucher.Options {
			out = append(out, "  • "+opt)
		}
		return out
	case model.KindPlaylist:
		out := []string{wrap.Render(c.Headline())}
		if c.Playlist.Link != "" {
			out = append(out, truncateRunes(c.Playlist.Link, width-2))
		}
		return out
	}
	out := []string{wrap.Render(c.Text.Text)}
	if c.Text.Intensity > 0 {
		out = append(out, strings.Repeat("♥", c.Text.Intensity))
	}
	return out
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	mnt := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, mnt, s)
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// Leave the last column free; some terminals wrap on it.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = "Ready"
	}
	if right == "" {
		right = "? keys"
	}

	leftW := utf8.RuneCountInString(left)
	rightW := utf8.RuneCountInString(right)
	width := m.viewportWidth()
	if width <= 0 {
		width = leftW + rightW + 2
	}

	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = truncateRunes(left, maxLeft)
		leftW = utf8.RuneCountInString(left)
	}

	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}

	rightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + rightStyle.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}

func panelTitleStyled(title string, p palette, marked bool) string {
	text := lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render(title)
	if !marked {
		return text
	}
	marker := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("204")).Render("♥")
	return lipgloss.JoinHorizontal(lipgloss.Left, text, " ", marker)
}

func filterLabel(f model.Filter) string {
	switch f.Kind {
	case model.FilterMood:
		return "mood " + string(f.Mood)
	case model.FilterOpenWhen:
		return "open when " + string(f.OpenWhen)
	default:
		return "all cards"
	}
}

func copyToClipboard(text string) error {
	candidates := []struct {
		name string
		args []string
	}{
		{name: "wl-copy", args: []string{"--type", "text/plain"}},
		{name: "xclip", args: []string{"-in", "-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
		{name: "pbcopy"},
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		// Run detached so the UI never blocks on the clipboard.
		go runClipboardCommand(c.name, c.args, text)
		return nil
	}
	return fmt.Errorf("no clipboard command available (install wl-copy or xclip)")
}

func runClipboardCommand(name string, args []string, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
