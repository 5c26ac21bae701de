package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mirahq/mira/internal/chats"
	"github.com/mirahq/mira/internal/record"
	"github.com/mirahq/mira/internal/session"
)

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(renderHeader("MIRA — PANEL DE MENSAJERÍA", m.width))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Acceso de operador"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(dimmedStyle.Render("[ enter ] ENTRAR  ·  [ q ] SALIR"))
	return b.String()
}

func (m Model) renderInstances() string {
	var sections []string
	sections = append(sections, renderHeader("MIRA — INSTANCIAS", m.width))

	visible := m.st.ActiveInstances()
	if m.st.Hint != "" {
		sections = append(sections, dimmedStyle.Render("sistema: "+m.st.Hint))
	}

	switch {
	case m.loading && len(visible) == 0:
		sections = append(sections, dimmedStyle.Render("Cargando instancias..."))
	case len(visible) == 0 && m.st.InstanceSearch:
		sections = append(sections, dimmedStyle.Render("Sin resultados para la búsqueda."))
	case len(visible) == 0:
		sections = append(sections, dimmedStyle.Render("No hay instancias."))
	default:
		var lines []string
		for i, r := range visible {
			lines = append(lines, renderInstanceLine(r, i == m.instanceIdx, m.width))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if m.input.IsActive() {
		sections = append(sections, m.input.View())
	}
	sections = append(sections, dimmedStyle.Render("[ / ] BUSCAR  ·  [ r ] RECARGAR  ·  [ ctrl+l ] SALIR DE SESIÓN"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderInstanceLine(r record.Record, selected bool, width int) string {
	connected := record.InstanceConnected(r)
	status := StatusStyle(connected).Render("●")
	token := "offline"
	if connected {
		token = "online"
	}

	name := record.InstanceName(r)
	if name == "" {
		name = record.InstanceID(r)
	}
	system := record.InstanceSystemName(r)

	line := fmt.Sprintf("%s %-24s %-18s %s", status, truncate(name, 24), dimmedStyle.Render(truncate(system, 18)), StatusStyle(connected).Render(token))
	if selected {
		return selectedItemStyle.Render("> " + line)
	}
	return itemStyle.Render("  " + line)
}

func (m Model) renderChats() string {
	listPanel := m.renderChatList()
	detailPanel := m.renderThread()

	var body string
	if m.st.NarrowLayout {
		// Single panel: the revealed one wins.
		if m.st.PanelRevealed || m.st.CurrentChatID == "" {
			body = listPanel
		} else {
			body = detailPanel
		}
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
	}

	var sections []string
	sections = append(sections, renderHeader("MIRA — CONVERSACIONES", m.width))
	sections = append(sections, body)
	if m.input.IsActive() {
		sections = append(sections, m.input.View())
	}
	sections = append(sections, dimmedStyle.Render("[ / ] BUSCAR  ·  [ n/p ] PÁGINA  ·  [ e ] EXPORTAR  ·  [ esc ] VOLVER"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderChatList() string {
	page := chats.Page(m.st, m.st.ChatPage)

	width := m.width
	if !m.st.NarrowLayout {
		width = m.width / 2
	}
	innerWidth := width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}

	var lines []string
	if m.loading && page.Total == 0 {
		lines = append(lines, dimmedStyle.Render("Cargando conversaciones..."))
	} else if page.Total == 0 && m.st.ChatSearch {
		lines = append(lines, dimmedStyle.Render("Sin resultados."))
	} else if page.Total == 0 {
		lines = append(lines, dimmedStyle.Render("Sin conversaciones."))
	}
	for i, r := range page.Items {
		lines = append(lines, renderChatLine(r, i == m.chatIdx, innerWidth))
	}

	counter := page.Counter()
	if page.HasPrev || page.HasNext {
		var nav []string
		if page.HasPrev {
			nav = append(nav, "‹ p")
		}
		nav = append(nav, counter)
		if page.HasNext {
			nav = append(nav, "n ›")
		}
		counter = strings.Join(nav, "  ")
	}
	lines = append(lines, dimmedStyle.Render(counter))

	return panelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func renderChatLine(r record.Record, selected bool, width int) string {
	name := truncate(record.ChatDisplayName(r), 22)
	preview := record.ChatPreview(r)
	preview = strings.ReplaceAll(preview, "\n", " ")

	previewWidth := width - 26
	if previewWidth < 10 {
		previewWidth = 10
	}
	line := fmt.Sprintf("%-22s %s", name, dimmedStyle.Render(truncate(preview, previewWidth)))
	if selected {
		return selectedItemStyle.Render("> " + line)
	}
	return itemStyle.Render("  " + line)
}

func (m Model) renderThread() string {
	width := m.width
	if !m.st.NarrowLayout {
		width = m.width - m.width/2
	}
	innerWidth := width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}

	var lines []string
	switch {
	case m.st.CurrentChatID == "":
		lines = append(lines, dimmedStyle.Render("Selecciona una conversación."))
	case m.loading && len(m.st.Messages) == 0:
		lines = append(lines, dimmedStyle.Render("Cargando mensajes..."))
	case len(m.st.Messages) == 0:
		lines = append(lines, dimmedStyle.Render("Sin mensajes."))
	default:
		for _, r := range m.st.Messages {
			lines = append(lines, renderMessageLine(r, innerWidth))
		}
	}

	return panelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func renderMessageLine(r record.Record, width int) string {
	ts := record.MessageTimestamp(r)
	stamp := ""
	if ts > 0 {
		stamp = time.UnixMilli(ts).Local().Format("02/01 15:04")
	}

	text := strings.ReplaceAll(record.MessageText(r), "\n", " ")
	text = truncate(text, width-16)

	if record.MessageFromMe(r) {
		return fmt.Sprintf("%s %s %s", dimmedStyle.Render(stamp), outboundStyle.Render("»"), text)
	}
	return fmt.Sprintf("%s %s %s", dimmedStyle.Render(stamp), inboundStyle.Render("«"), text)
}

func renderNotices(notices []session.Notice, width int) string {
	if len(notices) == 0 {
		return ""
	}
	var lines []string
	for _, n := range notices {
		lines = append(lines, noticeStyle.Render("⚠ "+truncate(n.Text, width-4)))
	}
	return strings.Join(lines, "\n")
}

func renderHeader(title string, width int) string {
	if width < 20 {
		width = 20
	}
	padding := (width - lipgloss.Width(title)) / 2
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat(" ", padding) + title
	if w := lipgloss.Width(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return headerStyle.Width(width).Render(line)
}

// truncate shortens a string to a display width, appending an ellipsis.
func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > max-3 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
