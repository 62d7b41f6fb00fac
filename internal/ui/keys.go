package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/keyadmin/internal/keys"
	"github.com/gravitrone/keyadmin/internal/ui/components"
)

// --- Messages ---

type keysSearchedMsg struct{ res keys.SearchResult }
type keySavedMsg struct{ res keys.SaveResult }

type keysFocus int

const (
	keysFocusList keysFocus = iota
	keysFocusSearch
	keysFocusFilters
)

const defaultWidth = 100

// Form field 0 is the client name; the rest follow keys.Attributes.
const formFieldName = 0

var keyColumns = []components.Column{
	{Header: "Client", Width: 22},
	{Header: "API Key", Width: 14},
	{Header: "Active", Width: 6, Align: lipgloss.Center},
	{Header: "IP", Width: 4, Align: lipgloss.Center},
	{Header: "Country", Width: 7, Align: lipgloss.Center},
	{Header: "Region", Width: 6, Align: lipgloss.Center},
}

// --- Keys Model ---

// KeysModel is the API key list with its search box, filter panel and
// create/edit modal. Every state change goes through the console.
type KeysModel struct {
	console *keys.Console
	focus   keysFocus
	cursor  int
	search  textinput.Model
	filters *components.Checklist
	pages   paginator.Model
	notice  string
	width   int
	height  int

	// modal
	name      textinput.Model
	flags     *components.Checklist
	formFocus int
}

// NewKeysModel builds the key list UI over console.
func NewKeysModel(console *keys.Console) KeysModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search client name"
	search.CharLimit = 128

	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Client Name"
	name.CharLimit = 128

	labels := make([]string, len(keys.Attributes))
	for i, a := range keys.Attributes {
		labels[i] = a.Label()
	}

	pages := paginator.New()
	pages.Type = paginator.Dots
	pages.ActiveDot = SelectedStyle.Render("•")
	pages.InactiveDot = MutedStyle.Render("•")

	return KeysModel{
		console: console,
		search:  search,
		filters: components.NewChecklist(labels...),
		pages:   pages,
		name:    name,
		flags:   components.NewChecklist(labels...),
	}
}

func (m KeysModel) Init() tea.Cmd {
	return searchCmd(m.console.Load())
}

func searchCmd(req keys.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		return keysSearchedMsg{res: req.Run()}
	}
}

func saveCmd(req keys.SaveRequest) tea.Cmd {
	return func() tea.Msg {
		return keySavedMsg{res: req.Run()}
	}
}

func (m KeysModel) Update(msg tea.Msg) (KeysModel, tea.Cmd) {
	switch msg := msg.(type) {
	case keysSearchedMsg:
		if m.console.ApplySearch(msg.res) {
			m.notice = ""
		}
		m.clampCursor()
		return m, nil

	case keySavedMsg:
		req, ok := m.console.ApplySave(msg.res)
		if !ok {
			m.syncFormInputs()
			return m, nil
		}
		m.closeModal()
		m.clampCursor()
		m.notice = fmt.Sprintf("Saved %s", components.SanitizeOneLine(msg.res.Payload.ClientName))
		return m, searchCmd(req)

	case tea.KeyMsg:
		if m.console.Form().Open() {
			return m.handleFormKeys(msg)
		}
		switch m.focus {
		case keysFocusSearch:
			return m.handleSearchKeys(msg)
		case keysFocusFilters:
			return m.handleFilterKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

// capturing reports whether plain keys are being typed into a field.
func (m KeysModel) capturing() bool {
	return m.focus == keysFocusSearch || m.console.Form().Open()
}

func (m KeysModel) handleListKeys(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	switch {
	case isUp(msg):
		if m.cursor > 0 {
			m.cursor--
		}
	case isDown(msg):
		if m.cursor < len(m.console.Visible())-1 {
			m.cursor++
		}
	case isKey(msg, "left", "h"):
		m.console.PrevPage()
		m.cursor = 0
	case isKey(msg, "right", "l"):
		m.console.NextPage()
		m.cursor = 0
	case isKey(msg, "home", "g"):
		m.console.FirstPage()
		m.cursor = 0
	case isKey(msg, "end", "G"):
		m.console.LastPage()
		m.cursor = 0
	case isKey(msg, "/"):
		m.focus = keysFocusSearch
		m.search.Focus()
	case isKey(msg, "f"):
		m.focus = keysFocusFilters
	case isKey(msg, "c"):
		if req, ok := m.console.ClearFilters(); ok {
			m.cursor = 0
			return m, searchCmd(req)
		}
	case isKey(msg, "r"):
		return m, searchCmd(m.console.Refetch())
	case isKey(msg, "n"):
		if m.console.OpenCreate() {
			m.openModal()
		}
	case isEnter(msg), isKey(msg, "e"):
		if m.console.OpenEdit(m.cursor) {
			m.openModal()
			break
		}
		if visible := m.console.Visible(); m.cursor < len(visible) && !visible[m.cursor].Confirmed() {
			m.notice = "Key is still pending, refresh before editing"
		}
	}
	return m, nil
}

func (m KeysModel) handleSearchKeys(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	if isBack(msg) || isEnter(msg) || isKey(msg, "down") {
		m.focus = keysFocusList
		m.search.Blur()
		return m, nil
	}
	// Blink commands are dropped; the cursor is drawn statically.
	m.search, _ = m.search.Update(msg)
	req, changed := m.console.SetQuery(m.search.Value())
	if !changed {
		return m, nil
	}
	m.cursor = 0
	return m, searchCmd(req)
}

func (m KeysModel) handleFilterKeys(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	switch {
	case isBack(msg), isKey(msg, "f"):
		m.focus = keysFocusList
	case isUp(msg):
		m.filters.Up()
	case isDown(msg):
		m.filters.Down()
	case isSpace(msg), isEnter(msg):
		m.cursor = 0
		return m, searchCmd(m.console.ToggleFilter(keys.Attributes[m.filters.Selected()]))
	case isKey(msg, "c"):
		if req, ok := m.console.ClearFilters(); ok {
			m.cursor = 0
			return m, searchCmd(req)
		}
	}
	return m, nil
}

func (m KeysModel) handleFormKeys(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	form := m.console.Form()
	if form.State() == keys.ModalSubmitting {
		return m, nil
	}
	fieldCount := len(keys.Attributes) + 1

	switch {
	case isBack(msg):
		m.console.CloseForm()
		m.closeModal()
		return m, nil
	case isSubmit(msg), isEnter(msg):
		req, ok := m.console.Submit()
		if !ok {
			m.formFocus = formFieldName
			m.name.Focus()
			return m, nil
		}
		return m, saveCmd(req)
	case isNextField(msg):
		m.setFormFocus((m.formFocus + 1) % fieldCount)
		return m, nil
	case isPrevField(msg):
		m.setFormFocus((m.formFocus - 1 + fieldCount) % fieldCount)
		return m, nil
	}

	if m.formFocus == formFieldName {
		m.name, _ = m.name.Update(msg)
		form.SetClientName(m.name.Value())
		return m, nil
	}
	if isSpace(msg) {
		form.ToggleFlag(keys.Attributes[m.formFocus-1])
	}
	return m, nil
}

func (m *KeysModel) setFormFocus(field int) {
	m.formFocus = field
	if field == formFieldName {
		m.name.Focus()
		return
	}
	m.name.Blur()
	m.flags.Cursor = field - 1
}

func (m *KeysModel) openModal() {
	m.notice = ""
	m.syncFormInputs()
	m.setFormFocus(formFieldName)
}

func (m *KeysModel) closeModal() {
	m.name.SetValue("")
	m.name.Blur()
	m.formFocus = formFieldName
}

// syncFormInputs reloads the inputs from the draft, e.g. after a failed save.
func (m *KeysModel) syncFormInputs() {
	m.name.SetValue(m.console.Form().Draft().ClientName)
}

func (m *KeysModel) clampCursor() {
	n := len(m.console.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// --- View ---

func (m KeysModel) View() string {
	if m.console.Form().Open() {
		return m.renderForm()
	}

	var b strings.Builder
	b.WriteString(m.renderSearchBar())
	b.WriteString("\n\n")

	if m.focus == keysFocusFilters {
		b.WriteString(components.TitledBox("Filters", m.renderFilterPanel(), m.width))
		b.WriteString("\n\n")
	}

	b.WriteString(components.TitledBox("API Keys", m.renderTable(), m.width))
	b.WriteString("\n")
	b.WriteString(m.renderPager())

	if err := m.console.LastError(); err != nil {
		b.WriteString("\n\n")
		b.WriteString(components.ErrorBox("Request failed", err.Error(), m.width))
	} else if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(SuccessStyle.Render(m.notice))
	}
	return b.String()
}

func (m KeysModel) renderSearchBar() string {
	input := m.search.View()
	if m.focus != keysFocusSearch && m.search.Value() == "" {
		input = MutedStyle.Render("/ search client name")
	}
	badges := make([]string, 0, len(keys.Attributes))
	filter := m.console.Filter()
	for _, a := range keys.Attributes {
		if filter.Enabled(a) {
			badges = append(badges, FilterBadgeStyle.Render(a.Label()))
		}
	}
	if len(badges) == 0 {
		return input
	}
	return input + "  " + strings.Join(badges, " ")
}

func (m KeysModel) renderFilterPanel() string {
	filter := m.console.Filter()
	body := m.filters.Render(func(i int) bool {
		return filter.Enabled(keys.Attributes[i])
	}, true)
	return body + "\n\n" + MutedStyle.Render("space: toggle | c: clear all | esc: done")
}

func (m KeysModel) renderTable() string {
	visible := m.console.Visible()
	if len(visible) == 0 {
		switch {
		case m.console.Searching() && !m.console.Loaded():
			return MutedStyle.Render("Loading API keys...")
		case len(m.console.Records()) == 0:
			return MutedStyle.Render("No API keys.")
		default:
			return MutedStyle.Render("No API keys match the current filter.")
		}
	}

	rows := make([][]string, len(visible))
	for i, r := range visible {
		rows[i] = []string{
			r.ClientName,
			keyLabel(r),
			components.Flag(r.IsActive),
			components.Flag(r.IsIPCheck),
			components.Flag(r.IsCountryCheck),
			components.Flag(r.IsRegionCheck),
		}
	}
	active := -1
	if m.focus == keysFocusList {
		active = m.cursor
	}
	return components.Grid(keyColumns, rows, m.tableWidth(), active)
}

// tableWidth falls back to a standard terminal before the first resize.
func (m KeysModel) tableWidth() int {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	return components.BoxContentWidth(width)
}

func keyLabel(r keys.Record) string {
	if !r.Confirmed() {
		return "pending"
	}
	return *r.APIKey
}

func (m KeysModel) renderPager() string {
	total := m.console.TotalPages()
	pages := m.pages
	pages.TotalPages = total
	if pages.TotalPages < 1 {
		pages.TotalPages = 1
	}
	pages.Page = m.console.Page() - 1

	status := fmt.Sprintf("Page %d of %d", m.console.Page(), total)
	if total == 0 {
		status = "Page 1 of 1"
	}
	line := pagerArrow("‹ h", m.console.HasPrevPage()) + "  " + pages.View() + "  " +
		pagerArrow("l ›", m.console.HasNextPage()) + "  " + MutedStyle.Render(status)
	line += MutedStyle.Render(fmt.Sprintf("  %d of %d keys", len(m.console.Projected()), len(m.console.Records())))
	if m.console.Searching() {
		line += "  " + AccentStyle.Render("searching...")
	}
	return components.CenterLine(line, m.width)
}

// pagerArrow renders a page hint, blanked out when there is no page that way.
func pagerArrow(hint string, enabled bool) string {
	if !enabled {
		return strings.Repeat(" ", lipgloss.Width(hint))
	}
	return AccentStyle.Render(hint)
}

func (m KeysModel) renderForm() string {
	form := m.console.Form()
	draft := form.Draft()
	title := "New API Key"
	if form.Editing() {
		title = "Edit API Key"
	}

	var b strings.Builder
	label := LabelStyle.Render("Client Name")
	if m.formFocus == formFieldName {
		label = SelectedStyle.Render("Client Name")
	}
	b.WriteString(label + "\n")
	b.WriteString(m.name.View() + "\n")
	if msg := form.Errors().Get(keys.FieldClientName); msg != "" {
		b.WriteString(ErrorStyle.Render(msg) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.flags.Render(func(i int) bool {
		return keys.Attributes[i].Of(draft)
	}, m.formFocus != formFieldName))
	b.WriteString("\n\n")

	switch {
	case form.State() == keys.ModalSubmitting:
		b.WriteString(AccentStyle.Render("Saving..."))
	case m.console.LastError() != nil:
		b.WriteString(ErrorStyle.Render(components.SanitizeOneLine(m.console.LastError().Error())))
		b.WriteString("\n" + MutedStyle.Render("enter: retry | esc: cancel"))
	default:
		b.WriteString(MutedStyle.Render("tab: next field | space: toggle | enter: save | esc: cancel"))
	}
	return components.ActiveTitledBox(title, b.String(), m.width)
}

func (m KeysModel) hints() []string {
	switch {
	case m.console.Form().Open():
		return []string{
			components.Hint("tab", "Next"),
			components.Hint("space", "Toggle"),
			components.Hint("enter", "Save"),
			components.Hint("esc", "Cancel"),
		}
	case m.focus == keysFocusSearch:
		return []string{
			components.Hint("enter", "Done"),
			components.Hint("esc", "Back"),
		}
	case m.focus == keysFocusFilters:
		return []string{
			components.Hint("↑/↓", "Move"),
			components.Hint("space", "Toggle"),
			components.Hint("c", "Clear All"),
			components.Hint("esc", "Done"),
		}
	}
	return []string{
		components.Hint("/", "Search"),
		components.Hint("f", "Filters"),
		components.Hint("n", "New"),
		components.Hint("e", "Edit"),
		components.Hint("←/→", "Page"),
		components.Hint("r", "Refresh"),
		components.Hint("L", "Sign out"),
		components.Hint("q", "Quit"),
	}
}
