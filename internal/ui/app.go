package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/gravitrone/keyadmin/internal/api"
	"github.com/gravitrone/keyadmin/internal/keys"
	"github.com/gravitrone/keyadmin/internal/logging"
	"github.com/gravitrone/keyadmin/internal/session"
	"github.com/gravitrone/keyadmin/internal/ui/components"
)

const startupCheckTimeout = 700 * time.Millisecond

// --- Messages ---

type clearToastMsg struct{}
type startupCheckedMsg struct{ err error }

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App is the root TUI model. It shows the key console only while the
// session is authenticated.
type App struct {
	client  *api.Client
	session *session.Session
	log     zerolog.Logger
	keys    KeysModel
	width   int
	height  int
	err     string

	startupChecking bool
	apiStatus       string
	toast           *appToast
	signOutConfirm  bool
	expired         bool
}

// NewApp creates the root application model.
func NewApp(client *api.Client, sess *session.Session, console *keys.Console, log zerolog.Logger) App {
	return App{
		client:          client,
		session:         sess,
		log:             logging.WithComponent(log, "ui"),
		keys:            NewKeysModel(console),
		startupChecking: client != nil,
		apiStatus:       "checking",
	}
}

func (a App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.startupChecking {
		cmds = append(cmds, a.runStartupCheckCmd())
	}
	if a.session.Authenticated() {
		cmds = append(cmds, a.keys.Init())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.keys.width = msg.Width
		a.keys.height = msg.Height
		return a, nil

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case startupCheckedMsg:
		a.startupChecking = false
		if msg.err != nil {
			a.apiStatus = "unreachable"
			a.log.Warn().Err(msg.err).Msg("startup health check failed")
			return a, a.setToast("warning", "API unreachable. Cached data may be stale.")
		}
		a.apiStatus = "ok"
		return a, nil

	case keysSearchedMsg:
		return a.applyResult(msg, msg.res.Err)
	case keySavedMsg:
		return a.applyResult(msg, msg.res.Err)

	case tea.KeyMsg:
		if isKey(msg, "ctrl+c") {
			return a, a.quit()
		}
		if a.signOutConfirm {
			switch {
			case isKey(msg, "y"):
				a.signOutConfirm = false
				a.signOut()
				return a, a.setToast("info", "Signed out.")
			case isKey(msg, "n"), isBack(msg):
				a.signOutConfirm = false
			}
			return a, nil
		}
		if a.err != "" {
			a.err = ""
		}
		if !a.session.Authenticated() {
			if isQuit(msg) {
				return a, a.quit()
			}
			return a, nil
		}
		if !a.keys.capturing() {
			if isQuit(msg) {
				return a, a.quit()
			}
			if isKey(msg, "L") {
				a.signOutConfirm = true
				return a, nil
			}
		}
	}

	if !a.session.Authenticated() {
		return a, nil
	}
	var cmd tea.Cmd
	a.keys, cmd = a.keys.Update(msg)
	return a, cmd
}

// applyResult always lets the console settle the result, but a rejected token
// ends the session and drops any follow-up request.
func (a App) applyResult(msg tea.Msg, err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, keys.ErrUnauthorized) {
		a.expire()
	}
	var cmd tea.Cmd
	a.keys, cmd = a.keys.Update(msg)
	if !a.session.Authenticated() {
		return a, nil
	}
	return a, cmd
}

func (a App) quit() tea.Cmd {
	a.keys.console.Close()
	return tea.Quit
}

// expire ends the session after the server rejected the token.
func (a *App) expire() {
	if !a.session.Authenticated() {
		return
	}
	a.log.Warn().Msg("session expired, token rejected by server")
	a.signOut()
	a.expired = true
}

func (a *App) signOut() {
	if err := a.session.Clear(); err != nil {
		a.log.Error().Err(err).Msg("clear stored token failed")
		a.err = err.Error()
	}
	a.keys.console.Close()
	if a.client != nil {
		a.client.SetToken("")
	}
	a.expired = false
}

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)

	var content string
	switch {
	case a.signOutConfirm:
		content = components.ConfirmDialog("Sign out", "Clear the stored token and leave the console?")
	case !a.session.Authenticated():
		content = a.renderSignedOut()
	default:
		content = a.keys.View()
	}
	content = centerBlockUniform(content, a.width)

	statusLine := centerBlockUniform(a.renderStatusLine(), a.width)
	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s%s", banner, statusLine, content, hints, feedback)
}

func (a App) renderSignedOut() string {
	title := "Not signed in"
	body := "Run " + AccentStyle.Render("keyadmin login") + " to store an access token, then start the console again."
	if a.expired {
		title = "Session expired"
		body = "The server rejected the stored token.\n\n" + body
	}
	return components.TitledBox(title, body, a.width)
}

func (a App) renderStatusLine() string {
	status := a.apiStatus
	style := MutedStyle
	switch status {
	case "ok":
		style = SuccessStyle
	case "unreachable":
		style = ErrorStyle
	}
	auth := MutedStyle.Render("signed out")
	if a.session.Authenticated() {
		auth = SuccessStyle.Render("signed in")
	}
	return MutedStyle.Render("API ") + style.Render(status) + MutedStyle.Render("  |  ") + auth
}

func (a App) statusHints() []string {
	if a.signOutConfirm {
		return []string{components.Hint("y", "Confirm"), components.Hint("n", "Cancel")}
	}
	if !a.session.Authenticated() {
		return []string{components.Hint("q", "Quit")}
	}
	return a.keys.hints()
}

func (a App) runStartupCheckCmd() tea.Cmd {
	checkClient := a.client.WithTimeout(startupCheckTimeout)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startupCheckTimeout)
		defer cancel()
		_, err := checkClient.Health(ctx)
		return startupCheckedMsg{err: err}
	}
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
