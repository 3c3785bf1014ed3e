package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/pkg/editor"
	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/widgets"
	"github.com/goliatone/go-specviz/pkg/widgets/collapse"
)

const (
	socketReadLimit = 1 << 20
	outboxSize      = 64
	reloadMessage   = "The spec changed on disk. Reload the page to pick up the new version."
)

// clientMessage is one intent sent by the browser runtime.
type clientMessage struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Value    any    `json:"value,omitempty"`
	Key      string `json:"key,omitempty"`
	Text     string `json:"text,omitempty"`
	Index    int    `json:"index,omitempty"`
	Expanded bool   `json:"expanded,omitempty"`
	Format   string `json:"format,omitempty"`
}

// serverMessage is one view update pushed to the browser runtime.
type serverMessage struct {
	Type    string              `json:"type"`
	HTML    string              `json:"html,omitempty"`
	Text    string              `json:"text"`
	Format  string              `json:"format,omitempty"`
	Status  string              `json:"status,omitempty"`
	Label   string              `json:"label,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Form    []string            `json:"form,omitempty"`
	Path    string              `json:"path,omitempty"`
	Message string              `json:"message,omitempty"`
	Copied  bool                `json:"copied,omitempty"`
}

// handleSession upgrades to a websocket and runs one editing session over
// the spec's draft until the client goes away.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	spec, err := s.loader.Load(r.Context(), name)
	if err != nil {
		status := specStatus(err)
		writeError(w, status, codeFor(status), err.Error())
		return
	}
	v, err := s.newView(r.Context(), spec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.log.Warn("websocket accept", "spec", name, "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(socketReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := s.newSession(spec, preview.ParseFormat(r.URL.Query().Get("format")))
	c := &socketClient{
		conn:     conn,
		view:     v,
		session:  session,
		sections: session.Sections(),
		out:      make(chan serverMessage, outboxSize),
		log:      s.log.With("spec", spec.Name),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop(ctx, cancel)
	}()

	unsubscribe := session.Subscribe(c.onUpdate(ctx))
	if s.hub != nil {
		stop := s.hub.Subscribe(spec.Name, func() {
			c.push(ctx, serverMessage{Type: "reload", Message: reloadMessage})
		})
		defer stop()
	}

	if err := session.Open(ctx); err != nil {
		c.log.Error("open draft", "error", err)
		c.push(ctx, serverMessage{Type: "error", Message: err.Error()})
	} else {
		c.readLoop(ctx)
	}

	unsubscribe()
	session.Close()
	cancel()
	<-done
	conn.Close(websocket.StatusNormalClosure, "")
}

type socketClient struct {
	conn     *websocket.Conn
	view     *view
	session  *editor.Session
	sections *collapse.Tracker
	out      chan serverMessage
	log      *logger.Logger

	// Touched only from the session's serialized listener.
	jobs   string
	copied bool
}

func (c *socketClient) readLoop(ctx context.Context) {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status == -1 && !errors.Is(err, context.Canceled) {
				c.log.Debug("websocket read", "error", err)
			}
			return
		}
		if err := c.dispatch(ctx, msg); err != nil {
			if errors.Is(err, editor.ErrClosed) {
				return
			}
			c.log.Debug("intent rejected", "type", msg.Type, "path", msg.Path, "error", err)
			c.push(ctx, serverMessage{Type: "error", Path: msg.Path, Message: err.Error()})
		}
	}
}

func (c *socketClient) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.out:
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				c.log.Debug("websocket write", "error", err)
				return
			}
		}
	}
}

func (c *socketClient) push(ctx context.Context, msg serverMessage) {
	select {
	case c.out <- msg:
	case <-ctx.Done():
	}
}

func (c *socketClient) dispatch(ctx context.Context, msg clientMessage) error {
	session := c.session
	switch msg.Type {
	case "change":
		return session.Change(msg.Value)
	case "set":
		return session.Set(msg.Path, msg.Value)
	case "unset":
		return session.Unset(msg.Path)
	case "choice":
		return session.SetChoice(msg.Path, msg.Key)
	case "edit-text":
		_, err := session.EditText(msg.Path, msg.Text)
		return err
	case "toggle":
		return session.TogglePermission(msg.Path, msg.Key)
	case "select":
		return session.SelectJob(msg.Path, msg.Key)
	case "add":
		return session.AddJob(msg.Path, msg.Key)
	case "remove":
		return session.RemoveJob(msg.Path, msg.Key)
	case "append":
		return session.AppendItem(msg.Path)
	case "remove-item":
		return session.RemoveItem(msg.Path, msg.Index)
	case "section":
		session.ToggleSection(msg.Path, msg.Expanded)
		return nil
	case "format":
		session.SetFormat(preview.ParseFormat(msg.Format))
		return nil
	case "clear":
		return session.Clear()
	case "copy":
		text := session.Copy()
		c.push(ctx, serverMessage{Type: "copied", Copied: true, Text: text})
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// onUpdate turns session transitions into view messages. The field markup is
// re-rendered when the layout may have changed: structural edits, and job
// renames that alter selector options.
func (c *socketClient) onUpdate(ctx context.Context) func(editor.Update) {
	return func(u editor.Update) {
		jobs := jobSignature(u.State)
		jobsChanged := jobs != c.jobs
		relayout := u.Structural || jobsChanged
		c.jobs = jobs

		opts := c.view.options(u.State, u.Issues, c.sections)

		if u.Widget != nil {
			c.push(ctx, serverMessage{Type: "widget", Path: u.Widget.Path, Message: u.Widget.Message, Text: u.Widget.Text})
			if u.Widget.Kind == widgets.KindNestedSchema && !jobsChanged {
				relayout = false
				if u.Widget.Valid {
					value, _ := formstate.Get(u.State, u.Widget.Path)
					markup, err := c.view.nested(value)
					if err != nil {
						markup = `<p class="sv-error">` + html.EscapeString(err.Error()) + `</p>`
					}
					c.push(ctx, serverMessage{Type: "nested", Path: u.Widget.Path, HTML: markup})
				}
			}
		}

		if relayout {
			markup, err := c.view.fields(ctx, opts)
			if err != nil {
				c.log.Error("render fields", "error", err)
				c.push(ctx, serverMessage{Type: "error", Message: err.Error()})
			} else {
				c.push(ctx, serverMessage{Type: "form", HTML: markup})
			}
		}

		c.push(ctx, serverMessage{Type: "preview", Text: u.Preview, Format: string(u.Format)})
		c.push(ctx, serverMessage{Type: "status", Status: string(u.Status), Label: u.Status.Label()})
		c.push(ctx, serverMessage{Type: "issues", Fields: opts.Errors, Form: opts.FormErrors})

		if u.Copied != c.copied {
			c.copied = u.Copied
			c.push(ctx, serverMessage{Type: "copied", Copied: u.Copied})
		}
	}
}

// jobSignature summarises the job names selectors offer.
func jobSignature(state map[string]any) string {
	return strings.Join(widgets.JobOptions(state, "", widgets.DefaultJobsPath), "\x00")
}
