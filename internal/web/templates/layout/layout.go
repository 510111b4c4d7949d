package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/gomoku-go/internal/model"
)

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string // "success", "error" or "info"
	Message string
}

// PageData is shared by every full page
type PageData struct {
	Title  string
	Player *model.Player
	Flash  *FlashMessage
}

// Writer accumulates the first write error so components can render
// without checking every call
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup
func (hw *Writer) Raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

// Text writes escaped text
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Component renders a nested component into the same stream
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err == nil && c != nil {
		hw.err = c.Render(ctx, hw.w)
	}
}

// Err returns the first error seen
func (hw *Writer) Err() error {
	return hw.err
}

const styles = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f4efe6; color: #222; }
header { display: flex; justify-content: space-between; align-items: center; padding: 0.75rem 1.5rem; background: #3b2f2f; color: #fff; }
header a { color: #fff; text-decoration: none; font-weight: bold; }
main { max-width: 56rem; margin: 1.5rem auto; padding: 0 1rem; }
.flash { padding: 0.5rem 1rem; border-radius: 4px; margin-bottom: 1rem; }
.flash-success { background: #d7f0d2; } .flash-error { background: #f6d3d3; } .flash-info { background: #dbe7f6; }
#game-board { border-collapse: collapse; background: #e0b56a; }
#game-board td { width: 1.75rem; height: 1.75rem; border: 1px solid #8a6a33; text-align: center; padding: 0; }
#game-board td.black::after { content: "\25CF"; color: #000; font-size: 1.4rem; }
#game-board td.white::after { content: "\25CF"; color: #fff; font-size: 1.4rem; }
#game-board td.last { outline: 2px solid #c0392b; }
#game-board td.hint { background: #f7e08a; }
#game-board form, #game-board button { margin: 0; width: 100%; height: 100%; }
#game-board button { border: 0; background: transparent; cursor: pointer; }
#game-board button:hover { background: rgba(0,0,0,0.12); }
`

// Page wraps body in the site chrome
func Page(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw(`<title>`)
		if data.Title != "" {
			hw.Text(data.Title + " - ")
		}
		hw.Raw(`Gomoku</title><style>`)
		hw.Raw(styles)
		hw.Raw(`</style></head><body><header><a href="/">Gomoku</a>`)

		if data.Player != nil {
			hw.Raw(`<div id="player-info"><span id="player-name">`)
			hw.Text(data.Player.DisplayName)
			hw.Raw(`</span> <form method="post" action="/auth/logout" style="display:inline">`)
			hw.Raw(`<button type="submit" id="logout-button">Log out</button></form></div>`)
		}
		hw.Raw(`</header><main>`)

		if data.Flash != nil {
			hw.Raw(`<div class="flash flash-`)
			hw.Text(data.Flash.Type)
			hw.Raw(`" id="flash">`)
			hw.Text(data.Flash.Message)
			hw.Raw(`</div>`)
		}

		hw.Component(ctx, body)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}

// ErrorPage is a standalone page for failures outside normal rendering
func ErrorPage(title, message string) templ.Component {
	return Page(PageData{Title: title}, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<h1>`)
		hw.Text(title)
		hw.Raw(`</h1><p>`)
		hw.Text(message)
		hw.Raw(`</p><p><a href="/">Return to home</a></p>`)
		return hw.Err()
	}))
}
