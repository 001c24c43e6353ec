package web

import (
	"github.com/ghaggin/coachportal/internal/template"
	assets "github.com/ghaggin/coachportal/web"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		New,
		NewRenderer,
	),
)

// NewRenderer parses the embedded page templates.
func NewRenderer() (*template.Renderer, error) {
	return template.New(assets.FS())
}
