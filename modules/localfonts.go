package modules

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sort"
	"sync"

	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// FontCatalog lists the font families that can be hosted locally.
var FontCatalog = []string{
	"Arial",
	"Georgia",
	"Helvetica",
	"Inter",
	"Lato",
	"Merriweather",
	"Montserrat",
	"Noto Sans",
	"Open Sans",
	"Poppins",
	"Roboto",
	"Source Sans 3",
	"Times New Roman",
	"Verdana",
}

// LocalFonts hosts selected font families locally instead of loading them
// from a third-party CDN.
func LocalFonts() module.Definition {
	fonts := make([]string, 0, 2*len(FontCatalog))
	for _, f := range FontCatalog {
		fonts = append(fonts, f, f)
	}

	return module.Definition{
		Slug:             "localfonts",
		Name:             "Local Fonts",
		Description:      "Host web fonts locally for privacy and performance.",
		Author:           author,
		Version:          "1.0.0",
		EnabledByDefault: true,
		Schema: schema.Schema{
			toggle("disable_google_fonts", "Disable remote fonts", "Block font loading from third-party CDNs.", true),
			toggle("enable_gutenberg_fonts", "Register fonts in the block editor", "", false),
			selectOf(schema.KindMultiSelect, "selected_fonts", "Fonts", "Font families to host locally.", []any{}, fonts...),
			selectOf(schema.KindSelect, "font_display", "Font display", "CSS font-display value.", "swap",
				"auto", "Auto",
				"block", "Block",
				"swap", "Swap (recommended)",
				"fallback", "Fallback",
				"optional", "Optional",
			),
		},
		NewService: func(sc module.ServiceContext) (module.Service, error) {
			return NewFontService(sc.Logger, sc.Options), nil
		},
	}
}

// FontDiff returns the fonts selected in next but not prev, and those
// selected in prev but not next. Both results are sorted.
func FontDiff(prev, next []string) (add, remove []string) {
	for _, f := range next {
		if !slices.Contains(prev, f) && !slices.Contains(add, f) {
			add = append(add, f)
		}
	}
	for _, f := range prev {
		if !slices.Contains(next, f) && !slices.Contains(remove, f) {
			remove = append(remove, f)
		}
	}
	sort.Strings(add)
	sort.Strings(remove)
	return add, remove
}

// FontService keeps the set of locally hosted fonts in step with the
// selected_fonts option.
type FontService struct {
	logger  zerolog.Logger
	options func(ctx context.Context) (options.Value, error)

	mu        sync.RWMutex
	installed map[string]bool
}

// NewFontService creates a font service.
func NewFontService(logger zerolog.Logger, opts func(ctx context.Context) (options.Value, error)) *FontService {
	return &FontService{
		logger:    logger,
		options:   opts,
		installed: make(map[string]bool),
	}
}

// Start installs the currently selected fonts.
func (s *FontService) Start(ctx context.Context, opts options.Value) error {
	s.apply(opts.Strings("selected_fonts"), nil)
	return nil
}

// OptionsChanged installs newly selected fonts and removes deselected ones.
func (s *FontService) OptionsChanged(ctx context.Context, prev, next options.Value) error {
	add, remove := FontDiff(prev.Strings("selected_fonts"), next.Strings("selected_fonts"))
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	s.apply(add, remove)
	s.logger.Info().Strs("added", add).Strs("removed", remove).Msg("local fonts updated")
	return nil
}

func (s *FontService) apply(add, remove []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range add {
		s.installed[f] = true
	}
	for _, f := range remove {
		delete(s.installed, f)
	}
}

// Installed returns the locally hosted fonts in sorted order.
func (s *FontService) Installed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.installed))
	for f := range s.installed {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FontsResponse is returned by the fonts endpoint.
type FontsResponse struct {
	Installed      []string `json:"installed"`
	Catalog        []string `json:"catalog"`
	FontDisplay    string   `json:"font_display"`
	RemoteDisabled bool     `json:"remote_disabled"`
}

// Handler serves GET /fonts.
func (s *FontService) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/fonts", func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to read options")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(FontsResponse{
			Installed:      s.Installed(),
			Catalog:        FontCatalog,
			FontDisplay:    opts.String("font_display"),
			RemoteDisabled: opts.Bool("disable_google_fonts"),
		})
	})
	return r
}
