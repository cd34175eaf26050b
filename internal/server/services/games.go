package services

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/netx"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/tidwall/gjson"
)

// Badge is the label shown on a game card.
type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Badge     Badge  `json:"badge"`
	Image     string `json:"image"`
	fallback  string
}

func catalog() []*Game {
	return []*Game{
		{ID: "cod_bo6", Name: "Call of Duty: Black Ops 6", Available: true, Badge: Badge{Text: "New", Color: "success"}, fallback: "assets/icons/cod_bo6.png"},
		{ID: "gta_v", Name: "GTA V", Badge: Badge{Text: "Soon", Color: "info"}, fallback: "assets/icons/gta_v.png"},
		{ID: "lol", Name: "League of Legends", Badge: Badge{Text: "Soon", Color: "danger"}, fallback: "assets/icons/lol.png"},
	}
}

// GameService lists the supported games with their cover art.
type GameService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  logging.Logger

	mu     sync.Mutex
	covers map[string]string
}

func NewGameService(cfg *config.Config, client *http.Client, logger logging.Logger) *GameService {
	return &GameService{
		client:  client,
		baseURL: cfg.RAWGBaseURL,
		apiKey:  cfg.RAWGAPIKey,
		logger:  logger,
		covers:  make(map[string]string),
	}
}

// List returns the catalog. Each cover is looked up once; a failed lookup
// falls back to the bundled icon and is retried on the next call.
func (s *GameService) List(ctx context.Context) []*Game {
	games := catalog()
	for _, g := range games {
		g.Image = s.cover(ctx, g)
	}
	return games
}

func (s *GameService) cover(ctx context.Context, g *Game) string {
	s.mu.Lock()
	img, ok := s.covers[g.ID]
	s.mu.Unlock()
	if ok {
		return img
	}

	if s.apiKey == "" {
		return g.fallback
	}

	q := url.Values{}
	q.Set("key", s.apiKey)
	q.Set("search", g.Name)
	q.Set("page_size", "1")

	body, err := netx.GetBody(ctx, s.client, s.baseURL+"/games?"+q.Encode())
	if err != nil {
		s.logger.Warn(ctx, "game cover lookup failed", "game", g.ID, "error", err)
		return g.fallback
	}
	img = gjson.GetBytes(body, "results.0.background_image").String()
	if img == "" {
		img = g.fallback
	}

	s.mu.Lock()
	s.covers[g.ID] = img
	s.mu.Unlock()
	return img
}
