// README: Gin HTTP server: webhook intake, list-view page, health check.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"placepilot/internal/places"
)

// UpdateHandler consumes raw Telegram updates in webhook mode.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

type Server struct {
	router *gin.Engine
	log    *slog.Logger
}

func NewServer(log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(listTemplate)

	s := &Server{router: router, log: log}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", s.listView)
	return s
}

// EnableWebhook mounts the Telegram webhook intake at path.
func (s *Server) EnableWebhook(path string, handler UpdateHandler) {
	s.router.POST(path, func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		var upd tgbotapi.Update
		if err := json.Unmarshal(body, &upd); err != nil {
			s.log.Warn("bad webhook payload", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}
		// Always ack; processing failures are the bot's problem to log,
		// and a non-2xx would make Telegram redeliver the update.
		handler.HandleUpdate(c.Request.Context(), upd)
		c.Status(http.StatusOK)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}

// listView renders the shared result list from the deep-link payload.
func (s *Server) listView(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		c.HTML(http.StatusOK, "list", listPage{Empty: true})
		return
	}
	results, err := places.DecodeDeepLink(data)
	if err != nil {
		s.log.Warn("bad deep link payload", "error", err)
		c.HTML(http.StatusBadRequest, "list", listPage{Invalid: true})
		return
	}

	page := listPage{}
	for _, r := range results {
		item := listItem{Name: r.Name, ImageURL: r.ImageURL, Distance: fmt.Sprintf("%dm away", r.DistanceM)}
		if r.Rating != nil {
			item.Rating = fmt.Sprintf("Rating %g/10", *r.Rating)
		}
		if r.OpenNow != nil {
			if *r.OpenNow {
				item.Status = "Open now"
			} else {
				item.Status = "Closed"
			}
		}
		page.Results = append(page.Results, item)
	}
	c.HTML(http.StatusOK, "list", page)
}

type listItem struct {
	Name     string
	ImageURL string
	Rating   string
	Status   string
	Distance string
}

type listPage struct {
	Empty   bool
	Invalid bool
	Results []listItem
}

var listTemplate = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>PlacePilot</title>
<style>
body { font-family: sans-serif; margin: 0 auto; max-width: 480px; padding: 16px; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: 12px; margin-bottom: 12px; }
.card img { width: 100%; border-radius: 6px; }
.meta { color: #555; font-size: 14px; }
</style>
</head>
<body>
<h1>PlacePilot</h1>
{{if .Empty}}<p>No results to show. Share a search from the bot first.</p>{{end}}
{{if .Invalid}}<p>This link looks broken. Ask the bot for a fresh one.</p>{{end}}
{{range .Results}}
<div class="card">
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="">{{end}}
<h2>{{.Name}}</h2>
<p class="meta">
{{if .Rating}}{{.Rating}} · {{end}}{{.Distance}}{{if .Status}} · {{.Status}}{{end}}
</p>
</div>
{{end}}
</body>
</html>`))
