package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/kebab-storefront/feed"
	"github.com/yeremiapane/kebab-storefront/middlewares"
	"github.com/yeremiapane/kebab-storefront/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// admin tokens are checked before the upgrade, any origin may connect
	CheckOrigin: func(r *http.Request) bool { return true },
}

type FeedController struct {
	Hub *feed.Hub
}

func NewFeedController(hub *feed.Hub) *FeedController {
	return &FeedController{Hub: hub}
}

// OrderFeed -> GET /admin/orders/feed (websocket)
func (fc *FeedController) OrderFeed(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("feed: upgrade failed")
		return
	}

	who := c.GetString(middlewares.ContextEmail)
	fc.Hub.Register(ws, who)
	utils.InfoLogger.WithField("client", who).Info("feed: client connected")

	// drain reads until the client goes away
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.Unregister(ws)
	utils.InfoLogger.WithField("client", who).Info("feed: client disconnected")
}
