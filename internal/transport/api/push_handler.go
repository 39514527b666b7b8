package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
)

type PushHandler struct {
	svs NotificationServicer
}

func NewPushHandler(svs NotificationServicer) *PushHandler {
	return &PushHandler{svs: svs}
}

type PushKeysParams struct {
	P256dh string `binding:"required,max=255" json:"p256dh"`
	Auth   string `binding:"required,max=255" json:"auth"`
}

// PushSubscribeParams формат PushSubscription.toJSON() браузера.
type PushSubscribeParams struct {
	Endpoint string         `binding:"required,url,max=1000" json:"endpoint"`
	Keys     PushKeysParams `binding:"required"              json:"keys"`
}

// Subscribe POST RouteGroup + PushSubscriptionsRoute. Повторная подписка того же endpoint обновляет ключи.
func (h *PushHandler) Subscribe(c *gin.Context) {
	var params PushSubscribeParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	sub, err := h.svs.Subscribe(ctx, repoargs.PushSubscriptionCreate{
		UserID:   getUserIDFromContext(c),
		Endpoint: params.Endpoint,
		P256dh:   params.Keys.P256dh,
		Auth:     params.Keys.Auth,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID, "endpoint": sub.Endpoint})
}

type PushUnsubscribeParams struct {
	Endpoint string `binding:"required,max=1000" json:"endpoint"`
}

// Unsubscribe DELETE RouteGroup + PushSubscriptionsRoute.
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var params PushUnsubscribeParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.Unsubscribe(ctx, getUserIDFromContext(c), params.Endpoint); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
