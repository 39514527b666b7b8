package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
)

type CampaignHandler struct {
	svs CampaignServicer
}

func NewCampaignHandler(svs CampaignServicer) *CampaignHandler {
	return &CampaignHandler{svs: svs}
}

// Index GET RouteGroup + AdminCampaignsRoute.
func (h *CampaignHandler) Index(c *gin.Context) {
	var params PageParams
	if !bindQuery(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	campaigns, err := h.svs.List(ctx, params.toPage())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	res := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		res[i] = newCampaignResponse(&campaigns[i])
	}
	c.JSON(http.StatusOK, res)
}

type CampaignCreateParams struct {
	Title       string                     `binding:"required,max=200"                       json:"title"`
	Body        string                     `binding:"required,max=2000"                      json:"body"`
	URL         string                     `binding:"omitempty,max=500"                      json:"url"`
	Channel     domain.CampaignChannelType `binding:"required,oneof=push email all"          json:"channel"`
	Segment     domain.CampaignSegmentType `binding:"required,oneof=all customers inactive"  json:"segment"`
	ScheduledAt *time.Time                 `json:"scheduled_at"`
}

// Create POST RouteGroup + AdminCampaignsRoute. Кампания с scheduled_at в будущем отправится по расписанию.
func (h *CampaignHandler) Create(c *gin.Context) {
	var params CampaignCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	campaign, err := h.svs.Create(ctx, repoargs.CampaignCreate{
		Title:       params.Title,
		Body:        params.Body,
		URL:         params.URL,
		Channel:     params.Channel,
		Segment:     params.Segment,
		ScheduledAt: params.ScheduledAt,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCampaignResponse(campaign))
}

// Send POST RouteGroup + AdminCampaignSendRoute.
func (h *CampaignHandler) Send(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	// рассылка по большому сегменту дольше обычного запроса
	ctx, cancel := context.WithTimeout(c, 10*DefaultServiceTimeout)
	defer cancel()

	campaign, err := h.svs.Send(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCampaignResponse(campaign))
}
