package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
)

type PostCreate struct {
	AuthorID int64
	Title    string
	Slug     string
	Excerpt  string
	Body     string
	CoverURL string
	Tags     []string
}

type PostUpdate struct {
	Title    *string
	Excerpt  *string
	Body     *string
	CoverURL *string
	Tags     []string
}

type PostFilter struct {
	Tag           string
	PublishedOnly bool
	Page          Page
}

type PushSubscriptionCreate struct {
	UserID   int64
	Endpoint string
	P256dh   string
	Auth     string
}

type CampaignCreate struct {
	Title       string
	Body        string
	URL         string
	Channel     domain.CampaignChannelType
	Segment     domain.CampaignSegmentType
	Status      domain.CampaignStatusType
	ScheduledAt *time.Time
}
