package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const campaignColumns = `id, created_at, updated_at, title, body, url, channel, segment, status, scheduled_at,
	sent_at, recipients`

type CampaignRepository struct {
	conn uow.DBTX
}

func NewCampaignRepository(conn uow.DBTX) *CampaignRepository {
	return &CampaignRepository{conn: conn}
}

func (c *CampaignRepository) Create(ctx context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error) {
	row := c.conn.QueryRow(ctx,
		`INSERT INTO campaigns (title, body, url, channel, segment, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+campaignColumns,
		args.Title,
		args.Body,
		args.URL,
		string(args.Channel),
		string(args.Segment),
		string(args.Status),
		args.ScheduledAt,
	)
	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "creating campaign `%s`", args.Title)
	}
	return &campaign, nil
}

// FindByIDForUpdate возвращает кампанию, блокируя строку до конца транзакции.
func (c *CampaignRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := c.conn.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id)
	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "finding campaign %d", id)
	}
	return &campaign, nil
}

func (c *CampaignRepository) List(ctx context.Context, page repoargs.Page) ([]domain.Campaign, error) {
	rows, err := c.conn.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		int64(page.Limit), int64(page.Offset),
	)
	if err != nil {
		return nil, convertErr(err, "listing campaigns")
	}
	campaigns, err := collect(rows, scanCampaign)
	if err != nil {
		return nil, convertErr(err, "scanning campaigns")
	}
	return campaigns, nil
}

// GetDue возвращает идентификаторы запланированных кампаний, время отправки которых наступило.
func (c *CampaignRepository) GetDue(ctx context.Context, limit uint) ([]int64, error) {
	rows, err := c.conn.Query(ctx,
		`SELECT id FROM campaigns WHERE status = 'scheduled' AND scheduled_at <= now()
		ORDER BY scheduled_at LIMIT $1`,
		int64(limit),
	)
	if err != nil {
		return nil, convertErr(err, "getting due campaigns")
	}
	ids, err := collect(rows, func(row rowScanner) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err //nolint:wrapcheck
	})
	if err != nil {
		return nil, convertErr(err, "scanning due campaigns")
	}
	return ids, nil
}

func (c *CampaignRepository) MarkSent(ctx context.Context, id int64, recipients int32) (*domain.Campaign, error) {
	row := c.conn.QueryRow(ctx,
		`UPDATE campaigns SET status = 'sent', sent_at = now(), recipients = $2, updated_at = now()
		WHERE id = $1 RETURNING `+campaignColumns,
		id, recipients,
	)
	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "marking campaign %d sent", id)
	}
	return &campaign, nil
}

func (c *CampaignRepository) SetStatus(ctx context.Context, id int64, status domain.CampaignStatusType) error {
	_, err := c.conn.Exec(ctx,
		`UPDATE campaigns SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	return convertErr(err, "setting status of campaign %d", id)
}

func scanCampaign(row rowScanner) (domain.Campaign, error) {
	var c domain.Campaign
	var channel, segment, status string
	err := row.Scan(
		&c.ID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Title,
		&c.Body,
		&c.URL,
		&channel,
		&segment,
		&status,
		&c.ScheduledAt,
		&c.SentAt,
		&c.Recipients,
	)
	c.Channel = domain.CampaignChannelType(channel)
	c.Segment = domain.CampaignSegmentType(segment)
	c.Status = domain.CampaignStatusType(status)
	return c, err //nolint:wrapcheck
}
