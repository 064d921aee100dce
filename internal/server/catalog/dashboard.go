package catalog

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/server/models"
)

// RecentPostsLimit is the number of posts shown on the dashboard.
const RecentPostsLimit = 3

// Dashboard is the overview shown on the back-office landing page.
type Dashboard struct {
	RecentPosts  []*models.BlogPost `json:"recent_posts"`
	Statistics   *models.Statistics `json:"statistics"`
	TeamCount    int                `json:"team_count"`
	PartnerCount int                `json:"partner_count"`
}

// Dashboard assembles the overview from the cached collections. A missing
// statistics row leaves Statistics nil.
func (c *Catalog) Dashboard(ctx context.Context) (*Dashboard, error) {
	posts, err := c.Blog.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) > RecentPostsLimit {
		posts = posts[:RecentPostsLimit]
	}

	team, err := c.Team.List(ctx)
	if err != nil {
		return nil, err
	}
	partners, err := c.Partners.List(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := c.Statistics.Get(ctx)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	return &Dashboard{
		RecentPosts:  posts,
		Statistics:   stats,
		TeamCount:    len(team),
		PartnerCount: len(partners),
	}, nil
}
