// Package catalog wires the site's content entities to their schemas,
// storage buckets and lifecycle managers.
package catalog

import (
	"time"

	"github.com/dmitrijs2005/siteadmin/internal/dbx"
	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/querycache"
	"github.com/dmitrijs2005/siteadmin/internal/server/lifecycle"
	"github.com/dmitrijs2005/siteadmin/internal/server/models"
	"github.com/dmitrijs2005/siteadmin/internal/server/records"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
)

// Repositories holds the collection store of every entity.
type Repositories struct {
	Blog         records.Repository[models.BlogPost]
	Team         records.Repository[models.TeamMember]
	Testimonials records.Repository[models.Testimonial]
	Partners     records.Repository[models.Partner]
	Trainings    records.Repository[models.Training]
	Contacts     records.Repository[models.Contact]
	Statistics   records.Repository[models.Statistics]
}

// PostgresRepositories binds every entity schema to db.
func PostgresRepositories(db dbx.DBTX) Repositories {
	return Repositories{
		Blog:         records.NewPostgresRepository(db, BlogPosts),
		Team:         records.NewPostgresRepository(db, TeamMembers),
		Testimonials: records.NewPostgresRepository(db, Testimonials),
		Partners:     records.NewPostgresRepository(db, Partners),
		Trainings:    records.NewPostgresRepository(db, Trainings),
		Contacts:     records.NewPostgresRepository(db, Contacts),
		Statistics:   records.NewPostgresRepository(db, StatisticsSchema),
	}
}

// Options are shared by all managers of a Catalog.
type Options struct {
	Blobs  lifecycle.BlobRemover
	Cache  *querycache.Cache
	Logger logging.Logger
	Now    func() time.Time
}

// Catalog is the set of managed entities.
type Catalog struct {
	Blog         *lifecycle.Manager[models.BlogPost]
	Team         *lifecycle.Manager[models.TeamMember]
	Testimonials *lifecycle.Manager[models.Testimonial]
	Partners     *lifecycle.Manager[models.Partner]
	Trainings    *lifecycle.Manager[models.Training]
	Contacts     *lifecycle.Manager[models.Contact]
	Statistics   *StatisticsService
}

// New builds a Catalog over repos. All managers share one query cache.
func New(repos Repositories, opts Options) *Catalog {
	if opts.Cache == nil {
		opts.Cache = querycache.New(0)
	}

	with := func(bucket storage.Bucket) lifecycle.Options {
		return lifecycle.Options{
			Bucket: bucket,
			Folder: storage.Folder(bucket),
			Blobs:  opts.Blobs,
			Cache:  opts.Cache,
			Logger: opts.Logger,
			Now:    opts.Now,
		}
	}

	return &Catalog{
		Blog:         lifecycle.NewManager(BlogPosts, repos.Blog, with(storage.BucketBlogImages)),
		Team:         lifecycle.NewManager(TeamMembers, repos.Team, with(storage.BucketTeamImages)),
		Testimonials: lifecycle.NewManager(Testimonials, repos.Testimonials, with(storage.BucketTestimonialImages)),
		Partners:     lifecycle.NewManager(Partners, repos.Partners, with(storage.BucketPartnerLogos)),
		Trainings:    lifecycle.NewManager(Trainings, repos.Trainings, with(storage.BucketTrainingImages)),
		Contacts:     lifecycle.NewManager(Contacts, repos.Contacts, with("")),
		Statistics:   NewStatisticsService(repos.Statistics, opts.Cache, opts.Logger, opts.Now),
	}
}
