// Package storage is the object store holding uploaded assets. Every
// asset-bearing entity owns exactly one bucket from a fixed set.
package storage

import (
	"fmt"

	"github.com/dmitrijs2005/siteadmin/internal/common"
)

// Bucket is a logical bucket name.
type Bucket string

const (
	BucketTeamImages        Bucket = "team_images"
	BucketBlogImages        Bucket = "blog_images"
	BucketTestimonialImages Bucket = "testimonial_images"
	BucketPartnerLogos      Bucket = "partner_logos"
	BucketTrainingImages    Bucket = "training_images"
)

// Buckets lists every bucket the back-office writes to.
var Buckets = []Bucket{
	BucketTeamImages,
	BucketBlogImages,
	BucketTestimonialImages,
	BucketPartnerLogos,
	BucketTrainingImages,
}

// ParseBucket returns the Bucket named s or common.ErrUnknownBucket.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownBucket, s)
}

// folders is the folder inside each bucket that holds its entity's assets.
var folders = map[Bucket]string{
	BucketTeamImages:        "team",
	BucketBlogImages:        "blog",
	BucketTestimonialImages: "testimonials",
	BucketPartnerLogos:      "partners",
	BucketTrainingImages:    "trainings",
}

// Folder returns the asset folder of b, or "" for a bucket outside the set.
func Folder(b Bucket) string {
	return folders[b]
}
