package catalog

import (
	"database/sql"
	"math"

	"github.com/dmitrijs2005/siteadmin/internal/server/models"
	"github.com/dmitrijs2005/siteadmin/internal/server/records"
)

var BlogPosts = &records.Schema[models.BlogPost]{
	Entity:  "blog",
	Table:   "blog_posts",
	Columns: []string{"id", "title", "content", "author", "image_url", "published", "created_at", "updated_at"},
	OrderBy: "created_at DESC",
	Fields: []records.FieldSpec{
		{Name: "title", Kind: records.KindText, Required: true},
		{Name: "content", Kind: records.KindText, Required: true},
		{Name: "author", Kind: records.KindText, Required: true},
		{Name: "image_url", Kind: records.KindURL, Nullable: true},
		{Name: "published", Kind: records.KindBool, Default: false},
	},
	AssetField: "image_url",
	Scan: func(row records.Scanner) (*models.BlogPost, error) {
		var p models.BlogPost
		var img sql.NullString
		if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &img, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.ImageURL = stringPtr(img)
		return &p, nil
	},
}

var TeamMembers = &records.Schema[models.TeamMember]{
	Entity:  "team",
	Table:   "team_members",
	Columns: []string{"id", "name", "designation", "bio", "image_url", "created_at", "updated_at"},
	OrderBy: "name ASC",
	Fields: []records.FieldSpec{
		{Name: "name", Kind: records.KindText, Required: true},
		{Name: "designation", Kind: records.KindText, Required: true},
		{Name: "bio", Kind: records.KindText, Nullable: true},
		{Name: "image_url", Kind: records.KindURL, Nullable: true},
	},
	AssetField: "image_url",
	Scan: func(row records.Scanner) (*models.TeamMember, error) {
		var m models.TeamMember
		var bio, img sql.NullString
		if err := row.Scan(&m.ID, &m.Name, &m.Designation, &bio, &img, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Bio, m.ImageURL = stringPtr(bio), stringPtr(img)
		return &m, nil
	},
}

var Testimonials = &records.Schema[models.Testimonial]{
	Entity:  "testimonials",
	Table:   "testimonials",
	Columns: []string{"id", "name", "company", "content", "rating", "image_url", "created_at", "updated_at"},
	OrderBy: "created_at DESC",
	Fields: []records.FieldSpec{
		{Name: "name", Kind: records.KindText, Required: true},
		{Name: "company", Kind: records.KindText, Nullable: true},
		{Name: "content", Kind: records.KindText, Required: true},
		{Name: "rating", Kind: records.KindInt, Nullable: true, HasRange: true, Min: 1, Max: 5},
		{Name: "image_url", Kind: records.KindURL, Nullable: true},
	},
	AssetField: "image_url",
	Scan: func(row records.Scanner) (*models.Testimonial, error) {
		var t models.Testimonial
		var company, img sql.NullString
		var rating sql.NullInt64
		if err := row.Scan(&t.ID, &t.Name, &company, &t.Content, &rating, &img, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Company, t.ImageURL = stringPtr(company), stringPtr(img)
		if rating.Valid {
			r := int(rating.Int64)
			t.Rating = &r
		}
		return &t, nil
	},
}

var Partners = &records.Schema[models.Partner]{
	Entity:  "partners",
	Table:   "partners",
	Columns: []string{"id", "name", "website", "logo_url", "created_at", "updated_at"},
	OrderBy: "name ASC",
	Fields: []records.FieldSpec{
		{Name: "name", Kind: records.KindText, Required: true},
		{Name: "website", Kind: records.KindURL, Nullable: true},
		{Name: "logo_url", Kind: records.KindURL, Nullable: true},
	},
	AssetField: "logo_url",
	Scan: func(row records.Scanner) (*models.Partner, error) {
		var p models.Partner
		var website, logo sql.NullString
		if err := row.Scan(&p.ID, &p.Name, &website, &logo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Website, p.LogoURL = stringPtr(website), stringPtr(logo)
		return &p, nil
	},
}

var Trainings = &records.Schema[models.Training]{
	Entity: "trainings",
	Table:  "new_trainings",
	Columns: []string{"id", "title", "description", "start_date", "end_date", "location", "mode",
		"image_url", "registration_link", "created_at", "updated_at"},
	OrderBy: "start_date ASC",
	Fields: []records.FieldSpec{
		{Name: "title", Kind: records.KindText, Required: true},
		{Name: "description", Kind: records.KindText, Nullable: true},
		{Name: "start_date", Kind: records.KindDate, Required: true},
		{Name: "end_date", Kind: records.KindDate, Nullable: true},
		{Name: "location", Kind: records.KindText, Nullable: true},
		{Name: "mode", Kind: records.KindEnum, Required: true,
			Values: []string{models.TrainingModeOnline, models.TrainingModeOffline, models.TrainingModeHybrid}},
		{Name: "image_url", Kind: records.KindURL, Nullable: true},
		{Name: "registration_link", Kind: records.KindURL, Nullable: true},
	},
	AssetField: "image_url",
	Scan: func(row records.Scanner) (*models.Training, error) {
		var t models.Training
		var desc, location, img, link sql.NullString
		var end models.NullDate
		if err := row.Scan(&t.ID, &t.Title, &desc, &t.StartDate, &end, &location, &t.Mode,
			&img, &link, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Description, t.Location = stringPtr(desc), stringPtr(location)
		t.ImageURL, t.RegistrationLink = stringPtr(img), stringPtr(link)
		t.EndDate = end.Ptr()
		return &t, nil
	},
}

// Contacts are written by the public site; the back-office only lists and
// deletes them.
var Contacts = &records.Schema[models.Contact]{
	Entity:  "contacts",
	Table:   "contact_us",
	Columns: []string{"id", "name", "email", "phone_number", "address", "message", "req_type", "created_at", "updated_at"},
	OrderBy: "created_at DESC",
	Fields: []records.FieldSpec{
		{Name: "name", Kind: records.KindText, Required: true},
		{Name: "email", Kind: records.KindText, Required: true},
		{Name: "phone_number", Kind: records.KindText, Required: true},
		{Name: "address", Kind: records.KindText, Required: true},
		{Name: "message", Kind: records.KindText, Required: true},
		{Name: "req_type", Kind: records.KindText, Required: true},
	},
	Scan: func(row records.Scanner) (*models.Contact, error) {
		var c models.Contact
		if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &c.Address, &c.Message, &c.ReqType,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		return &c, nil
	},
}

var StatisticsSchema = &records.Schema[models.Statistics]{
	Entity:  "statistics",
	Table:   "statistics",
	Columns: []string{"id", "programs_delivered", "professionals_trained", "satisfaction_rate", "corporate_partners", "updated_at"},
	Fields: []records.FieldSpec{
		{Name: "programs_delivered", Kind: records.KindInt, HasRange: true, Min: 0, Max: math.MaxInt32},
		{Name: "professionals_trained", Kind: records.KindInt, HasRange: true, Min: 0, Max: math.MaxInt32},
		{Name: "satisfaction_rate", Kind: records.KindInt, HasRange: true, Min: 0, Max: 100},
		{Name: "corporate_partners", Kind: records.KindInt, HasRange: true, Min: 0, Max: math.MaxInt32},
	},
	Scan: func(row records.Scanner) (*models.Statistics, error) {
		var s models.Statistics
		if err := row.Scan(&s.ID, &s.ProgramsDelivered, &s.ProfessionalsTrained, &s.SatisfactionRate,
			&s.CorporatePartners, &s.UpdatedAt); err != nil {
			return nil, err
		}
		return &s, nil
	},
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
